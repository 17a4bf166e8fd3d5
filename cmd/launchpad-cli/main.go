package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	defaultEndpoint = "http://localhost:8545"
	envEndpoint     = "LAUNCHPAD_ENDPOINT"
	envToken        = "LAUNCHPAD_TOKEN"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &clientOptions{}
	cmd := &cobra.Command{
		Use:           "launchpad-cli",
		Short:         "Operate a launchpad daemon over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.Endpoint, "endpoint", envOr(envEndpoint, defaultEndpoint), "launchpadd base URL")
	flags.StringVar(&opts.Token, "token", os.Getenv(envToken), "bearer token for mutating calls")
	flags.StringVar(&opts.Caller, "caller", "", "caller address sent when the daemon runs without auth")
	flags.DurationVar(&opts.Timeout, "timeout", defaultTimeout, "request timeout")

	cmd.AddCommand(
		newPointCmd(opts),
		newTierCmd(opts),
		newOperatorCmd(opts),
		newFeesCmd(opts),
		newIDOCmd(opts),
		newTokenCmd(opts),
		newEventsCmd(opts),
		newJWTCmd(),
	)
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
