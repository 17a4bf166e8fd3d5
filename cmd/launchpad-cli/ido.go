package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func newIDOCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "ido", Short: "Create, configure and settle offerings"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List offerings",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				return call(c, opts, http.MethodGet, "/v1/idos", nil)
			},
		},
		&cobra.Command{
			Use:   "show <index>",
			Short: "Show an offering",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				path, err := indexPath("/v1/idos/%d", args[0])
				if err != nil {
					return err
				}
				return call(c, opts, http.MethodGet, path, nil)
			},
		},
		&cobra.Command{
			Use:   "funders <index>",
			Short: "List the funders of an offering",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				path, err := indexPath("/v1/idos/%d/funders", args[0])
				if err != nil {
					return err
				}
				return call(c, opts, http.MethodGet, path, nil)
			},
		},
		&cobra.Command{
			Use:   "account <index> <address>",
			Short: "Show an address's position in an offering",
			Args:  cobra.ExactArgs(2),
			RunE: func(c *cobra.Command, args []string) error {
				path, err := indexPath("/v1/idos/%d/accounts/", args[0])
				if err != nil {
					return err
				}
				return call(c, opts, http.MethodGet, path+url.PathEscape(args[1]), nil)
			},
		},
		&cobra.Command{
			Use:   "create <sale-token> <sale-amount> <payment-token> <target-amount>",
			Short: "Escrow sale tokens into a new offering",
			Args:  cobra.ExactArgs(4),
			RunE: func(c *cobra.Command, args []string) error {
				return call(c, opts, http.MethodPost, "/v1/idos", map[string]string{
					"saleToken":    args[0],
					"saleAmount":   args[1],
					"paymentToken": args[2],
					"targetAmount": args[3],
				})
			},
		},
		newIDOConfigCmd(opts),
		newIDOWhitelistCmd(opts),
		amountCmd(opts, "fund <index> <amount>", "Contribute payment tokens", "/v1/idos/%d/fund"),
		amountCmd(opts, "claim <index> <amount>", "Claim vested sale tokens", "/v1/idos/%d/claim"),
		actionCmd(opts, "refund <index>", "Withdraw the contribution of a failed offering", "/v1/idos/%d/refund"),
		&cobra.Command{
			Use:   "finalize <index> <payout>",
			Short: "Commit the outcome of an ended offering",
			Args:  cobra.ExactArgs(2),
			RunE: func(c *cobra.Command, args []string) error {
				path, err := indexPath("/v1/idos/%d/finalize", args[0])
				if err != nil {
					return err
				}
				return call(c, opts, http.MethodPost, path, map[string]string{"payout": args[1]})
			},
		},
		actionCmd(opts, "emergency-refund <index>", "Force an offering into failure", "/v1/idos/%d/emergency-refund"),
		actionCmd(opts, "reclaim <index>", "Return a failed offering's sale deposit", "/v1/idos/%d/reclaim"),
	)
	return cmd
}

func amountCmd(opts *clientOptions, use, short, format string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			path, err := indexPath(format, args[0])
			if err != nil {
				return err
			}
			return call(c, opts, http.MethodPost, path, map[string]string{"amount": args[1]})
		},
	}
}

func actionCmd(opts *clientOptions, use, short, format string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			path, err := indexPath(format, args[0])
			if err != nil {
				return err
			}
			return call(c, opts, http.MethodPost, path, map[string]string{})
		},
	}
}

func newIDOConfigCmd(opts *clientOptions) *cobra.Command {
	var (
		start, end, claim                 uint64
		tge, cliff, duration, periodicity uint64
		base, maxPerUser, sale, target    string
	)
	cmd := &cobra.Command{
		Use:   "config <index>",
		Short: "Update offering parameters before the sale opens",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			path, err := indexPath("/v1/idos/%d/config", args[0])
			if err != nil {
				return err
			}
			flags := c.Flags()
			body := map[string]interface{}{}
			for name, value := range map[string]uint64{"start": start, "end": end, "claim": claim} {
				if flags.Changed(name) {
					body[name+"Time"] = value
				}
			}
			if flags.Changed("tge") || flags.Changed("cliff") || flags.Changed("duration") || flags.Changed("periodicity") {
				body["vest"] = map[string]uint64{
					"tgePercent":  tge,
					"cliffTime":   cliff,
					"duration":    duration,
					"periodicity": periodicity,
				}
			}
			for key, value := range map[string]string{"baseAmount": base, "maxAmountPerUser": maxPerUser, "saleAmount": sale, "targetAmount": target} {
				if value != "" {
					body[key] = value
				}
			}
			if len(body) == 0 {
				return fmt.Errorf("no configuration flags supplied")
			}
			return call(c, opts, http.MethodPut, path, body)
		},
	}
	flags := cmd.Flags()
	flags.Uint64Var(&start, "start", 0, "sale start (unix seconds)")
	flags.Uint64Var(&end, "end", 0, "sale end (unix seconds)")
	flags.Uint64Var(&claim, "claim", 0, "claim opening (unix seconds)")
	flags.Uint64Var(&tge, "tge", 0, "percent released at the claim time")
	flags.Uint64Var(&cliff, "cliff", 0, "vesting cliff (unix seconds)")
	flags.Uint64Var(&duration, "duration", 0, "vesting duration in seconds")
	flags.Uint64Var(&periodicity, "periodicity", 0, "vesting step in seconds")
	flags.StringVar(&base, "base", "", "tier phase base amount")
	flags.StringVar(&maxPerUser, "max-per-user", "", "per-funder ceiling")
	flags.StringVar(&sale, "sale", "", "sale token amount")
	flags.StringVar(&target, "target", "", "payment target")
	return cmd
}

func newIDOWhitelistCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whitelist <index> <address=amount>...",
		Short: "Set whitelist allowances",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			path, err := indexPath("/v1/idos/%d/whitelist", args[0])
			if err != nil {
				return err
			}
			entries := make([]map[string]string, 0, len(args)-1)
			for _, pair := range args[1:] {
				addr, amount, ok := strings.Cut(pair, "=")
				if !ok || addr == "" || amount == "" {
					return fmt.Errorf("invalid whitelist entry %q, want address=amount", pair)
				}
				entries = append(entries, map[string]string{"address": addr, "amount": amount})
			}
			return call(c, opts, http.MethodPost, path, map[string]interface{}{"entries": entries})
		},
	}
}
