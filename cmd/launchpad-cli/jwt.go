package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"launchpad/crypto"
)

func newJWTCmd() *cobra.Command {
	var secret, issuer, audience string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "jwt <address>",
		Short: "Sign an HS256 bearer token for a caller address",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			token, err := signToken(args[0], secret, issuer, audience, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "shared HMAC secret")
	cmd.Flags().StringVar(&issuer, "issuer", "launchpad", "token issuer")
	cmd.Flags().StringVar(&audience, "audience", "", "token audience")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}

func signToken(subject, secret, issuer, audience string, ttl time.Duration, now time.Time) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", fmt.Errorf("--secret required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("--ttl must be positive")
	}
	addr, err := crypto.ParseAddress(subject)
	if err != nil {
		return "", fmt.Errorf("invalid address: %w", err)
	}
	claims := jwt.RegisteredClaims{
		Subject:   crypto.FormatAddress(addr),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
