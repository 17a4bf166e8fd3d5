package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func parseIndex(raw string) (uint64, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", raw)
	}
	return v, nil
}

func indexPath(format, raw string) (string, error) {
	index, err := parseIndex(raw)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(format, index), nil
}

func newPointCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "point", Short: "Inspect and manage point weights"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "tokens",
			Short: "List weighted tokens",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				return call(c, opts, http.MethodGet, "/v1/point/tokens", nil)
			},
		},
		&cobra.Command{
			Use:   "get <address>",
			Short: "Show the point score of an address",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				return call(c, opts, http.MethodGet, "/v1/point/"+url.PathEscape(args[0]), nil)
			},
		},
		&cobra.Command{
			Use:   "add <token> <weight>",
			Short: "Insert a weighted token",
			Args:  cobra.ExactArgs(2),
			RunE: func(c *cobra.Command, args []string) error {
				return call(c, opts, http.MethodPost, "/v1/point/tokens", map[string]string{"token": args[0], "weight": args[1]})
			},
		},
		&cobra.Command{
			Use:   "remove <index>",
			Short: "Remove a weighted token",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				path, err := indexPath("/v1/point/tokens/%d", args[0])
				if err != nil {
					return err
				}
				return call(c, opts, http.MethodDelete, path, nil)
			},
		},
		&cobra.Command{
			Use:   "decimal [value]",
			Short: "Show or set the point decimal",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				if len(args) == 0 {
					return call(c, opts, http.MethodGet, "/v1/point/decimal", nil)
				}
				dec, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid decimal %q", args[0])
				}
				return call(c, opts, http.MethodPut, "/v1/point/decimal", map[string]uint64{"decimal": dec})
			},
		},
	)
	return cmd
}

func newTierCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "tier", Short: "Inspect and manage tiers"}
	tierBody := func(name, threshold, multiplier string) (map[string]interface{}, error) {
		mult, err := strconv.ParseUint(multiplier, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid multiplier %q", multiplier)
		}
		return map[string]interface{}{"name": name, "threshold": threshold, "multiplier": mult}, nil
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List tiers",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				return call(c, opts, http.MethodGet, "/v1/tiers", nil)
			},
		},
		&cobra.Command{
			Use:   "multiplier <address>",
			Short: "Resolve the tier multiplier of an address",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				return call(c, opts, http.MethodGet, "/v1/multiplier/"+url.PathEscape(args[0]), nil)
			},
		},
		&cobra.Command{
			Use:   "add <name> <threshold> <multiplier>",
			Short: "Insert a tier",
			Args:  cobra.ExactArgs(3),
			RunE: func(c *cobra.Command, args []string) error {
				body, err := tierBody(args[0], args[1], args[2])
				if err != nil {
					return err
				}
				return call(c, opts, http.MethodPost, "/v1/tiers", body)
			},
		},
		&cobra.Command{
			Use:   "update <index> <name> <threshold> <multiplier>",
			Short: "Replace a tier",
			Args:  cobra.ExactArgs(4),
			RunE: func(c *cobra.Command, args []string) error {
				path, err := indexPath("/v1/tiers/%d", args[0])
				if err != nil {
					return err
				}
				body, err := tierBody(args[1], args[2], args[3])
				if err != nil {
					return err
				}
				return call(c, opts, http.MethodPut, path, body)
			},
		},
		&cobra.Command{
			Use:   "remove <index>",
			Short: "Remove a tier",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				path, err := indexPath("/v1/tiers/%d", args[0])
				if err != nil {
					return err
				}
				return call(c, opts, http.MethodDelete, path, nil)
			},
		},
	)
	return cmd
}

func newOperatorCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "operator", Short: "Manage registry operators"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List active operators",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				return call(c, opts, http.MethodGet, "/v1/operators", nil)
			},
		},
		&cobra.Command{
			Use:   "add <address>",
			Short: "Grant the operator role",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				return call(c, opts, http.MethodPost, "/v1/operators", map[string]string{"operator": args[0]})
			},
		},
		&cobra.Command{
			Use:   "remove <index>",
			Short: "Revoke the operator in a slot",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				path, err := indexPath("/v1/operators/%d", args[0])
				if err != nil {
					return err
				}
				return call(c, opts, http.MethodDelete, path, nil)
			},
		},
	)
	return cmd
}

func newFeesCmd(opts *clientOptions) *cobra.Command {
	var percent uint64
	var recipient string
	cmd := &cobra.Command{
		Use:   "fees",
		Short: "Show or update the finalization fee",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			body := map[string]interface{}{}
			if c.Flags().Changed("percent") {
				body["percent"] = percent
			}
			if recipient != "" {
				body["recipient"] = recipient
			}
			if len(body) == 0 {
				return call(c, opts, http.MethodGet, "/v1/fees", nil)
			}
			return call(c, opts, http.MethodPut, "/v1/fees", body)
		},
	}
	cmd.Flags().Uint64Var(&percent, "percent", 0, "fee percent applied at finalization")
	cmd.Flags().StringVar(&recipient, "recipient", "", "address receiving fees")
	return cmd
}

func newTokenCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "token", Short: "Inspect ledger tokens and approve spenders"}
	var spender string
	var offering int64
	approve := &cobra.Command{
		Use:   "approve <token> <amount>",
		Short: "Approve a spender or an offering's custody account",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			body := map[string]interface{}{"amount": args[1]}
			switch {
			case spender != "" && offering >= 0:
				return fmt.Errorf("--spender and --offering are mutually exclusive")
			case spender != "":
				body["spender"] = spender
			case offering >= 0:
				body["offering"] = offering
			default:
				return fmt.Errorf("one of --spender or --offering required")
			}
			return call(c, opts, http.MethodPost, "/v1/tokens/"+url.PathEscape(args[0])+"/approve", body)
		},
	}
	approve.Flags().StringVar(&spender, "spender", "", "spender address")
	approve.Flags().Int64Var(&offering, "offering", -1, "offering index whose custody account is approved")
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List registered tokens",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				return call(c, opts, http.MethodGet, "/v1/tokens", nil)
			},
		},
		&cobra.Command{
			Use:   "balance <token> <address>",
			Short: "Show a token balance",
			Args:  cobra.ExactArgs(2),
			RunE: func(c *cobra.Command, args []string) error {
				return call(c, opts, http.MethodGet, "/v1/tokens/"+url.PathEscape(args[0])+"/"+url.PathEscape(args[1]), nil)
			},
		},
		approve,
	)
	return cmd
}

func newEventsCmd(opts *clientOptions) *cobra.Command {
	var typ string
	var offering int64
	var after uint64
	var limit int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Query the committed event index",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			q := url.Values{}
			if typ != "" {
				q.Set("type", typ)
			}
			if offering >= 0 {
				q.Set("offering", strconv.FormatInt(offering, 10))
			}
			if after > 0 {
				q.Set("after", strconv.FormatUint(after, 10))
			}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			path := "/v1/events"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}
			return call(c, opts, http.MethodGet, path, nil)
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "event type")
	cmd.Flags().Int64Var(&offering, "offering", -1, "offering index")
	cmd.Flags().Uint64Var(&after, "after", 0, "only events after this sequence")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum events returned")
	return cmd
}
