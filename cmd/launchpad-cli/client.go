package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const defaultTimeout = 15 * time.Second

type clientOptions struct {
	Endpoint string
	Token    string
	Caller   string
	Timeout  time.Duration
}

// apiError is the daemon's error envelope.
type apiError struct {
	Status int
	Msg    string `json:"error"`
	Kind   string `json:"kind"`
}

func (e *apiError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s (%s, HTTP %d)", e.Msg, e.Kind, e.Status)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Msg, e.Status)
}

type client struct {
	opts *clientOptions
	http *http.Client
}

func newClient(opts *clientOptions) *client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &client{opts: opts, http: &http.Client{Timeout: timeout}}
}

// do sends body as JSON and decodes a successful response into out.
func (c *client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	url := strings.TrimRight(c.opts.Endpoint, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := strings.TrimSpace(c.opts.Token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if caller := strings.TrimSpace(c.opts.Caller); caller != "" {
		req.Header.Set("X-Launchpad-Caller", caller)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &apiError{Status: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Msg == "" {
			apiErr.Msg = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

// call runs a request and prints the JSON response.
func call(cmd *cobra.Command, opts *clientOptions, method, path string, body interface{}) error {
	var out json.RawMessage
	if err := newClient(opts).do(cmd.Context(), method, path, body, &out); err != nil {
		return err
	}
	if len(out) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, out, "", "  "); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
	return nil
}
