package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Caller string
	Body   map[string]interface{}
}

func runCLI(t *testing.T, status int, response string, args ...string) (capturedRequest, string, error) {
	t.Helper()
	var got capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Caller: r.Header.Get("X-Launchpad-Caller"),
		}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			if err := json.Unmarshal(data, &got.Body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	defer srv.Close()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--endpoint", srv.URL}, args...))
	err := cmd.Execute()
	return got, out.String(), err
}

func TestFundSendsAmountWithToken(t *testing.T) {
	got, out, err := runCLI(t, http.StatusOK, `{"offering":0,"funded":"250"}`, "--token", "abc", "ido", "fund", "0", "250")
	if err != nil {
		t.Fatalf("fund: %v", err)
	}
	if got.Method != http.MethodPost || got.Path != "/v1/idos/0/fund" {
		t.Fatalf("unexpected request %s %s", got.Method, got.Path)
	}
	if got.Auth != "Bearer abc" {
		t.Fatalf("unexpected authorization %q", got.Auth)
	}
	if got.Body["amount"] != "250" {
		t.Fatalf("unexpected body %v", got.Body)
	}
	if !strings.Contains(out, `"funded": "250"`) {
		t.Fatalf("response not printed: %s", out)
	}
}

func TestConfigOnlySendsChangedFlags(t *testing.T) {
	got, _, err := runCLI(t, http.StatusOK, `{}`, "--caller", "0x01", "ido", "config", "3", "--start", "100", "--base", "50", "--tge", "20")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if got.Method != http.MethodPut || got.Path != "/v1/idos/3/config" {
		t.Fatalf("unexpected request %s %s", got.Method, got.Path)
	}
	if got.Caller != "0x01" {
		t.Fatalf("caller header not sent: %q", got.Caller)
	}
	if got.Body["startTime"] != float64(100) || got.Body["baseAmount"] != "50" {
		t.Fatalf("unexpected body %v", got.Body)
	}
	if _, ok := got.Body["endTime"]; ok {
		t.Fatalf("unchanged flag sent: %v", got.Body)
	}
	vest, ok := got.Body["vest"].(map[string]interface{})
	if !ok || vest["tgePercent"] != float64(20) {
		t.Fatalf("unexpected vest %v", got.Body["vest"])
	}
}

func TestConfigRequiresFlags(t *testing.T) {
	if _, _, err := runCLI(t, http.StatusOK, `{}`, "ido", "config", "0"); err == nil {
		t.Fatalf("expected error without flags")
	}
}

func TestWhitelistPairs(t *testing.T) {
	got, _, err := runCLI(t, http.StatusOK, `{}`, "ido", "whitelist", "1", "0xaa=10", "0xbb=20")
	if err != nil {
		t.Fatalf("whitelist: %v", err)
	}
	entries, ok := got.Body["entries"].([]interface{})
	if !ok || len(entries) != 2 {
		t.Fatalf("unexpected entries %v", got.Body)
	}
	if _, _, err := runCLI(t, http.StatusOK, `{}`, "ido", "whitelist", "1", "0xaa"); err == nil {
		t.Fatalf("expected malformed pair to fail")
	}
}

func TestApproveOffering(t *testing.T) {
	got, _, err := runCLI(t, http.StatusOK, `{}`, "token", "approve", "PLAYBUSD", "1000", "--offering", "2")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Path != "/v1/tokens/PLAYBUSD/approve" || got.Body["offering"] != float64(2) {
		t.Fatalf("unexpected request %s %v", got.Path, got.Body)
	}
	if _, _, err := runCLI(t, http.StatusOK, `{}`, "token", "approve", "PLAYBUSD", "1000"); err == nil {
		t.Fatalf("expected missing spender to fail")
	}
}

func TestEventsQuery(t *testing.T) {
	got, _, err := runCLI(t, http.StatusOK, `{"events":[]}`, "events", "--type", "ido.funded", "--offering", "0", "--limit", "5")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if got.Path != "/v1/events" || got.Query != "limit=5&offering=0&type=ido.funded" {
		t.Fatalf("unexpected query %s?%s", got.Path, got.Query)
	}
}

func TestAPIErrorSurfaced(t *testing.T) {
	_, _, err := runCLI(t, http.StatusForbidden, `{"error":"factory: caller is not an operator","kind":"authorization"}`, "ido", "create", "PLAY", "1", "PLAYBUSD", "1")
	if err == nil {
		t.Fatalf("expected error")
	}
	apiErr, ok := err.(*apiError)
	if !ok || apiErr.Status != http.StatusForbidden || apiErr.Kind != "authorization" {
		t.Fatalf("unexpected error %#v", err)
	}
}

func TestSignToken(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	raw, err := signToken("0x00000000000000000000000000000000000000a1", "0123456789abcdef", "launchpad", "", time.Hour, now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims := new(jwt.RegisteredClaims)
	_, err = jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("0123456789abcdef"), nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Issuer != "launchpad" || claims.Subject == "" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if _, err := signToken("0xa1", "", "launchpad", "", time.Hour, now); err == nil {
		t.Fatalf("expected missing secret to fail")
	}
}
