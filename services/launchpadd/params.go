package launchpadd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"launchpad/crypto"
	"launchpad/native/token"
	"launchpad/services/launchpadd/middleware"
)

const maxBodyBytes = 1 << 20

// Amount is a non-negative integer carried as a JSON string or number.
type Amount struct {
	*big.Int
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(bytes.Trim(data, `"`)))
	if raw == "" || raw == "null" {
		return fmt.Errorf("amount required")
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return fmt.Errorf("invalid amount %q", raw)
	}
	if v.Sign() < 0 {
		return fmt.Errorf("amount %q must not be negative", raw)
	}
	a.Int = v
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(formatAmount(a.Int))
}

// Value returns the parsed amount, zero when unset.
func (a *Amount) Value() *big.Int {
	if a == nil || a.Int == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.Int)
}

// Address accepts hex or bech32 encodings.
type Address struct {
	common.Address
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("address must be a string")
	}
	addr, err := crypto.ParseAddress(raw)
	if err != nil {
		return err
	}
	a.Address = addr
	return nil
}

func decodeJSON(r *http.Request, dst interface{}) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return badRequest("request body required")
		}
		return badRequest("invalid request body: " + err.Error())
	}
	return nil
}

func pathIndex(r *http.Request, name string) (uint64, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, badRequest(fmt.Sprintf("invalid %s %q", name, raw))
	}
	return v, nil
}

func pathAddress(r *http.Request, name string) (common.Address, error) {
	raw := chi.URLParam(r, name)
	addr, err := crypto.ParseAddress(raw)
	if err != nil {
		return common.Address{}, badRequest(fmt.Sprintf("invalid %s: %v", name, err))
	}
	return addr, nil
}

// pathToken resolves a token given by address or by symbol.
func pathToken(r *http.Request, name string) common.Address {
	raw := chi.URLParam(r, name)
	if addr, err := crypto.ParseAddress(raw); err == nil {
		return addr
	}
	return token.AddressForSymbol(raw)
}

func callerOf(r *http.Request) (common.Address, error) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		return common.Address{}, badRequest("caller not resolved")
	}
	return caller, nil
}

func requestID(r *http.Request) string {
	return middleware.RequestID(r.Context())
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func formatAddress(addr common.Address) string {
	if addr == (common.Address{}) {
		return ""
	}
	return crypto.FormatAddress(addr)
}
