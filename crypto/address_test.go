package crypto

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestAddressRoundTrip(t *testing.T) {
	addr := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	encoded := FormatAddress(addr)
	if !strings.HasPrefix(encoded, "ido1") {
		t.Fatalf("expected ido1 prefix, got %s", encoded)
	}
	parsed, err := ParseAddress(encoded)
	if err != nil {
		t.Fatalf("parse bech32: %v", err)
	}
	if parsed != addr {
		t.Fatalf("round trip mismatch: %s != %s", parsed.Hex(), addr.Hex())
	}
	parsed, err = ParseAddress(addr.Hex())
	if err != nil {
		t.Fatalf("parse hex: %v", err)
	}
	if parsed != addr {
		t.Fatalf("hex parse mismatch")
	}
}

func TestParseAddressRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "0x1234", "tb1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq", "not-an-address"} {
		if _, err := ParseAddress(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestNewAddressLength(t *testing.T) {
	if _, err := NewAddress(LaunchpadPrefix, []byte{1, 2, 3}); err == nil {
		t.Fatalf("expected length error")
	}
}
