package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"launchpad/crypto"
)

const testSecret = "launchpad-test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func captureCaller(got *common.Address) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFrom(r.Context())
		if ok {
			*got = caller
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticatorResolvesSubject(t *testing.T) {
	auth := NewAuthenticator(AuthConfig{Enabled: true, HMACSecret: testSecret, Issuer: "launchpad"}, nil)
	alice := common.HexToAddress("0xa11ce")
	token := signToken(t, jwt.MapClaims{
		"sub": crypto.FormatAddress(alice),
		"iss": "launchpad",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	var got common.Address
	req := httptest.NewRequest(http.MethodPost, "/v1/idos/0/fund", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	auth.Middleware(captureCaller(&got)).ServeHTTP(res, req)
	require.Equal(t, http.StatusNoContent, res.Code)
	require.Equal(t, alice, got)
}

func TestAuthenticatorRejectsBadTokens(t *testing.T) {
	auth := NewAuthenticator(AuthConfig{Enabled: true, HMACSecret: testSecret, Issuer: "launchpad"}, nil)
	alice := crypto.FormatAddress(common.HexToAddress("0xa11ce"))
	cases := map[string]string{
		"missing":      "",
		"expired":      "Bearer " + signToken(t, jwt.MapClaims{"sub": alice, "iss": "launchpad", "exp": time.Now().Add(-time.Hour).Unix()}),
		"no expiry":    "Bearer " + signToken(t, jwt.MapClaims{"sub": alice, "iss": "launchpad"}),
		"wrong issuer": "Bearer " + signToken(t, jwt.MapClaims{"sub": alice, "iss": "other", "exp": time.Now().Add(time.Hour).Unix()}),
		"bad subject":  "Bearer " + signToken(t, jwt.MapClaims{"sub": "nobody", "iss": "launchpad", "exp": time.Now().Add(time.Hour).Unix()}),
		"wrong scheme": "Basic abc",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			var got common.Address
			req := httptest.NewRequest(http.MethodPost, "/v1/tiers", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			res := httptest.NewRecorder()
			auth.Middleware(captureCaller(&got)).ServeHTTP(res, req)
			require.Equal(t, http.StatusUnauthorized, res.Code)
			require.Equal(t, common.Address{}, got)
		})
	}
}

func TestAuthenticatorDisabledUsesHeader(t *testing.T) {
	auth := NewAuthenticator(AuthConfig{}, nil)
	bob := common.HexToAddress("0xb0b")

	var got common.Address
	req := httptest.NewRequest(http.MethodPost, "/v1/tiers", nil)
	req.Header.Set(CallerHeader, bob.Hex())
	res := httptest.NewRecorder()
	auth.Middleware(captureCaller(&got)).ServeHTTP(res, req)
	require.Equal(t, http.StatusNoContent, res.Code)
	require.Equal(t, bob, got)

	res = httptest.NewRecorder()
	auth.Middleware(captureCaller(&got)).ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/v1/tiers", nil))
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRequestIDs(t *testing.T) {
	var seen string
	handler := RequestIDs(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Len(t, seen, 36)
	require.Equal(t, seen, res.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Equal(t, "client-id", seen)
}
