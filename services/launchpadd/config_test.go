package launchpadd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "launchpadd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
listen: ":9000"
data_dir: /var/lib/launchpad
module_config: /etc/launchpad/launchpad.toml
read_timeout: 3s
auth:
  enabled: true
  hmac_secret: "0123456789abcdef0123"
  clock_skew: 30s
rate_limits:
  requests_per_minute: 60
  burst: 5
event_index:
  dsn: "file::memory:"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.ListenAddress)
	require.Equal(t, 3*time.Second, cfg.ReadTimeout.Duration)
	require.Equal(t, 15*time.Second, cfg.WriteTimeout.Duration)
	require.Equal(t, 30*time.Second, cfg.Auth.ClockSkew.Duration)
	require.Equal(t, "launchpad", cfg.Auth.Issuer)
	require.Equal(t, float64(60), cfg.RateLimits.RequestsPerMinute)
	require.Equal(t, "file::memory:", cfg.EventIndex.DSN)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, "auth:\n  enabled: true\n  hmac_secret: \"0123456789abcdef0123\"\n")
	t.Setenv("LAUNCHPAD_LISTEN", ":7000")
	t.Setenv("LAUNCHPAD_AUTH_ENABLED", "false")
	t.Setenv("LAUNCHPAD_RATE_BURST", "9")
	t.Setenv("LAUNCHPAD_WRITE_TIMEOUT", "1m")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.ListenAddress)
	require.False(t, cfg.Auth.Enabled)
	require.Equal(t, 9, cfg.RateLimits.Burst)
	require.Equal(t, time.Minute, cfg.WriteTimeout.Duration)
}

func TestLoadConfigSecretFile(t *testing.T) {
	secret := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(secret, []byte("file-secret-0123456789\n"), 0o600))
	path := writeConfig(t, "auth:\n  enabled: true\n  hmac_secret_file: "+secret+"\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "file-secret-0123456789", cfg.Auth.HMACSecret)
}

func TestLoadConfigRejectsWeakSecret(t *testing.T) {
	path := writeConfig(t, "auth:\n  enabled: true\n  hmac_secret: short\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigRejectsSampleRatio(t *testing.T) {
	path := writeConfig(t, "telemetry:\n  sample_ratio: 2\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestDurationRejectsGarbage(t *testing.T) {
	path := writeConfig(t, "read_timeout: soon\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
}
