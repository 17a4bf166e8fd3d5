package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"

	"launchpad/crypto"
	"launchpad/native/ido"
	"launchpad/native/tier"
)

// DevOwner is the owner written into a freshly created local config.
var DevOwner = crypto.FormatAddress(common.HexToAddress("0x00000000000000000000000000000000000a11ce"))

// Load loads the configuration from the given path. A default file is
// written when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("config file %s has unknown keys: %s", path, strings.Join(keys, ", "))
	}

	applyDefaults(cfg)
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Operators == nil {
		cfg.Operators = []string{}
	}
	if len(cfg.Tiers) == 0 {
		cfg.Tiers = defaultTiers()
	}
	if cfg.IDO.TierWindowSecs == 0 && cfg.IDO.WhitelistWindowSecs == 0 {
		params := ido.DefaultParams()
		cfg.IDO.TierWindowSecs = params.TierWindow
		cfg.IDO.WhitelistWindowSecs = params.WhitelistWindow
	}
}

func defaultTiers() []Tier {
	defaults := tier.DefaultTiers()
	out := make([]Tier, 0, len(defaults))
	for _, row := range defaults {
		out = append(out, Tier{Name: row.Name, Threshold: row.Threshold.String(), Multiplier: row.Multiplier})
	}
	return out
}

// Default returns the local development configuration.
func Default() *Config {
	cfg := &Config{
		Owner:     DevOwner,
		Operators: []string{DevOwner},
		Point: Point{
			Decimal: 1,
			Tokens: []PointToken{
				{Symbol: "PLAY", Weight: "8"},
				{Symbol: "PLAYBUSD", Weight: "15"},
			},
		},
		Tokens: []Token{
			{Symbol: "PLAY", Name: "Play", Decimals: 18, Supply: "10000"},
			{Symbol: "PLAYBUSD", Name: "Play BUSD", Decimals: 18, Supply: "10000"},
		},
	}
	applyDefaults(cfg)
	return cfg
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := Default()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
