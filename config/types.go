package config

// PointToken assigns a score weight to a configured token symbol.
type PointToken struct {
	Symbol string `toml:"Symbol"`
	Weight string `toml:"Weight"`
}

// Point configures the loyalty score table.
type Point struct {
	Decimal uint64       `toml:"Decimal"`
	Tokens  []PointToken `toml:"Tokens"`
}

// Tier is one row of the genesis tier table.
type Tier struct {
	Name       string `toml:"Name"`
	Threshold  string `toml:"Threshold"`
	Multiplier uint64 `toml:"Multiplier"`
}

// IDO holds the phase windows shared by every offering.
type IDO struct {
	TierWindowSecs      uint64 `toml:"TierWindowSecs"`
	WhitelistWindowSecs uint64 `toml:"WhitelistWindowSecs"`
}

// Fees is the initial registry fee policy. Zero values leave it unset.
type Fees struct {
	Percent   uint64 `toml:"Percent"`
	Recipient string `toml:"Recipient,omitempty"`
}

// Allocation credits a genesis balance out of a token's supply.
type Allocation struct {
	Address string `toml:"Address"`
	Amount  string `toml:"Amount"`
}

// Token registers a ledger token at genesis. The supply is minted to
// Owner, or to the launchpad owner when Owner is empty.
type Token struct {
	Symbol      string       `toml:"Symbol"`
	Name        string       `toml:"Name"`
	Decimals    uint8        `toml:"Decimals"`
	Owner       string       `toml:"Owner,omitempty"`
	Supply      string       `toml:"Supply"`
	Allocations []Allocation `toml:"Allocations,omitempty"`
}

// Pauses disables mutations per module.
type Pauses struct {
	Point   bool `toml:"Point"`
	Tier    bool `toml:"Tier"`
	IDO     bool `toml:"IDO"`
	Factory bool `toml:"Factory"`
}

// Config is the launchpad genesis and module configuration.
type Config struct {
	Owner     string   `toml:"Owner"`
	Operators []string `toml:"Operators"`
	Point     Point    `toml:"point"`
	Tiers     []Tier   `toml:"tiers"`
	IDO       IDO      `toml:"ido"`
	Fees      Fees     `toml:"fees"`
	Tokens    []Token  `toml:"tokens"`
	Pauses    Pauses   `toml:"pauses"`
}
