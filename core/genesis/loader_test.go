package genesis

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"launchpad/config"
	"launchpad/core/state"
	"launchpad/crypto"
	nativecommon "launchpad/native/common"
	"launchpad/native/factory"
	"launchpad/native/ido"
	"launchpad/native/point"
	"launchpad/native/tier"
	"launchpad/native/token"
	"launchpad/storage"
)

func newModules(t *testing.T) (*state.Manager, Modules) {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	manager := state.NewManager(db)
	ledger := token.NewLedger(manager)
	points := point.NewEngine(manager, ledger)
	tiers := tier.NewEngine(manager)
	offerings := ido.NewEngine(manager, ledger)
	registry := factory.NewRegistry(manager, offerings, tiers, points, ledger)
	return manager, Modules{Tokens: ledger, Points: points, Tiers: tiers, Registry: registry}
}

func TestApplyDefaultConfig(t *testing.T) {
	manager, mods := newModules(t)
	cfg := config.Default()
	holder := common.HexToAddress("0x0000000000000000000000000000000000000123")
	cfg.Tokens[0].Allocations = []config.Allocation{{Address: crypto.FormatAddress(holder), Amount: "830"}}
	cfg.Fees = config.Fees{Percent: 5, Recipient: crypto.FormatAddress(common.HexToAddress("0x0fee"))}

	require.NoError(t, Apply(manager, mods, cfg))
	done, err := Applied(manager)
	require.NoError(t, err)
	require.True(t, done)

	owner, err := cfg.OwnerAddress()
	require.NoError(t, err)
	for _, role := range []string{nativecommon.RolePointOwner, nativecommon.RoleTierOwner, nativecommon.RoleRegistryOwner} {
		require.True(t, manager.HasRole(role, owner.Bytes()), role)
	}

	play := token.AddressForSymbol("PLAY")
	balance, err := mods.Tokens.BalanceOf(play, holder)
	require.NoError(t, err)
	require.Equal(t, int64(830), balance.Int64())
	ownerBalance, err := mods.Tokens.BalanceOf(play, owner)
	require.NoError(t, err)
	require.Equal(t, int64(10_000-830), ownerBalance.Int64())

	count, err := mods.Points.TokenCount()
	require.NoError(t, err)
	require.Equal(t, uint64(2), count)
	score, err := mods.Points.GetPoint(holder)
	require.NoError(t, err)
	require.Equal(t, 0, score.Cmp(big.NewInt(664)))

	tierCount, err := mods.Tiers.TierCount()
	require.NoError(t, err)
	require.Equal(t, uint64(4), tierCount)
	multiplier, err := mods.Registry.GetMultiplier(holder)
	require.NoError(t, err)
	require.Equal(t, uint64(5), multiplier)

	require.True(t, mods.Registry.IsOperator(owner))
	fees, err := mods.Registry.FeeConfig()
	require.NoError(t, err)
	require.Equal(t, uint64(5), fees.Percent)
	require.Equal(t, common.HexToAddress("0x0fee"), fees.Recipient)
}

func TestApplyIsIdempotent(t *testing.T) {
	manager, mods := newModules(t)
	cfg := config.Default()
	require.NoError(t, Apply(manager, mods, cfg))
	require.NoError(t, Apply(manager, mods, cfg))

	tokens, err := mods.Tokens.Tokens()
	require.NoError(t, err)
	require.Len(t, tokens, 2)
}

func TestApplyRollsBackOnFailure(t *testing.T) {
	manager, mods := newModules(t)
	cfg := config.Default()
	// A duplicate operator fails after tokens and tiers were staged.
	cfg.Operators = []string{cfg.Owner, cfg.Owner}

	require.Error(t, Apply(manager, mods, cfg))
	done, err := Applied(manager)
	require.NoError(t, err)
	require.False(t, done)
	tokens, err := mods.Tokens.Tokens()
	require.NoError(t, err)
	require.Empty(t, tokens)
	require.False(t, mods.Tokens.Exists(token.AddressForSymbol("PLAY")))
}
