package ido

import "math/big"

// timeAllowsConfig is the shared precondition of every parameter setter:
// configuration is open until the start time is reached. An offering whose
// start time was never set stays configurable.
func timeAllowsConfig(now, startTime uint64) bool {
	return startTime == 0 || now < startTime
}

// phaseAt resolves the funding sub-window active at now. An offering without
// a start time is not scheduled and stays pending.
func phaseAt(o *Offering, params Params, now uint64) Phase {
	if o.State != StateWaiting {
		return PhaseClosed
	}
	if o.StartTime == 0 || now < o.StartTime {
		return PhasePending
	}
	if now >= o.EndTime {
		return PhaseClosed
	}
	switch offset := now - o.StartTime; {
	case offset < params.TierWindow:
		return PhaseTier
	case offset < params.WhitelistWindow:
		return PhaseWhitelist
	default:
		return PhasePublic
	}
}

// phaseCap returns the cumulative ceiling for a funder in phase. Every
// phase is clipped to MaxAmountPerUser.
func phaseCap(o *Offering, phase Phase, multiplier uint64, whitelist *big.Int) *big.Int {
	maxPerUser := cloneBigInt(o.MaxAmountPerUser)
	var limit *big.Int
	switch phase {
	case PhaseTier:
		limit = new(big.Int).Mul(cloneBigInt(o.BaseAmount), new(big.Int).SetUint64(multiplier))
	case PhaseWhitelist:
		limit = new(big.Int).Mul(cloneBigInt(o.BaseAmount), new(big.Int).SetUint64(multiplier))
		if whitelist != nil && whitelist.Cmp(limit) > 0 {
			limit = new(big.Int).Set(whitelist)
		}
	case PhasePublic:
		limit = maxPerUser
	default:
		return big.NewInt(0)
	}
	if limit.Cmp(maxPerUser) > 0 {
		return maxPerUser
	}
	return limit
}

// remainingCap is the amount a funder may still contribute in phase.
func remainingCap(o *Offering, phase Phase, multiplier uint64, acct *Account) *big.Int {
	limit := phaseCap(o, phase, multiplier, acct.Whitelist)
	rest := limit.Sub(limit, acct.Funded)
	if rest.Sign() < 0 {
		return big.NewInt(0)
	}
	return rest
}
