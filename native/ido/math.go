package ido

import (
	"math/big"

	"github.com/holiman/uint256"
)

// mulDiv computes x*y/d with a 512-bit intermediate product. A zero divisor
// yields zero.
func mulDiv(x, y, d *big.Int) (*big.Int, error) {
	if d == nil || d.Sign() == 0 || x == nil || y == nil {
		return big.NewInt(0), nil
	}
	ux, overflowX := uint256.FromBig(x)
	uy, overflowY := uint256.FromBig(y)
	ud, overflowD := uint256.FromBig(d)
	if overflowX || overflowY || overflowD {
		return nil, ErrMathOverflow
	}
	z, overflow := new(uint256.Int).MulDivOverflow(ux, uy, ud)
	if overflow {
		return nil, ErrMathOverflow
	}
	return z.ToBig(), nil
}

// allocation is the funder's proportional share of the sale pool.
func allocation(funded, saleAmount, totalFunded *big.Int) (*big.Int, error) {
	return mulDiv(funded, saleAmount, totalFunded)
}

// unlocked returns how much of alloc is released at now. Nothing unlocks
// before claimTime; the TGE tranche unlocks at claimTime and the remainder
// in whole periods after the cliff. A zero duration releases the remainder
// as soon as the cliff has passed.
func unlocked(alloc *big.Int, vest VestInfo, claimTime, now uint64) (*big.Int, error) {
	if alloc == nil || alloc.Sign() == 0 || now < claimTime {
		return big.NewInt(0), nil
	}
	tge, err := mulDiv(alloc, new(big.Int).SetUint64(vest.TGEPercent), big.NewInt(100))
	if err != nil {
		return nil, err
	}
	if now <= vest.CliffTime {
		return tge, nil
	}
	if vest.Duration == 0 || vest.Periodicity == 0 {
		return new(big.Int).Set(alloc), nil
	}
	totalSteps := vest.Duration / vest.Periodicity
	steps := (now - vest.CliffTime) / vest.Periodicity
	if steps > totalSteps {
		steps = totalSteps
	}
	rest := new(big.Int).Sub(alloc, tge)
	vested, err := mulDiv(rest, new(big.Int).SetUint64(steps), new(big.Int).SetUint64(totalSteps))
	if err != nil {
		return nil, err
	}
	return vested.Add(vested, tge), nil
}

// fee returns total*percent/100.
func fee(total *big.Int, percent uint64) (*big.Int, error) {
	return mulDiv(total, new(big.Int).SetUint64(percent), big.NewInt(100))
}
