package ido

import (
	"errors"

	coreerrors "launchpad/core/errors"
)

var (
	errNilState  = errors.New("ido: state not configured")
	errNilTokens = errors.New("ido: token ledger not configured")

	ErrNotOperator     = coreerrors.New(coreerrors.ErrAuthorization, "ido: caller is not operator")
	ErrInvalidIndex    = coreerrors.New(coreerrors.ErrInvalidIndex, "ido: IDO index is invalid")
	ErrInvalidWindows  = coreerrors.New(coreerrors.ErrValidation, "ido: whitelist window must not end before the tier window")
	ErrNullAddress     = coreerrors.New(coreerrors.ErrValidation, "ido: address must not be address(0)")
	ErrZeroAmount      = coreerrors.New(coreerrors.ErrValidation, "ido: amount must be greater than zero")
	ErrNegativeAmount  = coreerrors.New(coreerrors.ErrValidation, "ido: amount must not be negative")
	ErrLengthMismatch  = coreerrors.New(coreerrors.ErrValidation, "ido: length of addresses and amounts must be equal")
	ErrStartInPast     = coreerrors.New(coreerrors.ErrValidation, "ido: start time is greater than now")
	ErrEndBeforeStart  = coreerrors.New(coreerrors.ErrValidation, "ido: end time must be greater than start time")
	ErrClaimBeforeEnd  = coreerrors.New(coreerrors.ErrValidation, "ido: claim time must be greater than end time")
	ErrCliffBeforeTGE  = coreerrors.New(coreerrors.ErrValidation, "ido: cliff time must be greater than claim time")
	ErrTGETooHigh      = coreerrors.New(coreerrors.ErrValidation, "ido: tge must be smaller than 100")
	ErrZeroPeriodicity = coreerrors.New(coreerrors.ErrValidation, "ido: periodicity must be greater than zero")
	ErrDurationPeriod  = coreerrors.New(coreerrors.ErrValidation, "ido: duration must be a multiple of periodicity")
	ErrMathOverflow    = coreerrors.New(coreerrors.ErrValidation, "ido: amount exceeds 256 bits")

	ErrTimeOut       = coreerrors.New(coreerrors.ErrTiming, "ido: time is out")
	ErrTimeNotYet    = coreerrors.New(coreerrors.ErrTiming, "ido: time is not yet")
	ErrTimePassed    = coreerrors.New(coreerrors.ErrTiming, "ido: time has already passed")
	ErrClaimNotYet   = coreerrors.New(coreerrors.ErrTiming, "ido: claim time is not yet")
	ErrNotEnded      = coreerrors.New(coreerrors.ErrTiming, "ido: IDO is not ended yet")
	ErrExceedsRest   = coreerrors.New(coreerrors.ErrCapacity, "ido: fund amount is greater than the rest")
	ErrFundTooMuch   = coreerrors.New(coreerrors.ErrCapacity, "ido: fund amount is too much")
	ErrClaimExceeds  = coreerrors.New(coreerrors.ErrCapacity, "ido: claim amount is greater than the rest")
	ErrCannotFund    = coreerrors.New(coreerrors.ErrState, "ido: funder can't fund")
	ErrNotSuccess    = coreerrors.New(coreerrors.ErrState, "ido: state is not success")
	ErrNotFailure    = coreerrors.New(coreerrors.ErrState, "ido: state is not failure")
	ErrDidNotFund    = coreerrors.New(coreerrors.ErrState, "ido: user didn't fund")
	ErrRefunded      = coreerrors.New(coreerrors.ErrState, "ido: user has already been refunded")
	ErrAlreadyEnded  = coreerrors.New(coreerrors.ErrState, "ido: IDO has already ended")
	ErrSaleReclaimed = coreerrors.New(coreerrors.ErrState, "ido: sale tokens have already been reclaimed")
)
