package factory

import (
	"errors"

	coreerrors "launchpad/core/errors"
)

var (
	errNilState = errors.New("factory: state not configured")

	ErrNotOwner          = coreerrors.New(coreerrors.ErrAuthorization, "factory: caller is not the owner")
	ErrNotOperator       = coreerrors.New(coreerrors.ErrAuthorization, "factory: caller is not the operator")
	ErrOperatorExists    = coreerrors.New(coreerrors.ErrValidation, "factory: you have already inserted the operator")
	ErrOperatorIndex     = coreerrors.New(coreerrors.ErrInvalidIndex, "factory: operator index is invalid")
	ErrIDOIndex          = coreerrors.New(coreerrors.ErrInvalidIndex, "factory: IDO index is invalid")
	ErrNullAddress       = coreerrors.New(coreerrors.ErrValidation, "factory: address must not be address(0)")
	ErrZeroAmount        = coreerrors.New(coreerrors.ErrValidation, "factory: amount must be greater than zero")
	ErrBalanceNotEnough  = coreerrors.New(coreerrors.ErrInsufficientBalance, "factory: balance of owner is not enough")
	ErrNullFeeRecipient  = coreerrors.New(coreerrors.ErrValidation, "factory: fee recipient must not be address(0)")
	ErrFeePercentZero    = coreerrors.New(coreerrors.ErrValidation, "factory: fee percent must be bigger than zero")
	ErrFeePercentTooHigh = coreerrors.New(coreerrors.ErrValidation, "factory: fee percent must not exceed 100")
	ErrFeePercentUnset   = coreerrors.New(coreerrors.ErrValidation, "factory: owner didn't set the fee percent")
	ErrFeeRecipientUnset = coreerrors.New(coreerrors.ErrValidation, "factory: owner didn't set the fee recipient")
	ErrNullPayout        = coreerrors.New(coreerrors.ErrValidation, "factory: payout address must not be address(0)")
)
