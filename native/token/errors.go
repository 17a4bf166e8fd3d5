package token

import (
	"errors"

	coreerrors "launchpad/core/errors"
)

var (
	errNilState = errors.New("token: state not configured")

	ErrUnknownToken          = coreerrors.New(coreerrors.ErrValidation, "token: unknown token")
	ErrTokenExists           = coreerrors.New(coreerrors.ErrValidation, "token: symbol already registered")
	ErrInvalidSymbol         = coreerrors.New(coreerrors.ErrValidation, "token: symbol must be 1-16 upper case letters or digits")
	ErrInvalidAmount         = coreerrors.New(coreerrors.ErrValidation, "token: amount must not be negative")
	ErrNullAddress           = coreerrors.New(coreerrors.ErrValidation, "token: address must not be address(0)")
	ErrInsufficientBalance   = coreerrors.New(coreerrors.ErrInsufficientBalance, "token: transfer amount exceeds balance")
	ErrInsufficientAllowance = coreerrors.New(coreerrors.ErrInsufficientBalance, "token: insufficient allowance")
	ErrBalanceOverflow       = coreerrors.New(coreerrors.ErrValidation, "token: balance exceeds 256 bits")
)
