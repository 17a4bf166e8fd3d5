package point

import (
	"errors"

	coreerrors "launchpad/core/errors"
)

var (
	errNilState = errors.New("point: state not configured")

	ErrNotOwner       = coreerrors.New(coreerrors.ErrAuthorization, "point: caller is not the owner")
	ErrInvalidIndex   = coreerrors.New(coreerrors.ErrInvalidIndex, "point: the token index is invalid")
	ErrTokenRemoved   = coreerrors.New(coreerrors.ErrInvalidIndex, "point: you have already removed this token")
	ErrTokenPresent   = coreerrors.New(coreerrors.ErrValidation, "point: token is already inserted")
	ErrUnknownToken   = coreerrors.New(coreerrors.ErrValidation, "point: token is not registered")
	ErrInvalidWeight  = coreerrors.New(coreerrors.ErrValidation, "point: weight must not be negative")
	ErrDecimalTooHigh = coreerrors.New(coreerrors.ErrValidation, "point: decimal is too large")
)
