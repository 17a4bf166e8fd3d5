package tier

import (
	"errors"

	coreerrors "launchpad/core/errors"
)

var (
	errNilState = errors.New("tier: state not configured")

	ErrNotOwner          = coreerrors.New(coreerrors.ErrAuthorization, "tier: caller is not the owner")
	ErrInvalidIndex      = coreerrors.New(coreerrors.ErrInvalidIndex, "tier: invalid index")
	ErrTierRemoved       = coreerrors.New(coreerrors.ErrInvalidIndex, "tier: tier has already been removed")
	ErrEmptyName         = coreerrors.New(coreerrors.ErrValidation, "tier: name must not be empty")
	ErrInvalidThreshold  = coreerrors.New(coreerrors.ErrValidation, "tier: threshold must not be negative")
	ErrInvalidMultiplier = coreerrors.New(coreerrors.ErrValidation, "tier: multiplier must be greater than zero")
)
