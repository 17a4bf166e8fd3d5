package common

import (
	"github.com/ethereum/go-ethereum/common"

	coreerrors "launchpad/core/errors"
)

var ErrModulePaused = coreerrors.New(coreerrors.ErrState, "module paused")

type PauseView interface {
	IsPaused(module string) bool
}

func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// StaticPauses is a fixed pause table, typically loaded from configuration.
type StaticPauses map[string]bool

// IsPaused implements PauseView.
func (s StaticPauses) IsPaused(module string) bool {
	return s[module]
}

// RoleView resolves role membership for an address.
type RoleView interface {
	HasRole(role string, addr []byte) bool
}

// Authorize is the single entry guard for privileged operations: it returns
// denied unless caller holds role. A zero caller never holds a role.
func Authorize(v RoleView, role string, caller common.Address, denied error) error {
	if v == nil || role == "" || caller == (common.Address{}) {
		return denied
	}
	if !v.HasRole(role, caller.Bytes()) {
		return denied
	}
	return nil
}
