package common

// Role names held in the state role table.
const (
	RolePointOwner    = "point/owner"
	RoleTierOwner     = "tier/owner"
	RoleRegistryOwner = "factory/owner"
	RoleOperator      = "factory/operator"
)
