package enums

// OperatorRole describes what an authenticated operator may do.
type OperatorRole string

const (
	OperatorRoleAdmin    OperatorRole = "admin"
	OperatorRolePlanner  OperatorRole = "planner"
	OperatorRoleApprover OperatorRole = "approver"
)

var validOperatorRoles = map[OperatorRole]struct{}{
	OperatorRoleAdmin:    {},
	OperatorRolePlanner:  {},
	OperatorRoleApprover: {},
}

func (r OperatorRole) String() string { return string(r) }

func (r OperatorRole) IsValid() bool {
	_, ok := validOperatorRoles[r]
	return ok
}

// CanDecide reports whether the role may approve or reject suggestions.
func (r OperatorRole) CanDecide() bool {
	return r == OperatorRoleAdmin || r == OperatorRoleApprover
}

// ParseOperatorRole validates the raw value and returns a typed role.
func ParseOperatorRole(raw string) (OperatorRole, bool) {
	role := OperatorRole(raw)
	if role.IsValid() {
		return role, true
	}
	return "", false
}
