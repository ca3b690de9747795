package models

import "strings"

type Role string

const (
	RoleAircraftOperator  Role = "AIRCRAFT_OPERATOR"
	RoleOperationsManager Role = "OPERATIONS_MANAGER"
)

// rolePrefix is the authority prefix used by the identity provider.
const rolePrefix = "ROLE_"

var knownRoles = map[Role]struct{}{
	RoleAircraftOperator:  {},
	RoleOperationsManager: {},
}

// ParseRole maps a raw authority claim to a known role.
// Unknown roles are reported with ok == false.
func ParseRole(claim string) (Role, bool) {
	role := Role(strings.TrimPrefix(strings.TrimSpace(claim), rolePrefix))

	if _, ok := knownRoles[role]; !ok {
		return "", false
	}

	return role, true
}

// NormalizeRoles keeps the known roles of claims in their original order without duplicates.
func NormalizeRoles(claims []string) []Role {
	result := make([]Role, 0, len(claims))
	seen := make(map[Role]struct{}, len(claims))

	for _, claim := range claims {
		role, ok := ParseRole(claim)
		if !ok {
			continue
		}

		if _, dup := seen[role]; dup {
			continue
		}

		seen[role] = struct{}{}
		result = append(result, role)
	}

	return result
}

func (r Role) IsKnown() bool {
	_, ok := knownRoles[r]
	return ok
}
