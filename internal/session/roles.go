package session

import (
	"github.com/connectedautocare/console-gateway/pkg/enums"
	"github.com/connectedautocare/console-gateway/pkg/platform"
)

// roleLevels orders the console roles hierarchically. Unknown roles map
// to level 0 and therefore satisfy no requirement.
var roleLevels = map[enums.UserRole]int{
	enums.UserRoleAdmin:             3,
	enums.UserRoleWholesaleReseller: 2,
	enums.UserRoleCustomer:          1,
}

// PermissionWildcard grants every capability; only admin carries it.
const PermissionWildcard = "*"

var rolePermissions = map[enums.UserRole][]string{
	enums.UserRoleAdmin: {PermissionWildcard},
	enums.UserRoleWholesaleReseller: {
		"view_products",
		"create_quotes",
		"view_policies",
		"view_rate_tables",
		"manage_customers",
	},
	enums.UserRoleCustomer: {
		"view_products",
		"create_quotes",
		"view_policies",
	},
}

// RoleLevel returns the hierarchy level for a role, 0 for unknown roles.
func RoleLevel(role enums.UserRole) int {
	return roleLevels[role]
}

// HasRole reports whether the user's role sits at or above the required
// role in the hierarchy. It is false without a user.
func HasRole(user *platform.User, required enums.UserRole) bool {
	if user == nil {
		return false
	}
	return roleLevels[user.Role] >= roleLevels[required] && roleLevels[required] > 0
}

// HasPermission reports whether the user's role carries the capability.
// Admin holds the wildcard. It is false without a user.
func HasPermission(user *platform.User, permission string) bool {
	if user == nil || permission == "" {
		return false
	}
	for _, granted := range rolePermissions[user.Role] {
		if granted == PermissionWildcard || granted == permission {
			return true
		}
	}
	return false
}

// LandingPath picks the default console route for a role after login.
// Unknown roles land on the dashboard.
func LandingPath(role enums.UserRole) string {
	if role == enums.UserRoleWholesaleReseller {
		return "/quotes/new"
	}
	return "/dashboard"
}
