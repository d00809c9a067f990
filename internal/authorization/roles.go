package authorization

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"
)

type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleEditor     UserRole = "EDITOR"
	RoleUser       UserRole = "USER"
)

// roleRanks defines the total order used by every permission check.
var roleRanks = map[UserRole]int{
	RoleUser:       1,
	RoleEditor:     2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsValid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Rank returns the privilege level of the role, or 0 for unknown roles.
func (r UserRole) Rank() int {
	return roleRanks[r]
}

// AtLeast reports whether r is as privileged as minimum. Unknown roles never qualify.
func (r UserRole) AtLeast(minimum UserRole) bool {
	rank := r.Rank()
	return rank > 0 && rank >= minimum.Rank()
}

func (r UserRole) Value() (driver.Value, error) {
	if r == "" {
		return string(RoleUser), nil
	}
	if !r.IsValid() {
		return nil, fmt.Errorf("invalid user role: %q", r)
	}
	return string(r), nil
}

func (r *UserRole) Scan(value interface{}) error {
	if value == nil {
		*r = RoleUser
		return nil
	}

	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported type for UserRole: %T", value)
	}

	role, ok := ParseUserRole(raw)
	if !ok {
		return fmt.Errorf("invalid user role: %q", raw)
	}
	*r = role
	return nil
}

type Permission string

const (
	PermissionAccessAdmin      Permission = "access_admin"
	PermissionManageOwnPosts   Permission = "manage_own_posts"
	PermissionManageAllPosts   Permission = "manage_all_posts"
	PermissionModerateComments Permission = "moderate_comments"
	PermissionManageMedia      Permission = "manage_media"
	PermissionDeleteMedia      Permission = "delete_media"
	PermissionManageTaxonomy   Permission = "manage_taxonomy"
	PermissionManageUsers      Permission = "manage_users"
	PermissionManageSettings   Permission = "manage_settings"
	PermissionViewStatistics   Permission = "view_statistics"
)

// permissionMinimumRole maps each permission to the least privileged role holding it.
var permissionMinimumRole = map[Permission]UserRole{
	PermissionAccessAdmin:      RoleEditor,
	PermissionManageOwnPosts:   RoleEditor,
	PermissionManageAllPosts:   RoleAdmin,
	PermissionModerateComments: RoleEditor,
	PermissionManageMedia:      RoleEditor,
	PermissionDeleteMedia:      RoleAdmin,
	PermissionManageTaxonomy:   RoleAdmin,
	PermissionManageUsers:      RoleAdmin,
	PermissionManageSettings:   RoleAdmin,
	PermissionViewStatistics:   RoleEditor,
}

func RoleHasPermission(role UserRole, permission Permission) bool {
	minimum, ok := permissionMinimumRole[permission]
	if !ok {
		return false
	}
	return role.AtLeast(minimum)
}

// CanManagePost reports whether the actor may read or change a post written by authorID.
func CanManagePost(role UserRole, actorID, authorID uint) bool {
	if RoleHasPermission(role, PermissionManageAllPosts) {
		return true
	}
	return RoleHasPermission(role, PermissionManageOwnPosts) && actorID != 0 && actorID == authorID
}

// CanAssignRole reports whether actor may grant target to some account.
func CanAssignRole(actor, target UserRole) bool {
	if !RoleHasPermission(actor, PermissionManageUsers) || !target.IsValid() {
		return false
	}
	if target == RoleSuperAdmin {
		return actor == RoleSuperAdmin
	}
	return true
}

// CanModifyUser reports whether actor may update or delete an account currently holding current.
func CanModifyUser(actor, current UserRole) bool {
	if !RoleHasPermission(actor, PermissionManageUsers) {
		return false
	}
	if current == RoleSuperAdmin {
		return actor == RoleSuperAdmin
	}
	return true
}

func ParseUserRole(value interface{}) (UserRole, bool) {
	var raw string
	switch v := value.(type) {
	case UserRole:
		raw = string(v)
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return "", false
	}

	role := UserRole(strings.ToUpper(strings.TrimSpace(raw)))
	if !role.IsValid() {
		return "", false
	}
	return role, true
}

// ValidRoles returns every role ordered from most to least privileged.
func ValidRoles() []UserRole {
	roles := make([]UserRole, 0, len(roleRanks))
	for role := range roleRanks {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool {
		return roles[i].Rank() > roles[j].Rank()
	})
	return roles
}
