package authz

import (
	"sort"
	"strings"

	"github.com/meridian-lms/meridian-lms/internal/shared"
	"github.com/meridian-lms/meridian-lms/internal/users"
)

// Permission categories.
const (
	CategoryNavigation = "navigation"
	CategoryUsers      = "users"
	CategoryCourses    = "courses"
	CategoryGrades     = "grades"
	CategoryAudit      = "audit"
	CategoryOperations = "operations"
)

// Permission is one named capability in the catalog.
type Permission struct {
	Name        string
	Category    string
	Description string
}

// catalog is the closed set of recognized permission names. A name outside
// this set never resolves to granted, whatever the datastore says.
var catalog = []Permission{
	{shared.PermNavDashboard, CategoryNavigation, "See the dashboard section"},
	{shared.PermNavCourses, CategoryNavigation, "See the courses section"},
	{shared.PermNavGrades, CategoryNavigation, "See the grades section"},
	{shared.PermNavUsers, CategoryNavigation, "See the user management section"},
	{shared.PermNavAudit, CategoryNavigation, "See the audit trail section"},
	{shared.PermNavOps, CategoryNavigation, "See the operations section"},

	{shared.PermUsersView, CategoryUsers, "View user accounts"},
	{shared.PermUsersEdit, CategoryUsers, "Edit user accounts"},
	{shared.PermUsersBan, CategoryUsers, "Ban and unban user accounts"},
	{shared.PermUsersDelete, CategoryUsers, "Soft-delete user accounts"},
	{shared.PermUsersGrant, CategoryUsers, "Grant and revoke permissions"},

	{shared.PermCoursesView, CategoryCourses, "View courses"},
	{shared.PermCoursesEdit, CategoryCourses, "Create and edit courses"},
	{shared.PermGradesView, CategoryGrades, "View grades"},
	{shared.PermGradesEdit, CategoryGrades, "Enter and change grades"},

	{shared.PermAuditView, CategoryAudit, "View the audit trail"},
	{shared.PermAuditExport, CategoryAudit, "Export the audit trail"},
	{shared.PermOpsView, CategoryOperations, "View the operations dashboard"},
}

var catalogByName = func() map[string]Permission {
	m := make(map[string]Permission, len(catalog))
	for _, p := range catalog {
		m[p.Name] = p
	}
	return m
}()

// roleDefaults are the permissions each role carries without an explicit
// grant. Navigation permissions are deliberately absent: those are granted
// per user, with the admin fallback in the resolver as the only exception.
var roleDefaults = map[string][]string{
	users.RoleAdmin: {
		shared.PermUsersView, shared.PermUsersEdit, shared.PermUsersBan,
		shared.PermUsersDelete, shared.PermUsersGrant,
		shared.PermAuditView, shared.PermAuditExport, shared.PermOpsView,
	},
	users.RoleTeacher: {
		shared.PermCoursesView, shared.PermCoursesEdit,
		shared.PermGradesView, shared.PermGradesEdit,
	},
	users.RoleStudent: {
		shared.PermCoursesView, shared.PermGradesView,
	},
}

// Lookup resolves a permission name against the catalog.
func Lookup(name string) (Permission, bool) {
	p, ok := catalogByName[normalize(name)]
	return p, ok
}

// PermissionsByCategory returns the catalog grouped for the grant
// management UI. Pure read, no side effects.
func PermissionsByCategory() map[string][]Permission {
	grouped := make(map[string][]Permission)
	for _, p := range catalog {
		grouped[p.Category] = append(grouped[p.Category], p)
	}
	for _, perms := range grouped {
		sort.Slice(perms, func(i, j int) bool { return perms[i].Name < perms[j].Name })
	}
	return grouped
}

// RoleDefaults returns the default permission names for a role.
func RoleDefaults(role string) []string {
	defaults := roleDefaults[role]
	out := make([]string, len(defaults))
	copy(out, defaults)
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
