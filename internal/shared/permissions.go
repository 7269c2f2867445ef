package shared

// Navigation permissions. These gate which portal sections render for a
// user and are granted per user; they carry the admin role fallback (see
// internal/authz). Never attached to role defaults.
const (
	PermNavDashboard = "nav.dashboard"
	PermNavCourses   = "nav.courses"
	PermNavGrades    = "nav.grades"
	PermNavUsers     = "nav.users"
	PermNavAudit     = "nav.audit"
	PermNavOps       = "nav.ops"
)

// User management permissions.
const (
	PermUsersView   = "users.view"
	PermUsersEdit   = "users.edit"
	PermUsersBan    = "users.ban"
	PermUsersDelete = "users.delete"
	PermUsersGrant  = "users.grant"
)

// Course and grade permissions consumed by the teacher/student portals.
const (
	PermCoursesView = "courses.view"
	PermCoursesEdit = "courses.edit"
	PermGradesView  = "grades.view"
	PermGradesEdit  = "grades.edit"
)

// Audit and operations permissions.
const (
	PermAuditView   = "audit.view"
	PermAuditExport = "audit.export"
	PermOpsView     = "ops.view"
)
