package domain

// RoleClass distinguishes staff from supervisors for surface gating.
// Admins carry IsAdmin on the session and pass every gate.
type RoleClass string

const (
	RoleClassStaff      RoleClass = "staff"
	RoleClassSupervisor RoleClass = "supervisor"
)

// Session is the per-request identity derived from the user directory
// and the current catalog. It is rebuilt on every request so role or
// org chart edits take effect immediately.
type Session struct {
	Email         string
	FirstName     string
	LastName      string
	Position      string
	IsAdmin       bool
	DirectReports []string
	RoleClass     RoleClass
}

// FullName returns the display name for the signed-in user.
func (s Session) FullName() string {
	return s.FirstName + " " + s.LastName
}

// IsSupervisor reports whether the session may use supervisor surfaces.
func (s Session) IsSupervisor() bool {
	return s.IsAdmin || s.RoleClass == RoleClassSupervisor
}
