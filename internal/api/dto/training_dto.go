package dto

import "time"

// BootstrapRequest creates the first admin account.
type BootstrapRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ChangePasswordRequest payload for self-service password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// CreateUserRequest payload for admin account creation.
type CreateUserRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
	Password  string `json:"password"`
	IsAdmin   bool   `json:"is_admin"`
}

// UpdateUserRequest payload for admin account edits.
type UpdateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
	IsAdmin   bool   `json:"is_admin"`
}

// ResetPasswordRequest sets or generates a new password for an account.
// An empty password requests a generated temporary one.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// CreateRoleRequest adds a role to the catalog.
type CreateRoleRequest struct {
	Name string `json:"name"`
}

// UpdateRoleRequest edits role details. Omitted fields stay untouched.
type UpdateRoleRequest struct {
	Description       *string `json:"description"`
	SystemInstruction *string `json:"system_instruction"`
	Supervisor        *string `json:"supervisor"`
}

// EdgeRequest names one reporting relationship, source reporting to
// target.
type EdgeRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// GenerateScenarioRequest payload for the simulator.
type GenerateScenarioRequest struct {
	Role            string   `json:"role"`
	Difficulty      string   `json:"difficulty"`
	Model           string   `json:"model"`
	LastScenario    string   `json:"last_scenario"`
	BuildingHistory []string `json:"building_history"`
}

// SubmitScenarioRequest payload for a completed attempt.
type SubmitScenarioRequest struct {
	Role       string `json:"role"`
	Difficulty string `json:"difficulty"`
	Scenario   string `json:"scenario"`
	Response   string `json:"response"`
	Model      string `json:"model"`
}

// ReviewResultRequest marks a pending result reviewed.
type ReviewResultRequest struct {
	Notes string `json:"notes"`
}

// CreateAssignmentRequest fans a generated scenario out to staff.
type CreateAssignmentRequest struct {
	Role        string   `json:"role"`
	Topic       string   `json:"topic"`
	ContactType string   `json:"contact_type"`
	StaffEmails []string `json:"staff_emails"`
	Model       string   `json:"model"`
}

// AssignmentResponseRequest submits a staff answer to an assignment.
type AssignmentResponseRequest struct {
	Response string `json:"response"`
	Model    string `json:"model"`
}

// ReviewAssignmentRequest marks a completed assignment reviewed.
type ReviewAssignmentRequest struct {
	Feedback string `json:"feedback"`
}

// TranscriptAnalysisRequest payload for written call analysis.
type TranscriptAnalysisRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Transcript string `json:"transcript"`
	Model      string `json:"model"`
}

// PolishToneRequest payload for tone rewriting.
type PolishToneRequest struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// RerunAnalysesRequest selects stored records for re-evaluation.
// Targets are "result:<index>" or "assignment:<id>".
type RerunAnalysesRequest struct {
	Targets []string `json:"targets"`
	Model   string   `json:"model"`
}
