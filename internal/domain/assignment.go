package domain

// Assignment is a supervisor-pushed scenario for one staff member.
// Field names are the interchange schema of the assignments document.
type Assignment struct {
	ID                 string  `json:"id"`
	SupervisorEmail    string  `json:"supervisor_email"`
	SupervisorName     string  `json:"supervisor_name"`
	StaffEmail         string  `json:"staff_email"`
	StaffName          string  `json:"staff_name"`
	AssignedRole       string  `json:"assigned_role"`
	StaffPosition      string  `json:"staff_position"`
	Topic              string  `json:"topic"`
	Scenario           string  `json:"scenario"`
	AssignedDate       string  `json:"assigned_date"`
	Completed          bool    `json:"completed"`
	Response           *string `json:"response"`
	ResponseDate       *string `json:"response_date"`
	AIAnalysis         string  `json:"ai_analysis,omitempty"`
	OverallScore       string  `json:"overall_score,omitempty"`
	Reviewed           bool    `json:"reviewed,omitempty"`
	ReviewedBy         string  `json:"reviewed_by,omitempty"`
	ReviewDate         string  `json:"review_date,omitempty"`
	SupervisorFeedback string  `json:"supervisor_feedback,omitempty"`
}

// AssignmentBook is the whole assignments collection.
type AssignmentBook struct {
	Assignments []Assignment `json:"assignments"`
}

// EmptyAssignmentBook returns the default for an absent or corrupt document.
func EmptyAssignmentBook() AssignmentBook {
	return AssignmentBook{Assignments: []Assignment{}}
}

// AssignmentTopics is the fixed list of assignable scenario topics.
var AssignmentTopics = []string{
	"Housing Application",
	"Room Assignment",
	"Roommate Matching",
	"Roommate Conflict",
	"Noise Complaint",
	"Housing Policy Question",
	"Maintenance Request",
	"Key & Electronic Access Issue",
	"Room Change Request",
	"Lease Violation",
	"Guest Policy Issue",
	"Parking Problem",
	"Meeting Room Reservation",
	"Billing Question",
	"Community Standards",
	"Student Wellness Concern",
}

// ContactTypes is the fixed list of customer contact types for assignments.
var ContactTypes = []string{
	"Email",
	"In Person Question",
	"Phone Call",
	"On-Call Situation",
}
