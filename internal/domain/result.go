package domain

// ReviewStatus tracks the supervisor review lifecycle of a Result.
// The empty status marks records that bypass review (call analyses).
type ReviewStatus string

const (
	ReviewStatusPending   ReviewStatus = "pending"
	ReviewStatusCompleted ReviewStatus = "completed"
)

// Result is one persisted scenario attempt or call analysis with its
// evaluation. Field names are the interchange schema of the results
// document and must not change.
type Result struct {
	FirstName       string       `json:"first_name"`
	LastName        string       `json:"last_name"`
	Email           string       `json:"email"`
	Timestamp       string       `json:"timestamp"`
	Role            string       `json:"role"`
	Difficulty      string       `json:"difficulty"`
	Scenario        string       `json:"scenario"`
	UserResponse    string       `json:"user_response"`
	Evaluation      string       `json:"evaluation"`
	OverallScore    string       `json:"overall_score"`
	Status          ReviewStatus `json:"status,omitempty"`
	ReviewedBy      *string      `json:"reviewed_by"`
	ReviewDate      *string      `json:"review_date"`
	SupervisorNotes string       `json:"supervisor_notes"`
}

// Difficulty labels for self-initiated attempts; call analyses use the
// dedicated labels below.
const (
	DifficultyEasier  = "Easier than average"
	DifficultyAverage = "Average"
	DifficultyHarder  = "Harder than average"

	DifficultyCallAnalysis      = "Call Analysis"
	DifficultyCallAnalysisAudio = "Call Analysis (Audio)"
	DifficultyAssigned          = "Assigned Scenario"
)

// Difficulties lists the selectable difficulty levels for the simulator.
var Difficulties = []string{DifficultyEasier, DifficultyAverage, DifficultyHarder}
