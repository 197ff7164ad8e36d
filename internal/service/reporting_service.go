package service

import (
	"context"
	"sort"
	"strings"

	"github.com/spec-kit/training-service/internal/domain"
	"github.com/spec-kit/training-service/internal/repository"
	"github.com/spec-kit/training-service/internal/scoring"
	apperrors "github.com/spec-kit/training-service/pkg/util/errorutil"
)

// CompletedRecord is one reviewed training record, unified across
// self-initiated results and assigned scenarios.
type CompletedRecord struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	Difficulty      string `json:"difficulty"`
	Timestamp       string `json:"timestamp"`
	Scenario        string `json:"scenario"`
	UserResponse    string `json:"user_response"`
	Evaluation      string `json:"evaluation"`
	OverallScore    string `json:"overall_score"`
	SupervisorNotes string `json:"supervisor_notes"`
	ReviewedBy      string `json:"reviewed_by"`
	ReviewDate      string `json:"review_date"`
	IsAssigned      bool   `json:"is_assigned"`
	AssignmentID    string `json:"assignment_id,omitempty"`
	ResultIndex     int    `json:"result_index"`
}

// DifficultyStat aggregates scores within one difficulty label.
type DifficultyStat struct {
	Difficulty string  `json:"difficulty"`
	Average    float64 `json:"average"`
	Attempts   int     `json:"attempts"`
}

// Overview is the score dashboard for one scope.
type Overview struct {
	Records      []CompletedRecord `json:"records"`
	Total        int               `json:"total"`
	Average      float64           `json:"average"`
	GroupAverage *float64          `json:"group_average,omitempty"`
	Trend        *float64          `json:"trend"`
	Difficulties []DifficultyStat  `json:"difficulties"`
	Roles        []string          `json:"roles"`
}

// OverviewFilter narrows the dashboard to one role or one user.
// Empty fields match everything the session may see.
type OverviewFilter struct {
	Role  string
	Email string
}

// ReportingService assembles the score dashboard across results and
// assignments.
type ReportingService struct {
	results     repository.ResultRepository
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	auth        *AuthService
}

// ReportingDependencies encapsulates requirements for the reporting service.
type ReportingDependencies struct {
	ResultRepo     repository.ResultRepository
	AssignmentRepo repository.AssignmentRepository
	UserRepo       repository.UserRepository
	Auth           *AuthService
}

// NewReportingService builds the service.
func NewReportingService(deps ReportingDependencies) *ReportingService {
	return &ReportingService{
		results:     deps.ResultRepo,
		assignments: deps.AssignmentRepo,
		users:       deps.UserRepo,
		auth:        deps.Auth,
	}
}

// CompletedRecords returns every record that finished review: results
// whose status left pending, plus assignments both completed and
// reviewed, converted to the unified shape.
func (s *ReportingService) CompletedRecords(ctx context.Context) ([]CompletedRecord, error) {
	results, err := s.results.List(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load results", err)
	}

	records := make([]CompletedRecord, 0, len(results))
	for i, result := range results {
		if result.Status == domain.ReviewStatusPending {
			continue
		}
		records = append(records, CompletedRecord{
			FirstName:       result.FirstName,
			LastName:        result.LastName,
			Email:           result.Email,
			Role:            result.Role,
			Difficulty:      result.Difficulty,
			Timestamp:       result.Timestamp,
			Scenario:        result.Scenario,
			UserResponse:    result.UserResponse,
			Evaluation:      result.Evaluation,
			OverallScore:    result.OverallScore,
			SupervisorNotes: result.SupervisorNotes,
			ReviewedBy:      strOrEmpty(result.ReviewedBy),
			ReviewDate:      strOrEmpty(result.ReviewDate),
			ResultIndex:     i,
		})
	}

	assignments, err := s.assignments.List(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load assignments", err)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load users", err)
	}

	for _, assignment := range assignments {
		if !assignment.Completed || !assignment.Reviewed {
			continue
		}
		records = append(records, convertAssignment(assignment, users))
	}
	return records, nil
}

// convertAssignment maps an assignment to the unified record shape.
// The role resolves users-db-first so reassigned staff report under
// their current position.
func convertAssignment(assignment domain.Assignment, users domain.UserDirectory) CompletedRecord {
	role := "Unknown Role"
	if user, ok := users[assignment.StaffEmail]; ok && user.Position != "" {
		role = user.Position
	} else if assignment.AssignedRole != "" {
		role = assignment.AssignedRole
	} else if assignment.StaffPosition != "" {
		role = assignment.StaffPosition
	}

	name := assignment.StaffName
	if user, ok := users[assignment.StaffEmail]; ok && user.FirstName != "" {
		name = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}
	if name == "" || name == "Staff Member" {
		name = nameFromEmail(assignment.StaffEmail)
	}
	firstName, lastName := splitName(name)

	score := assignment.OverallScore
	if !scoring.IsValid(score) && assignment.AIAnalysis != "" {
		if parsed, ok := scoring.Parse(assignment.AIAnalysis); ok {
			score = parsed
		}
	}

	timestamp := assignment.AssignedDate
	if assignment.ResponseDate != nil {
		timestamp = *assignment.ResponseDate
	}

	return CompletedRecord{
		FirstName:       firstName,
		LastName:        lastName,
		Email:           assignment.StaffEmail,
		Role:            role,
		Difficulty:      domain.DifficultyAssigned,
		Timestamp:       timestamp,
		Scenario:        assignment.Scenario,
		UserResponse:    strOrEmpty(assignment.Response),
		Evaluation:      assignment.AIAnalysis,
		OverallScore:    score,
		SupervisorNotes: assignment.SupervisorFeedback,
		ReviewedBy:      assignment.ReviewedBy,
		ReviewDate:      assignment.ReviewDate,
		IsAssigned:      true,
		AssignmentID:    assignment.ID,
		ResultIndex:     -1,
	}
}

// Overview computes dashboard statistics over the records the session
// may see, optionally narrowed by role or user.
func (s *ReportingService) Overview(ctx context.Context, session *domain.Session, filter OverviewFilter) (*Overview, error) {
	records, err := s.CompletedRecords(ctx)
	if err != nil {
		return nil, err
	}

	scoped, err := s.scope(ctx, session, records)
	if err != nil {
		return nil, err
	}

	roleSet := make(map[string]bool)
	filtered := make([]CompletedRecord, 0, len(scoped))
	groupScores := make([]int, 0, len(scoped))
	for _, record := range scoped {
		if record.Role != "" {
			roleSet[record.Role] = true
		}
		if filter.Role != "" && record.Role != filter.Role {
			continue
		}
		if score, ok := scoring.Numeric(record.OverallScore); ok && score != 0 {
			groupScores = append(groupScores, score)
		}
		if filter.Email != "" && record.Email != filter.Email {
			continue
		}
		filtered = append(filtered, record)
	}

	roles := make([]string, 0, len(roleSet))
	for role := range roleSet {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	overview := &Overview{
		Records:      filtered,
		Total:        len(filtered),
		Roles:        roles,
		Difficulties: []DifficultyStat{},
	}

	// Chronological order so the trend split is meaningful.
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Timestamp < filtered[j].Timestamp })

	scores := make([]int, 0, len(filtered))
	byDifficulty := make(map[string][]int)
	for _, record := range filtered {
		score, ok := scoring.Numeric(record.OverallScore)
		if !ok || score == 0 {
			continue
		}
		scores = append(scores, score)
		byDifficulty[record.Difficulty] = append(byDifficulty[record.Difficulty], score)
	}

	if len(scores) > 0 {
		overview.Average = average(scores)
	}
	// When the dashboard is narrowed to one person, keep the wider
	// average around for comparison.
	if filter.Email != "" && len(groupScores) > 0 {
		group := average(groupScores)
		overview.GroupAverage = &group
	}
	if len(scores) >= 2 {
		mid := len(scores) / 2
		trend := average(scores[mid:]) - average(scores[:mid])
		overview.Trend = &trend
	}

	labels := make([]string, 0, len(byDifficulty))
	for label := range byDifficulty {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		overview.Difficulties = append(overview.Difficulties, DifficultyStat{
			Difficulty: label,
			Average:    average(byDifficulty[label]),
			Attempts:   len(byDifficulty[label]),
		})
	}
	return overview, nil
}

// scope narrows records to the session's access level: admins see
// everything, supervisors their reporting line plus themselves, staff
// only themselves.
func (s *ReportingService) scope(ctx context.Context, session *domain.Session, records []CompletedRecord) ([]CompletedRecord, error) {
	if session.IsAdmin {
		return records, nil
	}

	allowed := map[string]bool{session.Email: true}
	if session.IsSupervisor() {
		visible, err := s.auth.VisibleSubmitters(ctx, session)
		if err != nil {
			return nil, err
		}
		for email := range visible {
			allowed[email] = true
		}
	}

	scoped := make([]CompletedRecord, 0, len(records))
	for _, record := range records {
		if allowed[record.Email] {
			scoped = append(scoped, record)
		}
	}
	return scoped, nil
}

func average(scores []int) float64 {
	sum := 0
	for _, score := range scores {
		sum += score
	}
	return float64(sum) / float64(len(scores))
}

func strOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// nameFromEmail derives a display name from the local part of an
// address, "jane.doe@x" becoming "Jane Doe".
func nameFromEmail(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found {
		return email
	}
	words := strings.Split(strings.ReplaceAll(local, ".", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "Unknown", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
