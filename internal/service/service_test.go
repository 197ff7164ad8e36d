package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/training-service/internal/config"
	"github.com/spec-kit/training-service/internal/docstore"
	"github.com/spec-kit/training-service/internal/domain"
	"github.com/spec-kit/training-service/internal/events"
	"github.com/spec-kit/training-service/internal/llm"
	"github.com/spec-kit/training-service/internal/prompt"
	"github.com/spec-kit/training-service/internal/repository"
	apperrors "github.com/spec-kit/training-service/pkg/util/errorutil"
)

const cannedEvaluation = `### Guiding NORTH Evaluation:

OVERALL_SCORE: 3

Overall Score: 3

**N - Navigate Needs:**
- **Rating:** Proficient
- **Justification:** Asked clarifying questions.`

const cannedScenario = `SCENARIO TITLE: Lockout at West Hall
SITUATION: A resident of West Hall calls at 2 AM after a lockout. The $10 fee applies.
YOUR TASK: Walk through how you would assist the resident.`

// stubGenerator returns canned text per request kind and records the
// last request for assertions.
type stubGenerator struct {
	lastReq llm.Request
	fail    error
}

func (g *stubGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	g.lastReq = req
	if g.fail != nil {
		return "", g.fail
	}
	switch req.Kind {
	case llm.KindScenario:
		return cannedScenario, nil
	case llm.KindEvaluation, llm.KindCallAnalysis:
		return cannedEvaluation, nil
	default:
		return "Polished text.", nil
	}
}

func (g *stubGenerator) ListModels(context.Context) ([]string, error) {
	return []string{"models/gemini-2.0-flash-exp"}, nil
}

type fixture struct {
	users       repository.UserRepository
	catalog     repository.CatalogRepository
	results     repository.ResultRepository
	assignments repository.AssignmentRepository
	gen         *stubGenerator
	auth        *AuthService
	scenarios   *ScenarioService
	assignSvc   *AssignmentService
	reporting   *ReportingService
	analysis    *AnalysisService
	catalogSvc  *CatalogService
	userSvc     *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := docstore.NewFileStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	t.Cleanup(store.Close)

	f := &fixture{
		users:       repository.NewUserRepository(store),
		catalog:     repository.NewCatalogRepository(store),
		results:     repository.NewResultRepository(store),
		assignments: repository.NewAssignmentRepository(store),
		gen:         &stubGenerator{},
	}

	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60}}
	f.auth = NewAuthService(cfg, AuthDependencies{UserRepo: f.users, CatalogRepo: f.catalog})

	builder := prompt.NewBuilder(prompt.Knowledge{
		Framework:     "Framework text",
		KnowledgeBase: "Knowledge base text",
		Website:       "Website text",
		BestPractices: "Best practices text",
	})
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())

	f.scenarios = NewScenarioService(ScenarioDependencies{
		CatalogRepo:    f.catalog,
		ResultRepo:     f.results,
		AssignmentRepo: f.assignments,
		Auth:           f.auth,
		Generator:      f.gen,
		Builder:        builder,
		Dispatcher:     dispatcher,
	})
	f.assignSvc = NewAssignmentService(AssignmentDependencies{
		CatalogRepo:    f.catalog,
		UserRepo:       f.users,
		AssignmentRepo: f.assignments,
		Auth:           f.auth,
		Generator:      f.gen,
		Builder:        builder,
		Dispatcher:     dispatcher,
	})
	f.reporting = NewReportingService(ReportingDependencies{
		ResultRepo:     f.results,
		AssignmentRepo: f.assignments,
		UserRepo:       f.users,
		Auth:           f.auth,
	})
	f.analysis = NewAnalysisService(AnalysisDependencies{
		CatalogRepo: f.catalog,
		ResultRepo:  f.results,
		Generator:   f.gen,
		Builder:     builder,
	})
	f.catalogSvc = NewCatalogService(CatalogDependencies{
		CatalogRepo: f.catalog,
		UserRepo:    f.users,
	})
	f.userSvc = NewUserService(UserDependencies{
		UserRepo:    f.users,
		CatalogRepo: f.catalog,
		Dispatcher:  dispatcher,
	})

	// A two-level office: RA reports to RD, RD reports to Director.
	ctx := context.Background()
	for _, role := range []string{"Director", "Resident Director", "Resident Assistant"} {
		if err := f.catalog.SaveRole(ctx, role, domain.Role{Description: role + " duties"}); err != nil {
			t.Fatalf("SaveRole(%s): %v", role, err)
		}
	}
	mustAddEdge := func(source, target string) {
		if err := f.catalog.AddEdge(ctx, domain.Edge{Source: source, Target: target}); err != nil {
			t.Fatalf("AddEdge(%s, %s): %v", source, target, err)
		}
	}
	mustAddEdge("Resident Assistant", "Resident Director")
	mustAddEdge("Resident Director", "Director")

	return f
}

func (f *fixture) addUser(t *testing.T, email, first, last, position string, isAdmin bool) {
	t.Helper()
	if err := f.userSvc.Create(context.Background(), "seed@example.com", CreateUserInput{
		Email:     email,
		FirstName: first,
		LastName:  last,
		Position:  position,
		Password:  "hunter22",
		IsAdmin:   isAdmin,
	}); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
}

func (f *fixture) session(t *testing.T, email string) *domain.Session {
	t.Helper()
	session, err := f.auth.SessionFor(context.Background(), email)
	if err != nil {
		t.Fatalf("SessionFor(%s): %v", email, err)
	}
	return session
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	if !apperrors.AsDomainError(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	return domainErr.Code
}

func TestBootstrapAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.auth.Bootstrap(ctx, "admin@example.com", "secret1", "secret1"); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if err := f.auth.Bootstrap(ctx, "second@example.com", "secret1", "secret1"); err == nil {
		t.Fatal("second bootstrap should be rejected")
	} else if errCode(t, err) != apperrors.CodeConflict {
		t.Fatalf("second bootstrap code = %s", errCode(t, err))
	}

	token, _, session, err := f.auth.Login(ctx, "admin@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if !session.IsAdmin {
		t.Fatal("bootstrap account should be admin")
	}

	if _, _, _, err := f.auth.Login(ctx, "admin@example.com", "wrong"); errCode(t, err) != apperrors.CodeAuthFailed {
		t.Fatalf("bad password code = %s", errCode(t, err))
	}
	if _, _, _, err := f.auth.Login(ctx, "ghost@example.com", "secret1"); errCode(t, err) != apperrors.CodeAuthFailed {
		t.Fatalf("unknown email code = %s", errCode(t, err))
	}
}

func TestSessionDerivesSupervisorStanding(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "rd@example.com", "Riley", "Dunn", "Resident Director", false)
	f.addUser(t, "ra@example.com", "Avery", "Reed", "Resident Assistant", false)

	rd := f.session(t, "rd@example.com")
	if !rd.IsSupervisor() {
		t.Fatal("RD with reports should be a supervisor")
	}
	if len(rd.DirectReports) != 1 || rd.DirectReports[0] != "Resident Assistant" {
		t.Fatalf("DirectReports = %v", rd.DirectReports)
	}

	ra := f.session(t, "ra@example.com")
	if ra.IsSupervisor() {
		t.Fatal("RA should not be a supervisor")
	}
}

func TestScenarioGenerateRoleGuard(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "ra@example.com", "Avery", "Reed", "Resident Assistant", false)
	ra := f.session(t, "ra@example.com")
	ctx := context.Background()

	_, err := f.scenarios.Generate(ctx, ra, GenerateInput{Role: "Director", Difficulty: domain.DifficultyAverage})
	if errCode(t, err) != apperrors.CodeForbidden {
		t.Fatalf("cross-role generate code = %s", errCode(t, err))
	}

	out, err := f.scenarios.Generate(ctx, ra, GenerateInput{Role: "Resident Assistant", Difficulty: domain.DifficultyAverage})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.Building != "West Hall" {
		t.Fatalf("Building = %q", out.Building)
	}
	if f.gen.lastReq.Temperature != 0.9 {
		t.Fatalf("scenario temperature = %v", f.gen.lastReq.Temperature)
	}

	_, err = f.scenarios.Generate(ctx, ra, GenerateInput{Role: "Resident Assistant", Difficulty: "Impossible"})
	if errCode(t, err) != apperrors.CodeValidation {
		t.Fatalf("bad difficulty code = %s", errCode(t, err))
	}
}

func TestScenarioSubmitAndReview(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "rd@example.com", "Riley", "Dunn", "Resident Director", false)
	f.addUser(t, "ra@example.com", "Avery", "Reed", "Resident Assistant", false)
	ra := f.session(t, "ra@example.com")
	rd := f.session(t, "rd@example.com")
	ctx := context.Background()

	submitted, err := f.scenarios.Submit(ctx, ra, SubmitInput{
		Role:       "Resident Assistant",
		Difficulty: domain.DifficultyAverage,
		Scenario:   "A lockout at 2 AM.",
		Response:   "I would verify identity and apply the lockout procedure.",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if submitted.OverallScore != "3" {
		t.Fatalf("OverallScore = %q", submitted.OverallScore)
	}

	pending, err := f.scenarios.PendingResults(ctx, rd)
	if err != nil {
		t.Fatalf("PendingResults: %v", err)
	}
	if len(pending) != 1 || pending[0].Result.Email != "ra@example.com" {
		t.Fatalf("pending = %+v", pending)
	}
	if pending[0].Result.Status != domain.ReviewStatusPending {
		t.Fatalf("status = %q", pending[0].Result.Status)
	}

	if err := f.scenarios.Review(ctx, rd, pending[0].Index, "Good instincts."); err != nil {
		t.Fatalf("Review: %v", err)
	}
	// Reviewing twice must fail; the transition is one-way.
	if err := f.scenarios.Review(ctx, rd, pending[0].Index, "Again"); errCode(t, err) != apperrors.CodeConflict {
		t.Fatalf("double review code = %s", errCode(t, err))
	}

	results, err := f.results.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	reviewed := results[pending[0].Index]
	if reviewed.Status != domain.ReviewStatusCompleted {
		t.Fatalf("status after review = %q", reviewed.Status)
	}
	if reviewed.ReviewedBy == nil || *reviewed.ReviewedBy != "rd@example.com" {
		t.Fatalf("ReviewedBy = %v", reviewed.ReviewedBy)
	}
	if reviewed.SupervisorNotes != "Good instincts." {
		t.Fatalf("SupervisorNotes = %q", reviewed.SupervisorNotes)
	}
}

func TestSubmitFailureDoesNotPersist(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "ra@example.com", "Avery", "Reed", "Resident Assistant", false)
	ra := f.session(t, "ra@example.com")
	ctx := context.Background()

	f.gen.fail = errors.New("model unavailable")
	_, err := f.scenarios.Submit(ctx, ra, SubmitInput{
		Role:       "Resident Assistant",
		Difficulty: domain.DifficultyAverage,
		Scenario:   "A lockout at 2 AM.",
		Response:   "My response.",
	})
	if errCode(t, err) != apperrors.CodeExternalService {
		t.Fatalf("code = %s", errCode(t, err))
	}

	results, err := f.results.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results persisted on failure: %d", len(results))
	}
}

func TestAssignmentLifecycle(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "rd@example.com", "Riley", "Dunn", "Resident Director", false)
	f.addUser(t, "ra@example.com", "Avery", "Reed", "Resident Assistant", false)
	rd := f.session(t, "rd@example.com")
	ra := f.session(t, "ra@example.com")
	ctx := context.Background()

	// Director is above the RD, not below.
	_, err := f.assignSvc.Create(ctx, rd, CreateAssignmentInput{
		Role:        "Director",
		Topic:       "Roommate Conflict",
		ContactType: "Email",
		StaffEmails: []string{"ra@example.com"},
	})
	if errCode(t, err) != apperrors.CodeForbidden {
		t.Fatalf("out-of-line assign code = %s", errCode(t, err))
	}

	created, err := f.assignSvc.Create(ctx, rd, CreateAssignmentInput{
		Role:        "Resident Assistant",
		Topic:       "Roommate Conflict",
		ContactType: "Email",
		StaffEmails: []string{"ra@example.com"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("created = %d", len(created))
	}
	assignment := created[0]
	if assignment.StaffName != "Avery Reed" {
		t.Fatalf("StaffName = %q", assignment.StaffName)
	}
	if !strings.HasSuffix(assignment.ID, "_ra@example.com") {
		t.Fatalf("ID = %q", assignment.ID)
	}

	lists, err := f.assignSvc.ListMine(ctx, ra)
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(lists.Pending) != 1 || len(lists.Completed) != 0 {
		t.Fatalf("lists = %+v", lists)
	}

	if _, err := f.assignSvc.SubmitResponse(ctx, rd, assignment.ID, "Not mine", ""); errCode(t, err) != apperrors.CodeForbidden {
		t.Fatalf("foreign submit code = %s", errCode(t, err))
	}

	updated, err := f.assignSvc.SubmitResponse(ctx, ra, assignment.ID, "I would mediate a roommate agreement.", "")
	if err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}
	if !updated.Completed || updated.OverallScore != "3" {
		t.Fatalf("updated = %+v", updated)
	}
	if _, err := f.assignSvc.SubmitResponse(ctx, ra, assignment.ID, "Take two", ""); errCode(t, err) != apperrors.CodeConflict {
		t.Fatalf("re-submit code = %s", errCode(t, err))
	}

	pending, err := f.assignSvc.PendingReview(ctx, rd)
	if err != nil {
		t.Fatalf("PendingReview: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending review = %d", len(pending))
	}

	if err := f.assignSvc.Review(ctx, rd, assignment.ID, "Solid plan."); err != nil {
		t.Fatalf("Review: %v", err)
	}
	if err := f.assignSvc.Review(ctx, rd, assignment.ID, "Again"); errCode(t, err) != apperrors.CodeConflict {
		t.Fatalf("double review code = %s", errCode(t, err))
	}

	// Completed assignments cannot be removed by staff.
	if err := f.assignSvc.Delete(ctx, ra, assignment.ID); errCode(t, err) != apperrors.CodeConflict {
		t.Fatalf("staff delete completed code = %s", errCode(t, err))
	}
}

func TestAssignmentRecipientsMustHoldRole(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "rd@example.com", "Riley", "Dunn", "Resident Director", false)
	f.addUser(t, "ra@example.com", "Avery", "Reed", "Resident Assistant", false)
	rd := f.session(t, "rd@example.com")
	ctx := context.Background()

	input := CreateAssignmentInput{
		Role:        "Resident Assistant",
		Topic:       "Roommate Conflict",
		ContactType: "Email",
	}

	input.StaffEmails = []string{"ghost@example.com"}
	if _, err := f.assignSvc.Create(ctx, rd, input); errCode(t, err) != apperrors.CodeValidation {
		t.Fatalf("unknown recipient code = %s", errCode(t, err))
	}

	// The RD holds a different position, so they cannot receive an
	// RA assignment even though the account exists.
	input.StaffEmails = []string{"rd@example.com"}
	if _, err := f.assignSvc.Create(ctx, rd, input); errCode(t, err) != apperrors.CodeValidation {
		t.Fatalf("wrong-role recipient code = %s", errCode(t, err))
	}

	// Rejected fan-outs must not persist anything.
	assignments, err := f.assignments.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(assignments) != 0 {
		t.Fatalf("assignments persisted on rejection: %d", len(assignments))
	}

	staff, err := f.assignSvc.StaffInRole(ctx, rd, "Resident Assistant")
	if err != nil {
		t.Fatalf("StaffInRole: %v", err)
	}
	if len(staff) != 1 || staff[0].Email != "ra@example.com" || staff[0].Name != "Avery Reed" {
		t.Fatalf("staff = %+v", staff)
	}
	if _, err := f.assignSvc.StaffInRole(ctx, rd, "Director"); errCode(t, err) != apperrors.CodeForbidden {
		t.Fatalf("out-of-line staff listing code = %s", errCode(t, err))
	}
}

func TestRetroFixScores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A decorated score that Parse can repair and a clean one it
	// should leave alone.
	if _, err := f.results.Append(ctx, domain.Result{
		Email:        "ra@example.com",
		Evaluation:   "OVERALL_SCORE: 2\n\nOverall Score: 2",
		OverallScore: "** 2",
		Status:       domain.ReviewStatusCompleted,
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := f.results.Append(ctx, domain.Result{
		Email:        "ra@example.com",
		Evaluation:   "OVERALL_SCORE: 4",
		OverallScore: "4",
		Status:       domain.ReviewStatusCompleted,
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	report, err := f.scenarios.RetroFixScores(ctx)
	if err != nil {
		t.Fatalf("RetroFixScores: %v", err)
	}
	if report.Results != 1 || report.Assignments != 0 {
		t.Fatalf("report = %+v", report)
	}

	results, _ := f.results.List(ctx)
	if results[0].OverallScore != "2" {
		t.Fatalf("repaired score = %q", results[0].OverallScore)
	}
}

func TestReportingOverviewScopes(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "admin@example.com", "Ada", "Min", "Director", true)
	f.addUser(t, "rd@example.com", "Riley", "Dunn", "Resident Director", false)
	f.addUser(t, "ra@example.com", "Avery", "Reed", "Resident Assistant", false)
	ctx := context.Background()

	seed := func(email, score string, status domain.ReviewStatus) {
		t.Helper()
		if _, err := f.results.Append(ctx, domain.Result{
			Email:        email,
			Role:         "Resident Assistant",
			Difficulty:   domain.DifficultyAverage,
			OverallScore: score,
			Status:       status,
		}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	seed("ra@example.com", "2", domain.ReviewStatusCompleted)
	seed("ra@example.com", "4", domain.ReviewStatusCompleted)
	seed("ra@example.com", "3", domain.ReviewStatusPending) // invisible until reviewed
	seed("other@example.com", "1", domain.ReviewStatusCompleted)

	admin := f.session(t, "admin@example.com")
	overview, err := f.reporting.Overview(ctx, admin, OverviewFilter{})
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if overview.Total != 3 {
		t.Fatalf("admin total = %d", overview.Total)
	}
	if overview.GroupAverage != nil {
		t.Fatal("group average should only appear for a single-user view")
	}

	narrowed, err := f.reporting.Overview(ctx, admin, OverviewFilter{Email: "ra@example.com"})
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if narrowed.Average != 3.0 {
		t.Fatalf("narrowed average = %v", narrowed.Average)
	}
	// Group average spans all three completed records, 2, 4 and 1.
	if narrowed.GroupAverage == nil || *narrowed.GroupAverage > 2.34 || *narrowed.GroupAverage < 2.33 {
		t.Fatalf("group average = %v", narrowed.GroupAverage)
	}

	rd := f.session(t, "rd@example.com")
	overview, err = f.reporting.Overview(ctx, rd, OverviewFilter{})
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	// The RD sees the RA's two completed records and not the stray
	// account outside the reporting line.
	if overview.Total != 2 {
		t.Fatalf("supervisor total = %d", overview.Total)
	}
	if overview.Average != 3.0 {
		t.Fatalf("average = %v", overview.Average)
	}
	if overview.Trend == nil || *overview.Trend != 2.0 {
		t.Fatalf("trend = %v", overview.Trend)
	}

	ra := f.session(t, "ra@example.com")
	overview, err = f.reporting.Overview(ctx, ra, OverviewFilter{})
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if overview.Total != 2 {
		t.Fatalf("staff total = %d", overview.Total)
	}
}

func TestReportingMergesReviewedAssignments(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "ra@example.com", "Avery", "Reed", "Resident Assistant", false)
	ctx := context.Background()

	response := "My mediation plan."
	responseDate := "2026-03-01T10:00:00Z"
	if err := f.assignments.AppendAll(ctx, []domain.Assignment{{
		ID:           "1_ra@example.com",
		StaffEmail:   "ra@example.com",
		StaffName:    "Avery Reed",
		AssignedRole: "Resident Assistant",
		Topic:        "Roommate Conflict",
		Completed:    true,
		Reviewed:     true,
		Response:     &response,
		ResponseDate: &responseDate,
		AIAnalysis:   "Overall assessment using the rubric: strong.\nOVERALL_SCORE: 4",
	}}); err != nil {
		t.Fatalf("AppendAll: %v", err)
	}

	records, err := f.reporting.CompletedRecords(ctx)
	if err != nil {
		t.Fatalf("CompletedRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d", len(records))
	}
	record := records[0]
	if !record.IsAssigned || record.Difficulty != domain.DifficultyAssigned {
		t.Fatalf("record = %+v", record)
	}
	if record.OverallScore != "4" {
		t.Fatalf("lazy-parsed score = %q", record.OverallScore)
	}
	if record.Timestamp != responseDate {
		t.Fatalf("timestamp = %q", record.Timestamp)
	}
	if record.FirstName != "Avery" || record.LastName != "Reed" {
		t.Fatalf("name = %q %q", record.FirstName, record.LastName)
	}
}

func TestAnalyzeTranscriptBypassesReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	outcome, err := f.analysis.AnalyzeTranscript(ctx, CallAnalysisInput{
		FirstName: "Avery",
		LastName:  "Reed",
		Email:     "ra@example.com",
		Role:      "Resident Assistant",
	}, "Caller: I'm locked out.\nStaff: I can help with that.")
	if err != nil {
		t.Fatalf("AnalyzeTranscript: %v", err)
	}
	if outcome.OverallScore != "3" {
		t.Fatalf("OverallScore = %q", outcome.OverallScore)
	}

	results, _ := f.results.List(ctx)
	if len(results) != 1 {
		t.Fatalf("results = %d", len(results))
	}
	stored := results[0]
	if stored.Status != "" {
		t.Fatalf("call analyses must not enter the review queue, status = %q", stored.Status)
	}
	if stored.Difficulty != domain.DifficultyCallAnalysis {
		t.Fatalf("difficulty = %q", stored.Difficulty)
	}
	if !strings.HasPrefix(stored.Scenario, "Phone Call Transcript (Length: ") {
		t.Fatalf("scenario = %q", stored.Scenario)
	}
}

func TestAnalyzeAudioValidatesFormat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	input := CallAnalysisInput{FirstName: "Avery", LastName: "Reed", Role: "Resident Assistant"}

	_, err := f.analysis.AnalyzeAudio(ctx, input, "call.txt", "text/plain", []byte("x"))
	if errCode(t, err) != apperrors.CodeValidation {
		t.Fatalf("bad format code = %s", errCode(t, err))
	}

	outcome, err := f.analysis.AnalyzeAudio(ctx, input, "call.mp3", "audio/mpeg", []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("AnalyzeAudio: %v", err)
	}
	if outcome.OverallScore != "3" {
		t.Fatalf("OverallScore = %q", outcome.OverallScore)
	}
	if f.gen.lastReq.Attachment == nil || f.gen.lastReq.Attachment.MIMEType != "audio/mpeg" {
		t.Fatalf("attachment = %+v", f.gen.lastReq.Attachment)
	}

	results, _ := f.results.List(ctx)
	if results[0].Scenario != "Phone Call Recording (call.mp3)" {
		t.Fatalf("scenario = %q", results[0].Scenario)
	}
}

func TestClipOnRuneBoundary(t *testing.T) {
	// 400 three-byte runes: byte 1000 lands mid-rune, so the clip
	// must back up to byte 999.
	long := strings.Repeat("你", 400)
	clipped := clipOnRuneBoundary(long, audioResponseLimit)
	if len(clipped) != 999 {
		t.Fatalf("clipped length = %d", len(clipped))
	}
	if !utf8.ValidString(clipped) {
		t.Fatal("clipped preview is not valid UTF-8")
	}

	if got := clipOnRuneBoundary("short", audioResponseLimit); got != "short" {
		t.Fatalf("short input changed: %q", got)
	}
}

func TestUserCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "ra@example.com", "Avery", "Reed", "Resident Assistant", false)

	cases := []struct {
		name  string
		input CreateUserInput
		code  string
	}{
		{"missing fields", CreateUserInput{Email: "x@example.com"}, apperrors.CodeValidation},
		{"bad email", CreateUserInput{Email: "nope", FirstName: "A", Password: "hunter22", Position: "Resident Assistant"}, apperrors.CodeValidation},
		{"short password", CreateUserInput{Email: "x@example.com", FirstName: "A", Password: "abc", Position: "Resident Assistant"}, apperrors.CodeValidation},
		{"unknown position", CreateUserInput{Email: "x@example.com", FirstName: "A", Password: "hunter22", Position: "Wizard"}, apperrors.CodeValidation},
		{"duplicate email different case", CreateUserInput{Email: "RA@example.com", FirstName: "A", Password: "hunter22", Position: "Resident Assistant"}, apperrors.CodeConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.userSvc.Create(ctx, "admin@example.com", tc.input)
			if errCode(t, err) != tc.code {
				t.Fatalf("code = %s, want %s", errCode(t, err), tc.code)
			}
		})
	}
}

func TestCatalogRoleAndEdgeManagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.catalogSvc.CreateRole(ctx, "Office Manager"); err != nil {
		t.Fatalf("CreateRole: %v", err)
	}
	if err := f.catalogSvc.CreateRole(ctx, "Office Manager"); errCode(t, err) != apperrors.CodeConflict {
		t.Fatalf("duplicate role code = %s", errCode(t, err))
	}

	catalog, err := f.catalogSvc.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	role := catalog.StaffRoles["Office Manager"]
	if role.Description != defaultRoleDescription {
		t.Fatalf("description = %q", role.Description)
	}
	if !strings.Contains(role.SystemInstruction, "practice partner for a Office Manager") {
		t.Fatalf("system instruction = %q", role.SystemInstruction)
	}

	// A rejected re-create must not clobber details added since.
	uploaded := "Uploaded job description text"
	if err := f.catalogSvc.UpdateRole(ctx, "Office Manager", UpdateRoleInput{Description: &uploaded}); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if err := f.catalogSvc.CreateRole(ctx, "Office Manager"); errCode(t, err) != apperrors.CodeConflict {
		t.Fatalf("duplicate role code = %s", errCode(t, err))
	}
	catalog, err = f.catalogSvc.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if catalog.StaffRoles["Office Manager"].Description != uploaded {
		t.Fatalf("description after duplicate create = %q", catalog.StaffRoles["Office Manager"].Description)
	}

	if err := f.catalogSvc.AddEdge(ctx, "Office Manager", "Office Manager"); errCode(t, err) != apperrors.CodeValidation {
		t.Fatal("self edge should be rejected")
	}
	if err := f.catalogSvc.AddEdge(ctx, "Office Manager", "Director"); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := f.catalogSvc.AddEdge(ctx, "Office Manager", "Director"); errCode(t, err) != apperrors.CodeConflict {
		t.Fatalf("duplicate edge code = %s", errCode(t, err))
	}

	if err := f.catalogSvc.DeleteRole(ctx, "Office Manager"); err != nil {
		t.Fatalf("DeleteRole: %v", err)
	}
	catalog, _ = f.catalogSvc.Get(ctx)
	for _, edge := range catalog.OrgChart.Edges {
		if edge.Source == "Office Manager" || edge.Target == "Office Manager" {
			t.Fatalf("edge survived role deletion: %+v", edge)
		}
	}
}
