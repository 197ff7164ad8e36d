package prompt

import (
	"strings"
	"testing"

	"github.com/spec-kit/training-service/internal/domain"
)

func testBuilder() *Builder {
	return NewBuilder(Knowledge{
		Framework:     "FRAMEWORK TEXT",
		KnowledgeBase: "KB TEXT",
		Website:       "WEBSITE TEXT",
		BestPractices: "PRACTICES TEXT",
	})
}

func TestFormatEdges(t *testing.T) {
	edges := []domain.Edge{
		{Source: "Resident Assistant", Target: "Resident Director"},
		{Source: "Resident Director", Target: "Assistant Director"},
	}
	got := FormatEdges(edges)
	want := "- Resident Assistant reports to Resident Director\n- Resident Director reports to Assistant Director"
	if got != want {
		t.Fatalf("FormatEdges = %q, want %q", got, want)
	}
}

func TestScenarioPromptContents(t *testing.T) {
	b := testBuilder()
	role := domain.Role{Description: "Front-line community builder.", Supervisor: "Resident Director"}
	got := b.Scenario("Resident Assistant", role, nil, domain.DifficultyHarder, "", nil)

	for _, fragment := range []string{
		"FRAMEWORK TEXT",
		"KB TEXT",
		"WEBSITE TEXT",
		"PRACTICES TEXT",
		"The 'Resident Assistant' reports to: Resident Director",
		"**Difficulty Level:** Harder than average",
		"Front-line community builder.",
		"Wilkerson Service Center",
	} {
		if !strings.Contains(got, fragment) {
			t.Errorf("scenario prompt missing %q", fragment)
		}
	}

	if !strings.Contains(got, "**Previous Scenario Details (for diversity checking only):**\nNone") {
		t.Error("empty last scenario should render as None")
	}
	if !strings.Contains(got, "**Recent Building Locations Used (avoid repeating these):**\nNone") {
		t.Error("empty building history should render as None")
	}
}

func TestScenarioPromptBuildingHistoryClipped(t *testing.T) {
	b := testBuilder()
	history := []string{"McVey Hall", "West Hall", "Brannon Hall", "Noren Hall", "Selke Hall", "Smith Hall"}
	got := b.Scenario("Resident Assistant", domain.Role{}, nil, domain.DifficultyAverage, "prior", history)

	if strings.Contains(got, "McVey Hall, West Hall") {
		t.Error("history should keep only the five most recent buildings")
	}
	if !strings.Contains(got, "West Hall, Brannon Hall, Noren Hall, Selke Hall, Smith Hall") {
		t.Error("recent buildings missing from prompt")
	}
}

func TestScenarioRoleGuidance(t *testing.T) {
	b := testBuilder()
	withGuidance := b.Scenario("Resident Director", domain.Role{}, nil, domain.DifficultyAverage, "", nil)
	if !strings.Contains(withGuidance, "Role-Specific Scenario Focus") {
		t.Error("director roles should carry the scenario-type rotation guidance")
	}

	without := b.Scenario("Office Manager", domain.Role{}, nil, domain.DifficultyAverage, "", nil)
	if strings.Contains(without, "Role-Specific Scenario Focus") {
		t.Error("non-director roles should not carry the guidance")
	}
}

func TestEvaluationPromptStrictFormat(t *testing.T) {
	b := testBuilder()
	got := b.Evaluation("Resident Assistant", domain.Role{}, nil, "the scenario", "my answer")

	for _, fragment := range []string{
		"OVERALL_SCORE: [Your 1-4 Rating]",
		"**Overall Score:** [Your 1-4 Rating]",
		"**N - Navigate Needs:**",
		"**H - Help Proactively:**",
		"**Exemplary Response Example:**",
		"- **User's Response:** my answer",
	} {
		if !strings.Contains(got, fragment) {
			t.Errorf("evaluation prompt missing %q", fragment)
		}
	}
}

func TestAssignmentAnalysisPrompt(t *testing.T) {
	b := testBuilder()
	got := b.AssignmentAnalysis("scenario text", "response text")

	if !strings.Contains(got, "OVERALL_SCORE: X (where X is 1-4)") {
		t.Error("analysis prompt missing explicit score line instruction")
	}
	if !strings.Contains(got, "Needs Development (1) | Proficient (3) | Exemplary (4)") {
		t.Error("analysis prompt missing rubric scale")
	}
}

func TestScrubMetaCommentary(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"difficulty explanation removed",
			"SCENARIO TITLE: Lockout\nSITUATION: ...\n\nThis scenario is harder than average because it involves an upset parent.",
			"SCENARIO TITLE: Lockout\nSITUATION: ...",
		},
		{
			"tests sentence removed",
			"YOUR TASK: respond.\nThis scenario tests de-escalation skills.",
			"YOUR TASK: respond.",
		},
		{
			"clean text unchanged",
			"SITUATION: A resident in West Hall is locked out.",
			"SITUATION: A resident in West Hall is locked out.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScrubMetaCommentary(tt.in); got != tt.want {
				t.Fatalf("ScrubMetaCommentary = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractBuilding(t *testing.T) {
	tests := []struct {
		scenario string
		want     string
	}{
		{"A resident in McVey Hall reports a noise complaint.", "McVey Hall"},
		{"At Berkeley Drive Apartments a lease question comes in.", "Berkeley Drive"},
		{"A general policy question with no location.", ""},
	}

	for _, tt := range tests {
		if got := ExtractBuilding(tt.scenario); got != tt.want {
			t.Errorf("ExtractBuilding(%q) = %q, want %q", tt.scenario, got, tt.want)
		}
	}
}
