// Package prompt assembles the grounded prompts sent to the model.
// Every prompt that evaluates or generates practice material carries
// the framework document, the operational knowledge base, and the
// current organizational structure.
package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spec-kit/training-service/internal/domain"
)

// Builder renders prompts from the loaded knowledge documents.
type Builder struct {
	knowledge Knowledge
}

// NewBuilder returns a prompt builder.
func NewBuilder(knowledge Knowledge) *Builder {
	return &Builder{knowledge: knowledge}
}

// FormatEdges renders reporting relationships one per line.
func FormatEdges(edges []domain.Edge) string {
	lines := make([]string, 0, len(edges))
	for _, e := range edges {
		lines = append(lines, fmt.Sprintf("- %s reports to %s", e.Source, e.Target))
	}
	return strings.Join(lines, "\n")
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// grounding is the shared preamble: framework, knowledge base, website
// notes, best practices, and the org structure around the role.
func (b *Builder) grounding(verb, role string, roleInfo domain.Role, edges []domain.Edge) string {
	return fmt.Sprintf(`**System Grounding:** You are an expert training assistant for the University of North Dakota Housing & Residence Life, specializing in the Guiding NORTH Framework. %s

---
%s
---

**Operational Knowledge Base (protocols & policies):**
---
%s
---

**UND Housing Website Notes (public info & links):**
---
%s
---

**Best Practices (on-campus housing):**
---
%s
---

**Organizational Structure:**
---
The '%s' reports to: %s

Organizational Chart Reporting Relationships:
%s
---`,
		verb,
		b.knowledge.Framework,
		b.knowledge.KnowledgeBase,
		b.knowledge.Website,
		b.knowledge.BestPractices,
		role,
		orDefault(roleInfo.Supervisor, "Not specified"),
		FormatEdges(edges),
	)
}

const primaryToolVerb = "Your primary tool is the following document:"
const strictAnalysisVerb = "Your analysis MUST be based *strictly* on the following framework document:"

// roleGuidance adds extra scenario-type rotation for residence
// director roles, which cover the widest range of situations.
func roleGuidance(role string) string {
	if !strings.Contains(role, "Resident Director") && !strings.Contains(role, "Apt RD") && !strings.Contains(role, "RD") {
		return ""
	}
	return `

**Role-Specific Scenario Focus:**
As a Resident Director, you handle a wide range of residential life issues. Ensure variety across these common scenario types:
- Student conduct and policy enforcement situations
- Roommate mediation and conflict resolution
- Emergency and safety concerns
- Mental health and wellness referrals
- Community development and staff supervision
- Residential community issues and building management
- Student concerns and complaints
- Staffing and RA coordination challenges

Vary between these types systematically to build comprehensive competency.
`
}

// Scenario builds the practice scenario generation prompt.
func (b *Builder) Scenario(role string, roleInfo domain.Role, edges []domain.Edge, difficulty, lastScenario string, buildingHistory []string) string {
	last := strings.TrimSpace(lastScenario)
	if last == "" {
		last = "None"
	}
	history := "None"
	if len(buildingHistory) > 0 {
		recent := buildingHistory
		if len(recent) > 5 {
			recent = recent[len(recent)-5:]
		}
		history = strings.Join(recent, ", ")
	}

	return fmt.Sprintf(`%s

**Role Description/Job Details:**
---
%s
---
%s
**UND Housing Information (Use to Make Scenarios Realistic):**
---
%s
---

**Task:** Based *only* on the framework document provided, generate a single, detailed, and realistic scenario for a '%s'.

**Critical Requirements:**
1. **Difficulty Level:** %s
2. **Student Name:** Use a diverse, realistic first name that is NOT the same as in the previous scenario. Choose from diverse names like: Alex, Jordan, Casey, Morgan, Avery, Quinn, Jamie, Riley, Taylor, Chris, Sam, Pat, Blake, Drew, Devon, or create another realistic diverse name. Ensure the name changes every time.
3. **UND Housing Realism:**
   - Reference specific UND residence halls (McVey, West, Brannon, Noren, Selke, Smith, Johnstone, University Place, Swanson) or apartments (Berkeley Drive, Carleton Court, Hamline Square, etc.)
   - Include real UND policies (quiet hours, guest limits, alcohol rules, lockout fees, room change procedures, maintenance protocols)
   - Use authentic fee amounts ($10/$25 lockout fees, $75 key recore, $100+ unauthorized move fines, $165 modem fine, $5,100-$6,180 annual hall costs, apartment rates)
   - Reference real resources (Wilkerson Service Center, Housing Self-Service portal, RA on Duty)
   - Make scenarios feel like actual situations at UND Housing & Residence Life
4. **Variety Requirement:** Do NOT repeat the same type of scenario as the previous one. Focus on different residential life issues.
5. **Building/Location Variety:** IMPORTANT - Do NOT repeat the same building as the previous scenario. Vary buildings across all available options:
   - Residence Halls: McVey Hall, West Hall, Brannon Hall, Noren Hall, Selke Hall, Smith Hall, Johnstone Hall, University Place, Swanson Hall
   - Apartments: Berkeley Drive, Carleton Court, Hamline Square, Mt. Vernon/Williamsburg, Swanson Complex, Tulane Court, Virginia Rose, 3904 University Ave
   - Each scenario should use a DIFFERENT building/location from the previous scenario to ensure comprehensive campus coverage
6. **Scenario Type:** Pick from these areas (rotate through them, avoiding the previous type):
   - Roommate mediation and conflict resolution
   - Student conduct violations (noise, guests, quiet hours, alcohol/substance concerns)
   - Mental health concerns and wellness referrals
   - Emergency/safety situations
   - Key and electronic door access issues (lockouts, card access failures, lost keys)
   - Community development and RA team issues
   - Academic or financial concerns affecting housing
   - Bias incidents or community safety concerns
   - Building maintenance or facility issues
   - Housing reassignment or room change requests
   - Policy clarification and resident concerns
   - Staff or student complaints

**Previous Scenario Details (for diversity checking only):**
%s

**Recent Building Locations Used (avoid repeating these):**
%s

**CRITICAL - Building Selection Instructions:**
You MUST select a building/location that has NOT been used in recent scenarios. The scenario MUST mention the specific building name (e.g., "In McVey Hall," "At Berkeley Drive Apartments," etc.). Each new scenario must use a different building to ensure comprehensive coverage of all UND Housing locations.

The scenario should be a full, detailed paragraph that is realistic and something this person would likely encounter in their role at UND Housing. It must be designed to test their proficiency in one or more pillars of the Guiding NORTH framework. Include the student's name, specific details, and contextual information to make it engaging and appropriately challenging for the selected difficulty level.`,
		b.grounding(primaryToolVerb, role, roleInfo, edges),
		orDefault(roleInfo.Description, "Not provided."),
		roleGuidance(role),
		HousingContext,
		role,
		difficulty,
		last,
		history,
	)
}

const rubricFormat = `**Output Format (Strict):**
### Guiding NORTH Evaluation:

OVERALL_SCORE: [Your 1-4 Rating]

**Overall Score:** [Your 1-4 Rating]

---

**N - Navigate Needs:**
- **Rating:** [Your Rating]
- **Justification:** [Your Justification]

**O - Own the Outcome:**
- **Rating:** [Your Rating]
- **Justification:** [Your Justification]

**R - Respond Respectfully:**
- **Rating:** [Your Rating]
- **Justification:** [Your Justification]

**T - Timely & Truthful:**
- **Rating:** [Your Rating]
- **Justification:** [Your Justification]

**H - Help Proactively:**
- **Rating:** [Your Rating]
- **Justification:** [Your Justification]`

const callRubricFormat = `### Guiding NORTH Evaluation:

OVERALL_SCORE: [Your 1-4 Rating]

**Overall Score:** [Your 1-4 Rating]

---

**N - Navigate Needs:**
- **Rating:** [Your Rating]
- **Justification:** [Your Justification]

**O - Own the Outcome:**
- **Rating:** [Your Rating]
- **Justification:** [Your Justification]

**R - Respect & Relationships:**
- **Rating:** [Your Rating]
- **Justification:** [Your Justification]

**T - Trust Through Transparency:**
- **Rating:** [Your Rating]
- **Justification:** [Your Justification]

**H - Hope & Healing:**
- **Rating:** [Your Rating]
- **Justification:** [Your Justification]

---

### Suggestions for Improvement:
[Your Suggestions]

---

### Exemplary Call Example:
[Your Detailed Example]`

// Evaluation builds the rubric evaluation prompt for a submitted
// scenario response.
func (b *Builder) Evaluation(role string, roleInfo domain.Role, edges []domain.Edge, scenario, userResponse string) string {
	return fmt.Sprintf(`%s

**Context for Evaluation:**
- **Role:** %s
- **Job Description/Role Details:** %s
- **Scenario:** %s
- **User's Response:** %s

**Task:** Evaluate the user's response using the 'Evaluation Rubric' from the framework document.
1. Provide an 'Overall Score' from 1 (Needs Improvement) to 4 (Exemplary).
2. For each of the five pillars (N, O, R, T, H), assign a rating (Needs Development, Proficient, or Exemplary) and provide a brief justification for your rating, citing specific examples from the user's response.
3. Conclude with a full, detailed 'Exemplary Response Example' that demonstrates how a top-performing staff member would have handled the interaction from start to finish.

%s

---
**Exemplary Response Example:**
[Provide a full, detailed, and exemplary response to the original scenario here.]`,
		b.grounding(strictAnalysisVerb, role, roleInfo, edges),
		role,
		orDefault(roleInfo.Description, "Not provided."),
		scenario,
		userResponse,
		rubricFormat,
	)
}

// CallAnalysis builds the transcript evaluation prompt.
func (b *Builder) CallAnalysis(role string, roleInfo domain.Role, edges []domain.Edge, firstName, lastName, transcript string) string {
	return fmt.Sprintf(`%s

**Role Description/Job Details:**
---
%s
---

**Context for Evaluation:**
- **Role:** %s
- **Staff Member:** %s %s
- **Call Transcript:** %s

**Task:** Evaluate the staff member's phone call performance using the 'Evaluation Rubric' from the framework document.
1. Provide an 'Overall Score' from 1 (Needs Improvement) to 4 (Exemplary).
2. For each of the five pillars (N, O, R, T, H), assign a rating (Needs Development, Proficient, or Exemplary) and provide a brief justification for your rating, citing specific examples from the call transcript.
3. Provide specific suggestions for improvement where applicable.
4. Conclude with a full, detailed 'Exemplary Call Example' that demonstrates how a top-performing staff member would have handled the call from start to finish.

**Output Format (Strict):**
%s`,
		b.grounding(strictAnalysisVerb, role, roleInfo, edges),
		orDefault(roleInfo.Description, "Not provided."),
		role,
		firstName, lastName,
		transcript,
		callRubricFormat,
	)
}

// AudioAnalysis builds the prompt paired with an uploaded recording:
// the model transcribes first, then evaluates.
func (b *Builder) AudioAnalysis(role string, roleInfo domain.Role, edges []domain.Edge, firstName, lastName string) string {
	return fmt.Sprintf(`%s

**Role Description/Job Details:**
---
%s
---

**Context for Evaluation:**
- **Role:** %s
- **Staff Member:** %s %s
- **Audio:** Please transcribe and analyze the audio recording provided.

**Task:**
1. First, provide a complete transcript of the phone call.
2. Then, evaluate the staff member's phone call performance using the 'Evaluation Rubric' from the framework document.
3. Provide an 'Overall Score' from 1 (Needs Improvement) to 4 (Exemplary).
4. For each of the five pillars (N, O, R, T, H), assign a rating (Needs Development, Proficient, or Exemplary) and provide a brief justification for your rating, citing specific examples from the call.
5. Provide specific suggestions for improvement where applicable.
6. Conclude with a full, detailed 'Exemplary Call Example' that demonstrates how a top-performing staff member would have handled the call from start to finish.

**Output Format (Strict):**
### Call Transcript:
[Full transcript of the call]

---

%s`,
		b.grounding(strictAnalysisVerb, role, roleInfo, edges),
		orDefault(roleInfo.Description, "Not provided."),
		role,
		firstName, lastName,
		callRubricFormat,
	)
}

// AssignmentScenario builds the prompt for supervisor-assigned
// scenarios on a fixed topic and contact type.
func (b *Builder) AssignmentScenario(role, topic, contactType string) string {
	return fmt.Sprintf(`Generate a realistic housing and residence life training scenario for the role: %s.

SCENARIO REQUIREMENTS:
Topic: %s
Contact Type: %s

USE THIS AUTHENTIC UND HOUSING INFORMATION:
%s

The scenario should:
- Be presented as a %s (format the scenario appropriately for this contact method)
- Reference real UND residence halls (McVey, West, Brannon, Noren, Selke, Smith, Johnstone, University Place, Swanson) or apartments (Berkeley Drive, Carleton Court, Hamline Square, etc.)
- Include authentic UND policies on quiet hours, guest limits, alcohol, lockouts, room changes, maintenance procedures
- Use realistic fee amounts ($10/$25 lockout fees, $75 key recore, $100+ unauthorized move fine, $165 modem removal fine)
- Reference actual housing rates or the Wilkerson Service Center
- Include specific times, dates, and building details to make it immersive
- Feature real student scenarios a %s would actually handle
- Require the staff member to apply the Guiding North Framework principles
- Be appropriate for role-playing or discussion
- Be tailored to the responsibilities and perspective of a %s
- Include all relevant context woven into the scenario (no separate context section)
- Use ALL available residence halls and apartments: Vary the location across McVey Hall, West Hall, Brannon Hall, Noren Hall, Selke Hall, Smith Hall, Johnstone Hall, University Place, Swanson Hall, Berkeley Drive, Carleton Court, Hamline Square, Mt. Vernon/Williamsburg, Swanson Complex, Tulane Court, Virginia Rose, and 3904 University Ave

Format:
SCENARIO TITLE: [Realistic, specific title]
SITUATION: [Detailed scenario with all relevant context included - mention specific building, time, fees, policies, student names if applicable]
YOUR TASK: [What the %s should do to handle this situation]

CRITICAL: Do NOT end the scenario with any sentence explaining why it is difficult, complex, or what makes it a %s scenario. Do not include sentences like "This scenario is harder than average because..." or "This scenario tests..." or "This scenario requires...". Present ONLY the scenario and task - nothing more.`,
		role, topic, contactType, HousingContext, contactType, role, role, role, contactType)
}

// AssignmentAnalysis builds the lightweight pillar evaluation run when
// staff submit an assignment response.
func (b *Builder) AssignmentAnalysis(scenario, response string) string {
	return fmt.Sprintf(`Evaluate this response to a housing and residence life training scenario using the Guiding North Framework pillars:

**Scenario:**
%s

**Staff Response:**
%s

**Framework Pillars:**
- N (Navigate): Understand needs and root causes
- O (Own): Take responsibility for resolution
- R (Respond): Communicate professionally and respectfully
- T (Timely): Act within appropriate timeframes
- H (Help): Provide comprehensive support

Please provide:
1. Strengths of the response
2. Areas for improvement
3. Overall assessment using the rubric: Needs Development (1) | Proficient (3) | Exemplary (4)
4. Specific recommendations for growth
5. A single line exactly in this format: OVERALL_SCORE: X (where X is 1-4)

Be constructive and supportive in your evaluation.`,
		orDefault(scenario, "N/A"), response)
}

// Reevaluation builds the strict-format prompt used when an admin
// reruns a stored analysis.
func (b *Builder) Reevaluation(role, scenario, response string) string {
	return fmt.Sprintf(`You are evaluating a staff response using the Guiding NORTH rubric.

Role: %s
Scenario: %s
User Response: %s

Provide the evaluation using the strict format below.

### Guiding NORTH Evaluation:

OVERALL_SCORE: [Your 1-4 Rating]

**Overall Score:** [Your 1-4 Rating]

---

**N - Navigate Needs:**
- **Rating:** [Needs Development | Proficient | Exemplary]
- **Justification:** [Your Justification]

**O - Own the Outcome:**
- **Rating:** [Needs Development | Proficient | Exemplary]
- **Justification:** [Your Justification]

**R - Respond Respectfully:**
- **Rating:** [Needs Development | Proficient | Exemplary]
- **Justification:** [Your Justification]

**T - Timely & Truthful:**
- **Rating:** [Needs Development | Proficient | Exemplary]
- **Justification:** [Your Justification]

**H - Help Proactively:**
- **Rating:** [Needs Development | Proficient | Exemplary]
- **Justification:** [Your Justification]`,
		role, scenario, response)
}

// TonePolish builds the rewrite prompt for the tone polisher.
func (b *Builder) TonePolish(text string) string {
	return fmt.Sprintf(`**Task:** Rewrite the following text to be more relational, strengths-based, and trauma-informed, ensuring it is consistent with the Guiding North Framework. The original meaning should be preserved, but the tone must be improved.

**Original Text:**
"%s"

**Polished Text:**`, text)
}

var metaCommentaryRes = []*regexp.Regexp{
	regexp.MustCompile(`(?is)\n*This scenario is (?:harder|easier|more|less) than average because.*?(\n|$)`),
	regexp.MustCompile(`(?is)\n*This scenario (?:tests|requires|challenges|involves).*?(\n|$)`),
}

// ScrubMetaCommentary strips trailing difficulty explanations the
// model sometimes appends despite instructions.
func ScrubMetaCommentary(scenario string) string {
	for _, re := range metaCommentaryRes {
		scenario = re.ReplaceAllString(scenario, "$1")
	}
	return scenario
}
