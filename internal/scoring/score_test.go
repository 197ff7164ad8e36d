package scoring

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{
			"explicit machine line",
			"### Guiding NORTH Evaluation:\n\nOVERALL_SCORE: 3\n\n**Overall Score:** 3\n",
			"3", true,
		},
		{
			"bold summary line with digit",
			"**Overall Score:** 2\n\n**N - Navigate Needs:**\n",
			"2", true,
		},
		{
			"summary line with rating word",
			"**Overall Score:** Proficient\n",
			"3", true,
		},
		{
			"overall assessment wording",
			"Overall Assessment: 4 out of 4\n",
			"4", true,
		},
		{
			"instruction echo skipped",
			"5. Provide an overall score between 1 and 4.\n",
			"", false,
		},
		{
			"rubric echo falls through to rating words",
			"3. Overall assessment using the rubric: Needs Development (1) | Proficient (3) | Exemplary (4)\n",
			"1", true,
		},
		{
			"windowed rating word",
			"The response was, overall, at an Exemplary level for this role.",
			"4", true,
		},
		{
			"no signal",
			"The response handled the resident's concern politely.",
			"", false,
		},
		{
			"empty text",
			"",
			"", false,
		},
		{
			"needs development word",
			"**Overall Rating:** Needs Development\n",
			"1", true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.text)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("Parse = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestExtractLine(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain line", "Overall Score: 3\nDetails follow.", "3"},
		{"bold markers kept verbatim", "**Overall Score:** 3", "** 3"},
		{"value after second colon dropped", "Overall Score: 2: strong work", "2"},
		{"no score line", "Great effort throughout.", NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractLine(tt.text); got != tt.want {
				t.Fatalf("ExtractLine = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	valid := []string{"1", "2", "3", "4", " 3 "}
	for _, v := range valid {
		if !IsValid(v) {
			t.Errorf("IsValid(%q) = false, want true", v)
		}
	}
	invalid := []string{"", "0", "5", "Not Found", "Parse Error", "** 3", "3.5", "-1"}
	for _, v := range invalid {
		if IsValid(v) {
			t.Errorf("IsValid(%q) = true, want false", v)
		}
	}
}

func TestNumeric(t *testing.T) {
	tests := []struct {
		value string
		want  int
		ok    bool
	}{
		{"3", 3, true},
		{"** 3", 3, true},
		{"score of 2 overall", 2, true},
		{"Not Found", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := Numeric(tt.value)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Numeric(%q) = (%d, %v), want (%d, %v)", tt.value, got, ok, tt.want, tt.ok)
		}
	}
}
