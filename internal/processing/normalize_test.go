package processing

import "testing"

func TestNormalizeSummaryConceptKeys(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantName string
		wantExpl string
		wantRefs []int
	}{
		{
			name:     "canonical keys",
			raw:      `{"key_concepts":[{"name":"Gradient","explanation":"slope","slide_references":[1,2]}]}`,
			wantName: "Gradient", wantExpl: "slope", wantRefs: []int{1, 2},
		},
		{
			name:     "concept and description",
			raw:      `{"key_concepts":[{"concept":"Gradient","description":"slope","slide_refs":["4"]}]}`,
			wantName: "Gradient", wantExpl: "slope", wantRefs: []int{4},
		},
		{
			name:     "term and definition",
			raw:      `{"key_concepts":[{"term":"Gradient","definition":"slope","slides":7}]}`,
			wantName: "Gradient", wantExpl: "slope", wantRefs: []int{7},
		},
		{
			name:     "title only",
			raw:      `{"key_concepts":[{"title":"Gradient"}]}`,
			wantName: "Gradient",
		},
		{
			name:     "bare string",
			raw:      `{"key_concepts":["Gradient"]}`,
			wantName: "Gradient",
		},
		{
			name:     "wrapped payload",
			raw:      `{"summary":{"key_concepts":[{"name":"Gradient","explanation":"slope"}]}}`,
			wantName: "Gradient", wantExpl: "slope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NormalizeSummary([]byte(tt.raw))
			if err != nil {
				t.Fatalf("NormalizeSummary() error = %v", err)
			}
			if len(s.KeyConcepts) != 1 {
				t.Fatalf("KeyConcepts = %+v, want 1", s.KeyConcepts)
			}
			c := s.KeyConcepts[0]
			if c.Name != tt.wantName || c.Explanation != tt.wantExpl {
				t.Errorf("concept = %+v", c)
			}
			if len(c.SlideReferences) != len(tt.wantRefs) {
				t.Fatalf("SlideReferences = %v, want %v", c.SlideReferences, tt.wantRefs)
			}
			for i := range tt.wantRefs {
				if c.SlideReferences[i] != tt.wantRefs[i] {
					t.Errorf("SlideReferences = %v, want %v", c.SlideReferences, tt.wantRefs)
				}
			}
		})
	}
}

func TestNormalizeSummaryDefinitions(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		terms []string
	}{
		{"list", `{"definitions":[{"term":"Heat","definition":"energy"},{"name":"Work","meaning":"force"}]}`, []string{"Heat", "Work"}},
		{"map sorted", `{"definitions":{"Work":"force","Heat":"energy"}}`, []string{"Heat", "Work"}},
		{"skips entries without term", `{"definitions":[{"definition":"orphan"}]}`, nil},
		{"missing", `{}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NormalizeSummary([]byte(tt.raw))
			if err != nil {
				t.Fatalf("NormalizeSummary() error = %v", err)
			}
			if len(s.Definitions) != len(tt.terms) {
				t.Fatalf("Definitions = %+v, want terms %v", s.Definitions, tt.terms)
			}
			for i, term := range tt.terms {
				if s.Definitions[i].Term != term || s.Definitions[i].Definition == "" {
					t.Errorf("Definitions[%d] = %+v, want term %s", i, s.Definitions[i], term)
				}
			}
		})
	}
}

func TestNormalizeSummaryLists(t *testing.T) {
	raw := `{
		"title": "Thermo",
		"main_takeaways": ["Energy is conserved", {"point": "Entropy grows"}, ""],
		"study_questions": "Define entropy.",
		"difficulty": "intermediate",
		"estimated_study_time": 45
	}`

	s, err := NormalizeSummary([]byte(raw))
	if err != nil {
		t.Fatalf("NormalizeSummary() error = %v", err)
	}
	if s.Title != "Thermo" || s.Difficulty != "intermediate" || s.EstimatedStudyTime != "45" {
		t.Errorf("summary = %+v", s)
	}
	if len(s.MainTakeaways) != 2 || s.MainTakeaways[1] != "Entropy grows" {
		t.Errorf("MainTakeaways = %v", s.MainTakeaways)
	}
	if len(s.StudyQuestions) != 1 {
		t.Errorf("StudyQuestions = %v", s.StudyQuestions)
	}
}

func TestNormalizeSummaryInvalid(t *testing.T) {
	if _, err := NormalizeSummary([]byte(`not json`)); err == nil {
		t.Error("NormalizeSummary() should fail on invalid JSON")
	}
}
