package processing

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/thivian17/lecturelink/internal/domain"
)

var (
	conceptNameKeys        = []string{"name", "concept", "term", "title"}
	conceptExplanationKeys = []string{"explanation", "description", "definition"}
	conceptSlideRefKeys    = []string{"slide_references", "slide_refs", "slides"}
	definitionTermKeys     = []string{"term", "name", "concept", "word"}
	definitionTextKeys     = []string{"definition", "explanation", "description", "meaning"}
	listItemKeys           = []string{"text", "point", "question", "takeaway", "content"}
)

// NormalizeSummary decodes a summary response whose concept and definition
// entries may use alternate key names, producing the canonical shape.
func NormalizeSummary(raw []byte) (domain.Summary, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Summary{}, fmt.Errorf("decode summary: %w", err)
	}

	// Some deployments wrap the payload in {"summary": {...}}.
	if inner, ok := doc["summary"].(map[string]interface{}); ok {
		doc = inner
	}

	return domain.Summary{
		Title:              stringField(doc, "title"),
		KeyConcepts:        normalizeConcepts(doc["key_concepts"]),
		Definitions:        normalizeDefinitions(doc["definitions"]),
		MainTakeaways:      normalizeStringList(doc["main_takeaways"]),
		StudyQuestions:     normalizeStringList(doc["study_questions"]),
		Difficulty:         stringField(doc, "difficulty"),
		EstimatedStudyTime: stringField(doc, "estimated_study_time"),
	}, nil
}

func normalizeConcepts(v interface{}) []domain.Concept {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}

	concepts := make([]domain.Concept, 0, len(items))
	for _, item := range items {
		switch c := item.(type) {
		case string:
			if c = strings.TrimSpace(c); c != "" {
				concepts = append(concepts, domain.Concept{Name: c})
			}
		case map[string]interface{}:
			concept := domain.Concept{
				Name:            firstString(c, conceptNameKeys),
				Explanation:     firstString(c, conceptExplanationKeys),
				Importance:      stringField(c, "importance"),
				SlideReferences: firstIntList(c, conceptSlideRefKeys),
				Examples:        normalizeStringList(c["examples"]),
			}
			if concept.Name == "" && concept.Explanation == "" {
				continue
			}
			concepts = append(concepts, concept)
		}
	}
	return concepts
}

func normalizeDefinitions(v interface{}) []domain.Definition {
	switch defs := v.(type) {
	case []interface{}:
		out := make([]domain.Definition, 0, len(defs))
		for _, item := range defs {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			d := domain.Definition{
				Term:       firstString(m, definitionTermKeys),
				Definition: firstString(m, definitionTextKeys),
			}
			if d.Term == "" {
				continue
			}
			out = append(out, d)
		}
		return out
	case map[string]interface{}:
		terms := make([]string, 0, len(defs))
		for term := range defs {
			terms = append(terms, term)
		}
		sort.Strings(terms)

		out := make([]domain.Definition, 0, len(terms))
		for _, term := range terms {
			out = append(out, domain.Definition{
				Term:       term,
				Definition: scalarString(defs[term]),
			})
		}
		return out
	}
	return nil
}

func normalizeStringList(v interface{}) []string {
	switch list := v.(type) {
	case string:
		if s := strings.TrimSpace(list); s != "" {
			return []string{s}
		}
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			var s string
			if m, ok := item.(map[string]interface{}); ok {
				s = firstString(m, listItemKeys)
			} else {
				s = scalarString(item)
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func firstString(m map[string]interface{}, keys []string) string {
	for _, k := range keys {
		if s := stringField(m, k); s != "" {
			return s
		}
	}
	return ""
}

func stringField(m map[string]interface{}, key string) string {
	return strings.TrimSpace(scalarString(m[key]))
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func firstIntList(m map[string]interface{}, keys []string) []int {
	for _, k := range keys {
		if refs := intList(m[k]); len(refs) > 0 {
			return refs
		}
	}
	return nil
}

func intList(v interface{}) []int {
	var items []interface{}
	switch t := v.(type) {
	case []interface{}:
		items = t
	case float64, string:
		items = []interface{}{t}
	default:
		return nil
	}

	out := make([]int, 0, len(items))
	for _, item := range items {
		switch n := item.(type) {
		case float64:
			out = append(out, int(n))
		case string:
			if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
				out = append(out, i)
			}
		}
	}
	return out
}
