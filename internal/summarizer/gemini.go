package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/thivian17/lecturelink/internal/domain"
	"github.com/thivian17/lecturelink/internal/processing"
)

const summaryPrompt = `You are a teaching assistant. Read the lecture material below and produce a study summary.

Respond with JSON only, using exactly these keys:
{
  "title": string,
  "key_concepts": [{"name": string, "explanation": string, "importance": string, "slide_references": [int], "examples": [string]}],
  "definitions": [{"term": string, "definition": string}],
  "main_takeaways": [string],
  "study_questions": [string],
  "difficulty": "beginner" | "intermediate" | "advanced",
  "estimated_study_time": string
}

Keep technical terms in their original language. Use slide numbers only when the material marks slides.

Lecture title: %s

Lecture material:
---
%s
---`

var ErrNoKeys = errors.New("no Gemini API keys configured")

// GenerateSummary asks Gemini for a JSON summary and normalizes it into the
// canonical shape. Keys are rotated on rate limit errors.
func (s *implSummarizer) GenerateSummary(ctx context.Context, documentText, title string) (domain.Summary, error) {
	if len(s.apiKeys) == 0 {
		return domain.Summary{}, ErrNoKeys
	}

	if title == "" {
		title = "Untitled lecture"
	}
	prompt := fmt.Sprintf(summaryPrompt, title, documentText)

	attempts := len(s.apiKeys)
	var lastErr error

	for range attempts {
		idx, key := s.key()

		text, err := s.generate(ctx, key, prompt)
		if err != nil {
			if isRateLimited(err) {
				s.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
				s.rotateKey(idx)
				lastErr = err
				continue
			}
			return domain.Summary{}, fmt.Errorf("generate content: %w", err)
		}

		summary, err := processing.NormalizeSummary([]byte(stripCodeFence(text)))
		if err != nil {
			return domain.Summary{}, fmt.Errorf("parse gemini summary: %w", err)
		}
		if summary.Title == "" {
			summary.Title = title
		}
		return summary, nil
	}

	return domain.Summary{}, fmt.Errorf("all API keys exhausted: %w", lastErr)
}

// callGemini sends the prompt and returns the concatenated text parts.
func (s *implSummarizer) callGemini(ctx context.Context, apiKey, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", err
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text strings.Builder
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				text.WriteString(part.Text)
			}
		}
		if text.Len() > 0 {
			return text.String(), nil
		}
	}

	return "", fmt.Errorf("empty response from Gemini")
}

func (s *implSummarizer) key() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentKey, s.apiKeys[s.currentKey]
}

// rotateKey advances past idx unless another caller already did.
func (s *implSummarizer) rotateKey(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentKey == idx {
		s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	}
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// stripCodeFence removes a ```json fence some models wrap around JSON.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
