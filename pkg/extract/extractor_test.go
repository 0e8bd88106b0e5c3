package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/ilkoid/sommelier-ai/pkg/llm"
)

// mockProvider — мок LLM провайдера для детерминированного тестирования.
type mockProvider struct {
	response string
	err      error
	calls    int
}

func (m *mockProvider) Generate(ctx context.Context, messages []llm.Message, tools ...any) (llm.Message, error) {
	m.calls++
	if m.err != nil {
		return llm.Message{}, m.err
	}
	return llm.Message{Role: llm.RoleAssistant, Content: m.response}, nil
}

func TestQuantity(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected int
	}{
		{
			name:     "cases times bottles per case",
			query:    "Add 2 cases of Chateau Margaux (6x75cl) to my cart",
			expected: 12,
		},
		{
			name:     "single case",
			query:    "add 1 case of Sassicaia (12x75cl) to my cart",
			expected: 12,
		},
		{
			name:     "three by three",
			query:    "3 cases of Opus One (3x75cl)",
			expected: 9,
		},
		{
			name:     "spaces inside format",
			query:    "2 cases of Petrus ( 6 x 75 cl )",
			expected: 12,
		},
		{
			name:     "no quantity grammar defaults to one",
			query:    "What does Sassicaia taste like?",
			expected: 1,
		},
		{
			name:     "cases without format defaults to one",
			query:    "Add 2 cases of Margaux to my cart",
			expected: 1,
		},
		{
			name:     "format without cases defaults to one",
			query:    "Margaux (6x75cl)",
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quantity(tt.query)
			if got != tt.expected {
				t.Errorf("Quantity(%q) = %d, want %d", tt.query, got, tt.expected)
			}
		})
	}
}

func TestRuleName(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "strips add cases prefix, format and cart suffix",
			query:    "Add 2 cases of Chateau Margaux (6x75cl) to my cart",
			expected: "Chateau Margaux",
		},
		{
			name:     "plain name untouched",
			query:    "Sassicaia",
			expected: "Sassicaia",
		},
		{
			name:     "trailing cart phrase only",
			query:    "Opus One to my cart",
			expected: "Opus One",
		},
		{
			name:     "question passes through",
			query:    "What does Sassicaia taste like?",
			expected: "What does Sassicaia taste like?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RuleName(tt.query)
			if got != tt.expected {
				t.Errorf("RuleName(%q) = %q, want %q", tt.query, got, tt.expected)
			}
		})
	}
}

func TestExtractModelNameWins(t *testing.T) {
	provider := &mockProvider{response: "Château Margaux"}
	e := New(provider)

	req, err := e.Extract(context.Background(), "Add 2 cases of Chateau Margaux (6x75cl) to my cart")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if req.Name != "Château Margaux" {
		t.Errorf("Name = %q, want model-refined name", req.Name)
	}
	if req.Quantity != 12 {
		t.Errorf("Quantity = %d, want 12 (quantity never comes from the model)", req.Quantity)
	}
}

func TestExtractProviderErrorKeepsRuleName(t *testing.T) {
	provider := &mockProvider{err: errors.New("api down")}
	e := New(provider)

	req, err := e.Extract(context.Background(), "Add 2 cases of Chateau Margaux (6x75cl) to my cart")
	if err != nil {
		t.Fatalf("Extract() should not fail the turn on refinement error, got: %v", err)
	}

	if req.Name != "Chateau Margaux" {
		t.Errorf("Name = %q, want rule-based fallback", req.Name)
	}
	if req.Quantity != 12 {
		t.Errorf("Quantity = %d, want 12", req.Quantity)
	}
}

func TestExtractEmptyModelAnswerKeepsRuleName(t *testing.T) {
	provider := &mockProvider{response: "   "}
	e := New(provider)

	req, err := e.Extract(context.Background(), "Add 1 case of Sassicaia (6x75cl) to my cart")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if req.Name != "Sassicaia" {
		t.Errorf("Name = %q, want rule-based name when model answer is empty", req.Name)
	}
}

func TestExtractStripsCodeFenceFromModelAnswer(t *testing.T) {
	provider := &mockProvider{response: "```\nSassicaia\n```"}
	e := New(provider)

	req, err := e.Extract(context.Background(), "Show me Sassicaia")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if req.Name != "Sassicaia" {
		t.Errorf("Name = %q, want fence-cleaned name", req.Name)
	}
}
