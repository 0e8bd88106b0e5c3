package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/ilkoid/sommelier-ai/pkg/llm"
)

// mockProvider — мок LLM провайдера с фиксированным ответом.
type mockProvider struct {
	response string
	err      error
}

func (m *mockProvider) Generate(ctx context.Context, messages []llm.Message, tools ...any) (llm.Message, error) {
	if m.err != nil {
		return llm.Message{}, m.err
	}
	return llm.Message{Role: llm.RoleAssistant, Content: m.response}, nil
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		response       string
		wantLabel      Label
		wantRecognized bool
	}{
		{
			name:           "exact label",
			response:       "add_to_cart",
			wantLabel:      AddToCart,
			wantRecognized: true,
		},
		{
			name:           "uppercase is normalized",
			response:       "STOCK",
			wantLabel:      Stock,
			wantRecognized: true,
		},
		{
			name:           "markdown-wrapped label",
			response:       "```\nshow_cart\n```",
			wantLabel:      ShowCart,
			wantRecognized: true,
		},
		{
			name:           "quoted label with period",
			response:       `"description".`,
			wantLabel:      Description,
			wantRecognized: true,
		},
		{
			name:           "noise falls back to general",
			response:       "I think the user wants to buy wine",
			wantLabel:      General,
			wantRecognized: false,
		},
		{
			name:           "empty answer falls back to general",
			response:       "",
			wantLabel:      General,
			wantRecognized: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&mockProvider{response: tt.response})

			result, err := c.Classify(context.Background(), "some query")
			if err != nil {
				t.Fatalf("Classify() error: %v", err)
			}
			if result.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", result.Label, tt.wantLabel)
			}
			if result.Recognized != tt.wantRecognized {
				t.Errorf("Recognized = %v, want %v", result.Recognized, tt.wantRecognized)
			}
		})
	}
}

func TestClassifyProviderErrorFailsOpen(t *testing.T) {
	c := New(&mockProvider{err: errors.New("api down")})

	result, err := c.Classify(context.Background(), "add Margaux to my cart")
	if err == nil {
		t.Fatal("Classify() should surface the provider error")
	}
	if result.Label != General {
		t.Errorf("Label = %q, want general fallback on provider error", result.Label)
	}
	if result.Recognized {
		t.Error("Recognized should be false on provider error")
	}
}
