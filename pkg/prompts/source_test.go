package prompts

import (
	"errors"
	"fmt"
	"testing"
)

// stubSource — источник с фиксированным содержимым.
type stubSource struct {
	prompts map[string]string
	err     error
}

func (s *stubSource) Load(promptID string) (*PromptFile, error) {
	if s.err != nil {
		return nil, s.err
	}
	tpl, ok := s.prompts[promptID]
	if !ok {
		return nil, fmt.Errorf("stub '%s': %w", promptID, ErrNotFound)
	}
	return &PromptFile{Template: tpl}, nil
}

func TestRegistryFirstSourceWins(t *testing.T) {
	first := &stubSource{prompts: map[string]string{"compose_stock": "from first"}}
	second := &stubSource{prompts: map[string]string{"compose_stock": "from second"}}

	r := NewRegistry(first, second)

	file, err := r.Load("compose_stock")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if file.Template != "from first" {
		t.Errorf("Template = %q, want the higher-priority source", file.Template)
	}
}

func TestRegistryFallsThroughOnNotFound(t *testing.T) {
	first := &stubSource{prompts: map[string]string{}}
	second := &stubSource{prompts: map[string]string{"compose_image": "fallback"}}

	r := NewRegistry(first, second)

	file, err := r.Load("compose_image")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if file.Template != "fallback" {
		t.Errorf("Template = %q, want fallback source content", file.Template)
	}
}

func TestRegistryAbortsOnRealError(t *testing.T) {
	broken := &stubSource{err: errors.New("db locked")}
	fallback := &stubSource{prompts: map[string]string{"compose_stock": "never reached"}}

	r := NewRegistry(broken, fallback)

	if _, err := r.Load("compose_stock"); err == nil {
		t.Fatal("Load() should abort the chain on a non-NotFound error")
	}
}

func TestRegistryNotFoundAnywhere(t *testing.T) {
	r := NewRegistry(&stubSource{prompts: map[string]string{}})

	_, err := r.Load("compose_unknown")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want wrapped ErrNotFound", err)
	}
}
