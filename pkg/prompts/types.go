package prompts

import "fmt"

// PromptFile — содержимое загруженного промпта.
//
// Используется всеми реализациями Source интерфейса.
type PromptFile struct {
	// System — системный промпт (опционально)
	System string `yaml:"system"`

	// Template — шаблон промпта с плейсхолдерами {{query}} и {{data}}
	Template string `yaml:"template"`

	// Variables — переменные для подстановки
	Variables map[string]string `yaml:"variables"`

	// Metadata — метаданные промпта
	Metadata map[string]any `yaml:"metadata"`
}

// ErrNotFound возвращается когда источник не содержит промпт.
var ErrNotFound = fmt.Errorf("prompt not found in source")
