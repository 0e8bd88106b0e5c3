package prompts

import (
	"errors"
	"fmt"
)

// Source — интерфейс для загрузки промптов из различных источников.
//
// Реализации: DefaultSource (встроенные), FileSource (YAML файлы),
// DatabaseSource (sqlite). Новый источник добавляется без изменения
// существующего кода.
type Source interface {
	// Load загружает промпт по идентификатору.
	// Возвращает ErrNotFound (обёрнутую), если источник не содержит промпт.
	Load(promptID string) (*PromptFile, error)
}

// Registry — цепочка источников с приоритетом.
//
// Источники опрашиваются в порядке добавления; первый успешный ответ
// выигрывает. Типовая цепочка: database → file → default.
type Registry struct {
	sources []Source
}

// NewRegistry создает реестр из источников в порядке убывания приоритета.
func NewRegistry(sources ...Source) *Registry {
	return &Registry{sources: sources}
}

// Load опрашивает источники по приоритету.
//
// ErrNotFound от источника означает "спроси следующего"; любая другая
// ошибка прерывает цепочку.
func (r *Registry) Load(promptID string) (*PromptFile, error) {
	for _, src := range r.sources {
		file, err := src.Load(promptID)
		if err == nil {
			return file, nil
		}
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return nil, fmt.Errorf("prompt source failed for '%s': %w", promptID, err)
	}

	return nil, fmt.Errorf("prompt '%s': %w", promptID, ErrNotFound)
}
