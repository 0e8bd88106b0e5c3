// Реестр для хранения и поиска инструментов.
package tools

import (
	"fmt"
	"sync"
)

// Registry — потокобезопасное хранилище инструментов.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string // Порядок регистрации для стабильных definitions
}

// NewRegistry создает новый пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// validateToolDefinition проверяет что ToolDefinition соответствует JSON Schema.
//
// Валидирует:
//   - Name не пустой
//   - Parameters является JSON объектом с type == "object"
//   - Parameters.required (если есть) является массивом строк
func validateToolDefinition(def ToolDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	if def.Parameters == nil {
		return fmt.Errorf("tool '%s': parameters cannot be nil", def.Name)
	}

	typeVal, ok := def.Parameters["type"]
	if !ok {
		return fmt.Errorf("tool '%s': parameters must have 'type' field", def.Name)
	}

	typeStr, ok := typeVal.(string)
	if !ok {
		return fmt.Errorf("tool '%s': parameters.type must be a string, got: %T", def.Name, typeVal)
	}

	if typeStr != "object" {
		return fmt.Errorf("tool '%s': parameters.type must be 'object', got: '%s'", def.Name, typeStr)
	}

	if requiredVal, exists := def.Parameters["required"]; exists {
		switch required := requiredVal.(type) {
		case []string:
			// Уже массив строк
		case []interface{}:
			for i, item := range required {
				if _, ok := item.(string); !ok {
					return fmt.Errorf("tool '%s': parameters.required[%d] must be a string, got: %T", def.Name, i, item)
				}
			}
		default:
			return fmt.Errorf("tool '%s': parameters.required must be an array", def.Name)
		}
	}

	return nil
}

// Register добавляет инструмент в реестр с валидацией схемы.
//
// Возвращает ошибку если определение инструмента не валидно.
func (r *Registry) Register(tool Tool) error {
	def := tool.Definition()

	if err := validateToolDefinition(def); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.tools[def.Name] = tool
	return nil
}

// Get ищет инструмент по имени.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("tool '%s' not found", name)
	}
	return tool, nil
}

// GetDefinitions возвращает список всех определений для отправки в LLM.
//
// Порядок стабилен и совпадает с порядком регистрации.
func (r *Registry) GetDefinitions() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ToolDefinition, 0, len(r.tools))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}
