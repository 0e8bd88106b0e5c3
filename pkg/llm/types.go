// Базовые типы — универсальный язык общения с моделями.
package llm

// Message — одно сообщение в истории диалога.
type Message struct {
	Role    string // "system", "user", "assistant", "tool"
	Content string // Текстовое содержимое

	// Images — опциональные ссылки на изображения (http или base64 data-uri).
	// Заполняется только для vision запросов.
	Images []string

	// ToolCalls — вызовы инструментов, если модель решила их сделать.
	ToolCalls []ToolCall

	// ToolCallID — для Role == "tool": ID вызова, на который это сообщение отвечает.
	ToolCallID string
}

// ToolCall — запрос модели на вызов инструмента (Function Calling).
type ToolCall struct {
	ID   string
	Name string
	Args string // Сырой JSON с аргументами
}

// Константы ролей
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)
