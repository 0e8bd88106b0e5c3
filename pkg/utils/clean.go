// Package utils предоставляет вспомогательные функции для обработки данных.
//
// Включает утилиты для очистки ответов LLM от markdown-обёртки
// и нормализации текста перед отображением пользователю.
package utils

import (
	"strings"
)

// CleanCodeFence удаляет markdown-обёртку вокруг ответа модели.
//
// LLM часто возвращает короткие ответы обёрнутыми в кодовые блоки:
//
//	```
//	add_to_cart
//	```
//
// Эта функция очищает такие обёртки, возвращая чистый текст.
func CleanCodeFence(s string) string {
	s = strings.TrimSpace(s)

	// Удаляем ```<lang> в начале
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Язык указывается до первого перевода строки
		if idx := strings.Index(s, "\n"); idx != -1 && !strings.ContainsAny(s[:idx], " \t{") {
			s = s[idx+1:]
		}
	}

	// Удаляем ``` в конце
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	// Одиночные backticks вокруг короткого ответа
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "`") && strings.HasSuffix(s, "`") && len(s) >= 2 {
		s = s[1 : len(s)-1]
	}

	return strings.TrimSpace(s)
}

// SanitizeLLMOutput выполняет финальную очистку вывода LLM перед показом.
//
// Шаги:
//  1. Обрезает пробелы в начале/конце строк
//  2. Схлопывает повторяющиеся пустые строки в одну
//  3. Нормализует переносы строк
func SanitizeLLMOutput(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")

	var result []string
	prevEmpty := false
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			if prevEmpty {
				continue
			}
			prevEmpty = true
			result = append(result, "")
			continue
		}
		prevEmpty = false
		result = append(result, trimmed)
	}

	return strings.TrimSpace(strings.Join(result, "\n"))
}

// NormalizeLabel приводит ответ классификатора к каноничному виду метки.
//
// Удаляет markdown, кавычки, финальную пунктуацию и приводит к нижнему регистру.
// Не проверяет членство в наборе меток — это задача вызывающего.
func NormalizeLabel(s string) string {
	s = CleanCodeFence(s)
	s = strings.Trim(s, "\"'.! \t\n")
	return strings.ToLower(strings.TrimSpace(s))
}
