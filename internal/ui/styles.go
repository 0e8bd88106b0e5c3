// Красота

package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Цвета
	primaryColor   = lipgloss.Color("62")  // Фиолетовый
	secondaryColor = lipgloss.Color("205") // Розовый
	grayColor      = lipgloss.Color("240")

	// HeaderStyle — строка статуса вверху экрана.
	HeaderStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(primaryColor).
		Padding(0, 1).
		Bold(true)

	// GrayStyle — разделители и вспомогательный текст.
	GrayStyle = lipgloss.NewStyle().
		Foreground(grayColor)

	// Стили для сообщений в логе
	UserMsgStyle = lipgloss.NewStyle().
		Foreground(secondaryColor).
		Bold(true).
		Render

	SystemMsgStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#04B575")). // Зеленый
		Render

	ErrorMsgStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF0000")).
		Bold(true).
		Render
)
