/*
Sommelier - разговорный ассистент винного маркетплейса Cru
TUI интерфейс на Bubble Tea
*/

package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wrap"

	"github.com/ilkoid/sommelier-ai/internal/agent"
	"github.com/ilkoid/sommelier-ai/internal/ui"
	"github.com/ilkoid/sommelier-ai/pkg/archive"
	"github.com/ilkoid/sommelier-ai/pkg/cart"
	"github.com/ilkoid/sommelier-ai/pkg/catalog"
	"github.com/ilkoid/sommelier-ai/pkg/compose"
	"github.com/ilkoid/sommelier-ai/pkg/config"
	"github.com/ilkoid/sommelier-ai/pkg/extract"
	"github.com/ilkoid/sommelier-ai/pkg/factory"
	"github.com/ilkoid/sommelier-ai/pkg/intent"
	"github.com/ilkoid/sommelier-ai/pkg/pipeline"
	"github.com/ilkoid/sommelier-ai/pkg/prompts"
	"github.com/ilkoid/sommelier-ai/pkg/prompts/sources"
	"github.com/ilkoid/sommelier-ai/pkg/utils"
)

// turnTimeout ограничивает один ход целиком (LLM + каталог).
const turnTimeout = 2 * time.Minute

// teaMsg типы для коммуникации
type replyMsg struct{ reply *agent.Reply }
type errorMsg struct{ err error }

// chatModel - TUI модель чата
type chatModel struct {
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	agent     *agent.Agent
	modelName string
	logLines  []string // Исходные строки без переноса — основа reflow при resize
	loading   bool
	ready     bool
}

func initialModel(a *agent.Agent, modelName string) tea.Model {
	ta := textarea.New()
	ta.Placeholder = "Спросите про вино или добавьте его в корзину..."
	ta.Focus()
	ta.Prompt = "┃ "
	ta.SetHeight(3)
	ta.CharLimit = 1000
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false) // Enter отправляет, не переносит строку

	vp := viewport.New(0, 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := chatModel{
		agent:     a,
		modelName: modelName,
		textarea:  ta,
		viewport:  vp,
		spinner:   sp,
	}
	m.logLines = []string{
		ui.SystemMsgStyle("🍷 Sommelier"),
		"Модель: " + modelName,
		ui.SystemMsgStyle("Напишите запрос и нажмите Enter"),
		ui.SystemMsgStyle("exit/quit, Ctrl+C или Esc для выхода"),
	}
	return m
}

func (m chatModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 1
		footerHeight := m.textarea.Height() + 2

		vpHeight := msg.Height - headerHeight - footerHeight
		if vpHeight < 1 {
			vpHeight = 1
		}

		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
		m.textarea.SetWidth(msg.Width)
		m.ready = true
		m.reflow()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			m.textarea.Reset()

			// Текстовые команды выхода, как в CLI-прототипе
			lower := strings.ToLower(input)
			if lower == "exit" || lower == "quit" {
				return m, tea.Quit
			}

			m.appendLog(ui.UserMsgStyle("Вы: ") + input)

			m.loading = true
			return m, tea.Batch(
				m.spinner.Tick,
				makeTurnCmd(m.agent, input),
			)

		case tea.KeyCtrlU:
			m.textarea.Reset()
			return m, nil
		}

	case replyMsg:
		m.loading = false
		m.appendLog(ui.SystemMsgStyle("Sommelier: ") + msg.reply.Text)
		if msg.reply.ImagePath != "" {
			m.appendLog(ui.SystemMsgStyle("🏷  Превью этикетки: ") + msg.reply.ImagePath)
		}

	case errorMsg:
		m.loading = false
		m.appendLog(ui.ErrorMsgStyle("❌ Ошибка: ") + msg.err.Error())
	}

	if m.loading {
		m.spinner, spCmd = m.spinner.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, spCmd)
	}

	return m, tea.Batch(tiCmd, vpCmd)
}

// appendLog добавляет строку в лог и перерисовывает контент.
func (m *chatModel) appendLog(str string) {
	m.logLines = append(m.logLines, str)
	m.reflow()
	m.viewport.GotoBottom()
}

// reflow перекладывает исходные строки под текущую ширину вьюпорта.
func (m *chatModel) reflow() {
	width := m.viewport.Width
	if width < 20 {
		width = 20
	}

	var wrapped []string
	for _, line := range m.logLines {
		wrapped = append(wrapped, strings.Split(wrap.String(line, width), "\n")...)
	}
	m.viewport.SetContent(strings.Join(wrapped, "\n"))
}

func (m chatModel) View() string {
	if !m.ready {
		return "Initializing UI..."
	}

	status := fmt.Sprintf(" SOMMELIER | MODEL: %s ", m.modelName)

	header := ui.HeaderStyle.
		Width(m.viewport.Width).
		Render(status)

	border := ui.GrayStyle.
		Width(m.viewport.Width).
		Render("──────────────────────────────────────────────────")

	view := fmt.Sprintf("%s\n%s\n%s\n%s",
		header,
		m.viewport.View(),
		border,
		m.textarea.View(),
	)

	if m.loading {
		view += "\n" + m.spinner.View() + " Подбираю ответ..."
	}

	return view
}

// makeTurnCmd выполняет один ход агента в фоне.
func makeTurnCmd(a *agent.Agent, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		defer cancel()

		reply, err := a.Run(ctx, query)
		if err != nil {
			return errorMsg{err: err}
		}
		return replyMsg{reply: reply}
	}
}

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	if err := utils.InitLogger(); err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer utils.Close()

	modelName := cfg.Models.DefaultChat
	modelDef, ok := cfg.GetChatModel("")
	if !ok {
		// Fallback: берем первый ключ из определений
		for k, def := range cfg.Models.Definitions {
			modelName, modelDef = k, def
			break
		}
	}

	provider, err := factory.NewLLMProvider(modelDef)
	if err != nil {
		log.Fatalf("Ошибка создания провайдера: %v", err)
	}

	catalogClient, err := catalog.NewFromConfig(cfg.Catalog)
	if err != nil {
		log.Fatalf("Ошибка создания клиента каталога: %v", err)
	}

	store := cart.NewStore()

	pl, err := pipeline.New(pipeline.Config{
		Search: catalogClient,
		Detail: catalogClient,
		Mutate: catalogClient,
		Store:  store,
	})
	if err != nil {
		log.Fatalf("Ошибка создания pipeline: %v", err)
	}

	registry := buildPromptRegistry(cfg)
	composer := compose.New(provider, registry)

	a, err := agent.New(agent.Config{
		Classifier: intent.New(provider),
		Extractor:  extract.New(provider),
		Pipeline:   pl,
		Composer:   composer,
		Images:     catalogClient,
		ImageCfg:   cfg.ImageProcessing,
		Store:      store,
	})
	if err != nil {
		log.Fatalf("Ошибка создания агента: %v", err)
	}

	p := tea.NewProgram(
		initialModel(a, modelName),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		log.Fatalf("Ошибка запуска TUI: %v", err)
	}

	archiveTranscript(cfg, a)
}

// buildPromptRegistry собирает цепочку источников промптов:
// sqlite база → YAML директория → встроенные дефолты.
func buildPromptRegistry(cfg *config.AppConfig) *prompts.Registry {
	var chain []prompts.Source

	if cfg.App.PromptsDB != "" {
		db, err := sources.OpenDatabaseSource(cfg.App.PromptsDB, "")
		if err != nil {
			utils.Warn("prompts db unavailable", "path", cfg.App.PromptsDB, "error", err)
		} else {
			chain = append(chain, db)
		}
	}
	if cfg.App.PromptsDir != "" {
		chain = append(chain, sources.NewFileSource(cfg.App.PromptsDir))
	}
	chain = append(chain, sources.NewDefaultSource())

	return prompts.NewRegistry(chain...)
}

// archiveTranscript выгружает транскрипт сессии в объектное хранилище.
// Сбой архивации не влияет на код выхода.
func archiveTranscript(cfg *config.AppConfig, a *agent.Agent) {
	store, err := archive.New(cfg.S3)
	if err != nil {
		utils.Warn("archive client init failed", "error", err)
		return
	}
	if store == nil {
		return
	}

	transcript := a.Transcript()
	if len(transcript) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sessionID := time.Now().Format("2006-01-02-15-04-05")
	if err := store.SaveTranscript(ctx, sessionID, transcript); err != nil {
		utils.Warn("transcript upload failed", "session", sessionID, "error", err)
		return
	}
	utils.Info("transcript archived", "session", sessionID, "bytes", len(transcript))
}
