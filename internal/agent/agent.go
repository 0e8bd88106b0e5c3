// Package agent — оркестратор одного хода разговора.
//
// Ход обрабатывается строго последовательно: классификация намерения →
// извлечение имени и количества → разрешение через pipeline → композиция
// ответа. Второй ход не начинается, пока не завершён первый.
package agent

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ilkoid/sommelier-ai/pkg/cart"
	"github.com/ilkoid/sommelier-ai/pkg/compose"
	"github.com/ilkoid/sommelier-ai/pkg/config"
	"github.com/ilkoid/sommelier-ai/pkg/extract"
	"github.com/ilkoid/sommelier-ai/pkg/intent"
	"github.com/ilkoid/sommelier-ai/pkg/pipeline"
	"github.com/ilkoid/sommelier-ai/pkg/utils"
)

// ImageFetcher скачивает изображение этикетки по абсолютному URL.
//
// catalog.Client реализует этот интерфейс; в тестах подменяется моком.
type ImageFetcher interface {
	DownloadImage(ctx context.Context, imageURL string) ([]byte, error)
}

// Reply — результат одного хода.
type Reply struct {
	Text      string
	Intent    intent.Label
	ImagePath string // Путь к превью этикетки; пусто если превью не делалось
}

// Agent связывает все стадии обработки хода.
type Agent struct {
	classifier *intent.Classifier
	extractor  *extract.Extractor
	pipeline   *pipeline.Pipeline
	composer   *compose.Composer
	images     ImageFetcher
	imgCfg     config.ImageProcConfig
	store      *cart.Store

	// Один ход в полёте; TUI может дернуть Run из новой горутины
	// до завершения предыдущего хода.
	mu sync.Mutex

	transcriptMu sync.Mutex
	transcript   strings.Builder
}

// Config — зависимости агента.
type Config struct {
	Classifier *intent.Classifier
	Extractor  *extract.Extractor
	Pipeline   *pipeline.Pipeline
	Composer   *compose.Composer
	Images     ImageFetcher // Опционально: nil отключает превью этикеток
	ImageCfg   config.ImageProcConfig
	Store      *cart.Store
}

// New создаёт агента с проверкой обязательных зависимостей.
func New(cfg Config) (*Agent, error) {
	if cfg.Classifier == nil {
		return nil, fmt.Errorf("cfg.Classifier is required")
	}
	if cfg.Extractor == nil {
		return nil, fmt.Errorf("cfg.Extractor is required")
	}
	if cfg.Pipeline == nil {
		return nil, fmt.Errorf("cfg.Pipeline is required")
	}
	if cfg.Composer == nil {
		return nil, fmt.Errorf("cfg.Composer is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("cfg.Store is required")
	}

	return &Agent{
		classifier: cfg.Classifier,
		extractor:  cfg.Extractor,
		pipeline:   cfg.Pipeline,
		composer:   cfg.Composer,
		images:     cfg.Images,
		imgCfg:     cfg.ImageCfg.GetDefaults(),
		store:      cfg.Store,
	}, nil
}

// Run обрабатывает один пользовательский запрос от начала до конца.
//
// Ошибка возвращается только при невозможности составить ответ вообще;
// отказы стадий (не найдено, нет остатка, upstream лёг) превращаются
// в текстовый ответ для пользователя.
func (a *Agent) Run(ctx context.Context, query string) (*Reply, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is empty")
	}

	start := time.Now()

	// 1. Намерение. Ошибка провайдера не валит ход: классификатор
	// возвращает general с Recognized == false, отвечаем как на general.
	intentRes, err := a.classifier.Classify(ctx, query)
	if err != nil {
		utils.Warn("intent classification degraded",
			"error", err,
			"fallback", string(intentRes.Label))
	}
	label := intentRes.Label

	utils.Info("turn started",
		"intent", string(label),
		"recognized", intentRes.Recognized)

	// 2. Имя и количество. show_cart не требует извлечения — корзина
	// рендерится без сетевых вызовов и без имени вина.
	var req extract.Request
	if label != intent.ShowCart {
		req, err = a.extractor.Extract(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("extract wine name: %w", err)
		}
	}

	// 3. Разрешение
	result := a.pipeline.Resolve(ctx, req, label)

	// Отказ стадии — готовое человекочитаемое сообщение, LLM не зовём.
	if result.Failed() {
		utils.Warn("turn failed",
			"intent", string(label),
			"code", string(result.Err.Code),
			"cause", fmt.Sprintf("%v", result.Err.Cause))

		reply := &Reply{Text: result.Err.Message, Intent: label}
		a.appendTranscript(query, reply.Text)
		return reply, nil
	}

	// 4. Композиция ответа (всегда с пост-обработкой URL)
	text, err := a.composer.Compose(ctx, query, label, result)
	if err != nil {
		return nil, fmt.Errorf("compose response: %w", err)
	}

	reply := &Reply{Text: text, Intent: label}

	// 5. Превью этикетки для image-намерения — best effort
	if label == intent.Image {
		if path := a.labelPreview(ctx, result); path != "" {
			reply.ImagePath = path
		}
	}

	utils.Info("turn completed",
		"intent", string(label),
		"duration_ms", time.Since(start).Milliseconds(),
		"cart_len", a.store.Len())

	a.appendTranscript(query, reply.Text)
	return reply, nil
}

// labelPreview скачивает этикетку, ужимает её и кладёт рядом с процессом.
//
// Любой сбой здесь логируется и глотается: превью — украшение ответа,
// не его часть.
func (a *Agent) labelPreview(ctx context.Context, result *pipeline.Result) string {
	if a.images == nil || result.Detail == nil {
		return ""
	}

	imageURL := result.Detail.ImageURL
	if imageURL == "" && result.Candidate != nil {
		imageURL = result.Candidate.ImageURL
	}
	if imageURL == "" {
		return ""
	}

	data, err := a.images.DownloadImage(ctx, imageURL)
	if err != nil {
		utils.Warn("label download failed", "url", imageURL, "error", err)
		return ""
	}

	resized, err := utils.ResizeImage(data, a.imgCfg.MaxWidth, a.imgCfg.Quality)
	if err != nil {
		utils.Warn("label resize failed", "error", err)
		return ""
	}

	name := "label-preview.jpg"
	if result.Candidate != nil && result.Candidate.Lwin != "" {
		name = fmt.Sprintf("label-preview-%s.jpg", result.Candidate.Lwin)
	}
	if err := os.WriteFile(name, resized, 0o644); err != nil {
		utils.Warn("label preview write failed", "path", name, "error", err)
		return ""
	}

	utils.Info("label preview saved", "path", name, "bytes", len(resized))
	return name
}

// appendTranscript дописывает ход в текст сессии.
func (a *Agent) appendTranscript(query, answer string) {
	a.transcriptMu.Lock()
	defer a.transcriptMu.Unlock()

	fmt.Fprintf(&a.transcript, "[%s] user: %s\n", time.Now().Format(time.RFC3339), query)
	fmt.Fprintf(&a.transcript, "[%s] sommelier: %s\n\n", time.Now().Format(time.RFC3339), answer)
}

// Transcript возвращает накопленный текст сессии для архивации.
func (a *Agent) Transcript() []byte {
	a.transcriptMu.Lock()
	defer a.transcriptMu.Unlock()
	return []byte(a.transcript.String())
}
