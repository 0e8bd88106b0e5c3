// Package extract выводит каноничное имя вина и количество бутылок из запроса.
//
// Две независимые стратегии с задокументированным приоритетом:
//  1. Rule-based: regexp-грамматика количества и обрезка служебных фраз.
//  2. LLM refinement: модель возвращает каноничное имя вина.
//
// Приоритет: имя модели выигрывает только если ответ непустой; при ошибке
// провайдера или пустом ответе остаётся rule-based имя. Количество ВСЕГДА
// берётся из правил — модель к нему не допускается.
package extract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ilkoid/sommelier-ai/pkg/llm"
	"github.com/ilkoid/sommelier-ai/pkg/utils"
)

// Request — извлечённый запрос: имя для поиска и количество бутылок.
type Request struct {
	Name     string
	Quantity int // Всегда >= 1
}

// Грамматика количества: "<N> case(s) ... (<M>x75cl)" => N*M бутылок.
// Умножение load-bearing: кейс считается в бутылках формата Mx75cl.
var caseQtyRe = regexp.MustCompile(`(?i)(\d+)\s*cases?\b.*?\(\s*(\d+)\s*x\s*75\s*cl\s*\)`)

// Фразы, обрезаемые при выводе рабочего имени.
var (
	leadingAddRe   = regexp.MustCompile(`(?i)^\s*add\s+(\d+\s+)?cases?\s+of\s+`)
	trailingFmtRe  = regexp.MustCompile(`(?i)\(\s*\d+\s*x\s*75\s*cl\s*\)\s*`)
	trailingCartRe = regexp.MustCompile(`(?i)\s*to\s+my\s+cart\s*[.!]?\s*$`)
)

// Extractor — двухстратегийный экстрактор.
type Extractor struct {
	provider llm.Provider
}

// New создает экстрактор поверх LLM провайдера.
func New(provider llm.Provider) *Extractor {
	return &Extractor{provider: provider}
}

// Quantity извлекает количество бутылок по правилам.
//
// Возвращает N*M для паттерна "<N> case(s) ... (<M>x75cl)", иначе 1.
func Quantity(query string) int {
	m := caseQtyRe.FindStringSubmatch(query)
	if m == nil {
		return 1
	}

	n, err1 := strconv.Atoi(m[1])
	per, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil || n < 1 || per < 1 {
		return 1
	}

	return n * per
}

// RuleName выводит рабочее имя вина обрезкой служебных фраз.
//
// Если ни одно правило не сработало, возвращает исходный текст запроса.
func RuleName(query string) string {
	name := leadingAddRe.ReplaceAllString(query, "")
	name = trailingFmtRe.ReplaceAllString(name, "")
	name = trailingCartRe.ReplaceAllString(name, "")

	name = strings.TrimSpace(name)
	if name == "" {
		return strings.TrimSpace(query)
	}
	return name
}

// Extract выводит Request из запроса.
//
// Количество — только из правил. Имя уточняется одним вызовом модели;
// непустой ответ модели выигрывает, ошибка или пустой ответ оставляют
// rule-based имя (сбой уточнения не валит ход разговора).
func (e *Extractor) Extract(ctx context.Context, query string) (Request, error) {
	qty := Quantity(query)
	ruleName := RuleName(query)

	modelName, err := e.refineName(ctx, query)
	if err != nil {
		utils.Warn("name refinement failed, keeping rule-based name",
			"rule_name", ruleName,
			"error", err)
		return Request{Name: ruleName, Quantity: qty}, nil
	}

	name := ruleName
	if modelName != "" {
		name = modelName
	}

	utils.Info("request extracted",
		"name", name,
		"rule_name", ruleName,
		"quantity", qty)

	return Request{Name: name, Quantity: qty}, nil
}

// refineName спрашивает модель каноничное имя вина.
func (e *Extractor) refineName(ctx context.Context, query string) (string, error) {
	prompt := fmt.Sprintf(
		"Extract the canonical wine name from this query. "+
			"Answer with the wine name only, no quantity, no extra words.\n\nQuery: %q", query)

	answer, err := llm.Ask(ctx, e.provider, prompt)
	if err != nil {
		return "", fmt.Errorf("refine wine name: %w", err)
	}

	return strings.TrimSpace(utils.CleanCodeFence(answer)), nil
}
