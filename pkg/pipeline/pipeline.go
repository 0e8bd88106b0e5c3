// Package pipeline оркестрирует разрешение запроса: поиск → выбор кандидата →
// детали → проверка количества → (опционально) мутация корзины.
//
// Политика отказов: любая ошибка ловится на границе породившей её стадии
// и превращается в типизированный Result. Retry нет нигде — transient сбой
// upstream'а завершает ход, пользователь повторяет запрос сам.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/ilkoid/sommelier-ai/pkg/cart"
	"github.com/ilkoid/sommelier-ai/pkg/catalog"
	"github.com/ilkoid/sommelier-ai/pkg/extract"
	"github.com/ilkoid/sommelier-ai/pkg/intent"
	"github.com/ilkoid/sommelier-ai/pkg/utils"
)

// Searcher — коллаборатор поиска по каталогу.
type Searcher interface {
	Search(ctx context.Context, term string) (*catalog.SearchResult, error)
}

// Detailer — коллаборатор деталей продукта.
type Detailer interface {
	Detail(ctx context.Context, reqPath string, lwin string) (*catalog.ProductDetail, error)
}

// CartMutator — коллаборатор мутации корзины.
type CartMutator interface {
	AddToCart(ctx context.Context, productID string, qty int) (*catalog.AddToCartResult, error)
}

// Pipeline — разрешение одного хода разговора.
//
// Все сетевые вызовы блокирующие и строго последовательные;
// одновременно в полёте не бывает больше одного.
type Pipeline struct {
	search Searcher
	detail Detailer
	mutate CartMutator
	store  *cart.Store
}

// Config — зависимости pipeline.
type Config struct {
	Search Searcher
	Detail Detailer
	Mutate CartMutator
	Store  *cart.Store
}

// New создаёт pipeline с проверкой обязательных зависимостей.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Search == nil {
		return nil, fmt.Errorf("cfg.Search is required")
	}
	if cfg.Detail == nil {
		return nil, fmt.Errorf("cfg.Detail is required")
	}
	if cfg.Mutate == nil {
		return nil, fmt.Errorf("cfg.Mutate is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("cfg.Store is required")
	}

	return &Pipeline{
		search: cfg.Search,
		detail: cfg.Detail,
		mutate: cfg.Mutate,
		store:  cfg.Store,
	}, nil
}

// Resolve выполняет разрешение запроса для заданного намерения.
//
// show_cart коротит все сетевые стадии и возвращает снапшот корзины.
// Остальные намерения идут через поиск и детали; add_to_cart дополнительно
// проходит проверку количества и мутацию корзины.
func (p *Pipeline) Resolve(ctx context.Context, req extract.Request, label intent.Label) *Result {
	// show_cart: стадии 1-5 не выполняются вовсе
	if label == intent.ShowCart {
		return &Result{
			Kind:      CartView,
			CartLines: p.store.Snapshot(),
		}
	}

	// 1. Поиск по каталогу
	searchResult, err := p.search.Search(ctx, req.Name)
	if err != nil {
		return fail(UpstreamFailure, "The wine catalog is not responding right now.", err)
	}
	if !searchResult.Found || len(searchResult.Candidates) == 0 {
		return fail(NotFound, fmt.Sprintf("No products found for %q.", req.Name), nil)
	}

	// 2. Выбор кандидата: первый продукт, имя которого содержит искомое
	// (без учёта регистра). Producer-записи пропускаются — у них нет SKU.
	// Кандидаты без lwin не покупаются и тоже пропускаются.
	candidate := pickCandidate(searchResult.Candidates, req.Name)
	if candidate == nil {
		return fail(NotFound, fmt.Sprintf("No matching product found for %q.", req.Name), nil)
	}

	// 3. Кандидат без идентификаторов непригоден для разрешения деталей
	reqPath := catalog.ReqPath(candidate.URL)
	if reqPath == "" || candidate.Lwin == "" {
		return fail(MissingIdentifiers,
			fmt.Sprintf("Product %q is listed without usable identifiers.", candidate.Name), nil)
	}

	// 4. Детали продукта
	detail, err := p.detail.Detail(ctx, reqPath, candidate.Lwin)
	if err != nil {
		return fail(UpstreamFailure, "Could not load product details.", err)
	}

	// 5. Ветвление по намерению
	if label == intent.AddToCart {
		return p.addToCart(ctx, req, candidate, detail)
	}

	// stock | description | image | general: детали без мутации состояния
	return &Result{
		Kind:      Info,
		Detail:    detail,
		Candidate: candidate,
		Requested: req.Quantity,
	}
}

// addToCart выполняет проверку количества и мутацию корзины.
//
// Инвариант: requestedQuantity никогда не превышает availableQuantity
// на момент мутации; проверка обязательна ДО мутирующего вызова.
func (p *Pipeline) addToCart(ctx context.Context, req extract.Request, candidate *catalog.Candidate, detail *catalog.ProductDetail) *Result {
	offer, ok := detail.FirstAvailable()
	if !ok {
		return fail(InsufficientStock,
			fmt.Sprintf("%s has no purchasable offer at the moment.", displayName(candidate, detail)), nil)
	}

	if req.Quantity > offer.QtyAvailable {
		utils.Warn("insufficient stock",
			"requested", req.Quantity,
			"available", offer.QtyAvailable)
		return fail(InsufficientStock,
			fmt.Sprintf("Only %d bottles of %s are available, you asked for %d.",
				offer.QtyAvailable, displayName(candidate, detail), req.Quantity), nil)
	}

	mutation, err := p.mutate.AddToCart(ctx, offer.ProductID, req.Quantity)
	if err != nil {
		return fail(UpstreamFailure, "The cart service is not responding right now.", err)
	}
	if !mutation.Confirmed {
		return fail(CartRejected,
			fmt.Sprintf("The marketplace rejected adding %s to the cart.", displayName(candidate, detail)), nil)
	}

	// Подтверждённый успех: ровно одна позиция за мутацию.
	// Идемпотентность не требуется — повторное добавление даёт вторую позицию.
	line := buildLine(mutation, offer, req, candidate, detail)
	p.store.Append(line)

	utils.Info("cart line appended",
		"product_id", line.ProductID,
		"quantity", line.Quantity,
		"cart_len", p.store.Len())

	return &Result{
		Kind:      Added,
		Detail:    detail,
		Candidate: candidate,
		Requested: req.Quantity,
		CartLines: p.store.Snapshot(),
	}
}

// pickCandidate сканирует кандидатов в порядке источника и возвращает первый
// продукт, имя которого содержит искомое как подстроку (case-insensitive).
// First match wins; никакого ранжирования сверх порядка источника.
func pickCandidate(candidates []catalog.Candidate, name string) *catalog.Candidate {
	needle := strings.ToLower(strings.TrimSpace(name))

	for i := range candidates {
		c := &candidates[i]

		if c.Type == catalog.CandidateProducer {
			continue
		}
		// lwin отсутствует => кандидат не покупается
		if c.Lwin == "" {
			continue
		}
		if strings.Contains(strings.ToLower(c.Name), needle) {
			return c
		}
	}

	return nil
}

// buildLine собирает позицию корзины из ответа мутации.
//
// ETA и склад берутся из деталей продукта — cart endpoint их не возвращает.
// Если ответ не содержит cart_items, позиция синтезируется из известных данных.
func buildLine(mutation *catalog.AddToCartResult, offer catalog.Offer, req extract.Request, candidate *catalog.Candidate, detail *catalog.ProductDetail) cart.Line {
	line := cart.Line{
		ProductID: offer.ProductID,
		Name:      candidate.Name,
		ShortName: detail.ShortName,
		Quantity:  req.Quantity,
		ETA:       detail.StockLocationETA,
		Warehouse: detail.StockLocation,
		Lwin:      candidate.Lwin,
	}

	if len(mutation.Items) > 0 {
		item := mutation.Items[0]
		line.ItemID = string(item.ItemID)
		if item.Name != "" {
			line.Name = item.Name
		}
		if item.ShortName != "" {
			line.ShortName = item.ShortName
		}
		if int(item.Quantity) > 0 {
			line.Quantity = int(item.Quantity)
		}
		line.Price = item.Price
		line.PriceInclTax = item.PriceInclTax
		line.RowTotal = item.RowTotal
		line.Format = item.Format
		line.Vintage = string(item.Vintage)
		if string(item.Lwin) != "" {
			line.Lwin = string(item.Lwin)
		}
	}

	return line
}

// displayName возвращает лучшее доступное имя продукта для сообщений.
func displayName(candidate *catalog.Candidate, detail *catalog.ProductDetail) string {
	if detail != nil && detail.ShortName != "" {
		return detail.ShortName
	}
	return candidate.Name
}
