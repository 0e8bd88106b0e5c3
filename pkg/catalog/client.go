// Package catalog предоставляет SDK для Cru marketplace API.
//
// Architecture:
//
// Это API SDK, а не просто "тупой" HTTP клиент. Он предоставляет:
//   - HTTP клиент с rate limiting и классификацией ошибок
//   - Высокоуровневые методы, знающие wrapper-форматы ответов Cru
//   - Tolerant декодирование (qty_available приходит строкой или числом)
//
// Retry здесь нет сознательно: неудавшийся ход разговора завершается
// типизированной ошибкой, пользователь повторяет запрос сам.
//
// Usage pattern:
//   - pkg/catalog — reusable SDK
//   - pkg/tools/std — тонкие обёртки для LLM function calling
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ilkoid/sommelier-ai/pkg/config"
	"github.com/ilkoid/sommelier-ai/pkg/utils"
	"golang.org/x/time/rate"
)

// ErrorType представляет тип ошибки при работе с Cru API.
type ErrorType int

const (
	ErrUnknown ErrorType = iota
	ErrAuthFailed
	ErrTimeout
	ErrNetwork
	ErrRateLimit
)

// String возвращает строковое представление типа ошибки.
func (e ErrorType) String() string {
	switch e {
	case ErrAuthFailed:
		return "authentication_failed"
	case ErrTimeout:
		return "timeout"
	case ErrNetwork:
		return "network_error"
	case ErrRateLimit:
		return "rate_limit"
	default:
		return "unknown"
	}
}

// HTTPClient интерфейс для выполнения HTTP запросов.
//
// Позволяет мокировать HTTP клиент в тестах.
// Стандартный *http.Client реализует этот интерфейс.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client — клиент Cru marketplace API.
type Client struct {
	baseURL     string
	userAgent   string
	cookies     map[string]string
	searchLimit int
	warehouseID int
	rateLimit   int
	burst       int
	httpClient  HTTPClient // Интерфейс вместо конкретного типа для testability

	mu       sync.Mutex
	limiters map[string]*rate.Limiter // endpoint ID → limiter
}

// NewFromConfig создает новый клиент из конфигурации.
//
// Поля с нулевыми значениями используют дефолтные значения через GetDefaults().
// Лимитеры создаются динамически при первом обращении к endpoint'у.
func NewFromConfig(cfg config.CatalogConfig) (*Client, error) {
	cfg = cfg.GetDefaults()

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog.timeout format: %w", err)
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:   cfg.UserAgent,
		cookies:     cfg.Cookies,
		searchLimit: cfg.SearchLimit,
		warehouseID: cfg.WarehouseID,
		rateLimit:   cfg.RateLimit,
		burst:       cfg.BurstLimit,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiters: make(map[string]*rate.Limiter),
	}, nil
}

// WarehouseID возвращает склад, настроенный для addToCart.
func (c *Client) WarehouseID() int {
	return c.warehouseID
}

// ClassifyError классифицирует ошибку по типу для лучшей диагностики.
func (c *Client) ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrUnknown
	}

	errMsg := err.Error()
	errMsgLower := strings.ToLower(errMsg)

	if strings.Contains(errMsg, "401") ||
		strings.Contains(errMsgLower, "unauthorized") ||
		strings.Contains(errMsg, "Forbidden") {
		return ErrAuthFailed
	}

	if strings.Contains(errMsgLower, "timeout") ||
		strings.Contains(errMsg, "deadline exceeded") {
		return ErrTimeout
	}

	if strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "no such host") {
		return ErrNetwork
	}

	if strings.Contains(errMsg, "429") ||
		strings.Contains(errMsg, "Too Many Requests") {
		return ErrRateLimit
	}

	return ErrUnknown
}

// doGet выполняет GET запрос с rate limiting и декодирует JSON ответ в dest.
//
// Non-200 статус и ошибка декодирования возвращаются как обычные ошибки —
// pipeline превращает их в UpstreamFailure.
func (c *Client) doGet(ctx context.Context, endpointID string, path string, params url.Values, dest interface{}) error {
	limiter := c.getOrCreateLimiter(endpointID)

	// Ждем разрешения от лимитера (блокирует горутину, если превысили лимит)
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	c.decorate(httpReq)

	return c.send(httpReq, endpointID, dest)
}

// doPost выполняет POST запрос с JSON телом и декодирует ответ в dest.
func (c *Client) doPost(ctx context.Context, endpointID string, path string, body interface{}, dest interface{}) error {
	limiter := c.getOrCreateLimiter(endpointID)

	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(string(bodyJSON)))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.decorate(httpReq)

	return c.send(httpReq, endpointID, dest)
}

// decorate добавляет User-Agent и сессионные cookies из конфигурации.
func (c *Client) decorate(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
}

// send выполняет подготовленный запрос и декодирует ответ.
func (c *Client) send(req *http.Request, endpointID string, dest interface{}) error {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		utils.Error("catalog request failed",
			"endpoint", endpointID,
			"error", err)
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	utils.Debug("catalog response",
		"endpoint", endpointID,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cru api error: status %d, body: %s", resp.StatusCode, truncate(string(body), 300))
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}

	return nil
}

// getOrCreateLimiter возвращает существующий limiter для endpoint'а или создаёт новый.
func (c *Client) getOrCreateLimiter(endpointID string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if limiter, exists := c.limiters[endpointID]; exists {
		return limiter
	}

	// rateLimit в запросах/минуту → rate.Limit в запросах/секунду
	ratePerSec := float64(c.rateLimit) / 60.0
	limiter := rate.NewLimiter(rate.Limit(ratePerSec), c.burst)
	c.limiters[endpointID] = limiter

	return limiter
}

// truncate обрезает тело ответа для сообщений об ошибках.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// SearchResult — результат autosuggestion поиска.
type SearchResult struct {
	Found      bool
	Candidates []Candidate // Порядок источника сохранён
}

// Search выполняет autosuggestion поиск по свободному текстовому запросу.
//
// Возвращает кандидатов (продукты и производители) в порядке, выданном API.
// Found == false означает что каталог ничего не нашёл.
func (c *Client) Search(ctx context.Context, term string) (*SearchResult, error) {
	params := url.Values{}
	params.Set("q", term)
	params.Set("exactStockAvailable", "undefined")
	params.Set("limit", fmt.Sprintf("%d", c.searchLimit))
	params.Set("searchProducers", "true")
	params.Set("platform", "web")

	var resp searchResponse
	if err := c.doGet(ctx, "catalog_search", "/live-markets/api_buyBid/autosuggestionsearch", params, &resp); err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}

	result := &SearchResult{Found: resp.Found}
	for _, group := range resp.Data {
		for _, entry := range group.Data {
			result.Candidates = append(result.Candidates, Candidate{
				Type:     group.Type,
				Name:     entry.Name,
				URL:      entry.URL,
				Lwin:     entry.Lwin,
				ImageURL: entry.ImageURL,
			})
		}
	}

	utils.Info("catalog search completed",
		"term", term,
		"found", result.Found,
		"candidates", len(result.Candidates))

	return result, nil
}

// ReqPath извлекает req_path из URL кандидата.
//
// PDP endpoint принимает первый сегмент пути страницы продукта
// (исторический формат: четвёртый элемент split по "/").
func ReqPath(candidateURL string) string {
	parts := strings.Split(candidateURL, "/")
	if len(parts) > 3 {
		return strings.TrimLeft(parts[3], "/")
	}
	return ""
}

// Detail запрашивает детали продукта по req_path и lwin.
//
// Офферы возвращаются в порядке API; выбор покупаемого оффера —
// через ProductDetail.FirstAvailable().
func (c *Client) Detail(ctx context.Context, reqPath string, lwin string) (*ProductDetail, error) {
	if reqPath == "" || lwin == "" {
		return nil, fmt.Errorf("req_path and lwin are required")
	}

	params := url.Values{}
	params.Set("req_path", strings.TrimLeft(reqPath, "/"))
	params.Set("lwin", lwin)
	params.Set("offer_type", "cru")
	params.Set("selected_transfer_type", "storage")
	params.Set("platform", "web")

	var resp detailResponse
	if err := c.doGet(ctx, "catalog_detail", "/live-markets/api_pdp/get", params, &resp); err != nil {
		return nil, fmt.Errorf("catalog detail: %w", err)
	}

	detail := &ProductDetail{}
	if resp.MainDetails != nil {
		detail.ShortName = resp.MainDetails.ShortName
		detail.Description = resp.MainDetails.Description
		detail.ImageURL = resp.MainDetails.ImageURL
		detail.StockLocation = resp.MainDetails.StockLocation
		detail.StockLocationETA = resp.MainDetails.StockLocationETA
	}
	for _, bd := range resp.BuyDetails {
		detail.Offers = append(detail.Offers, Offer{
			ProductID:    string(bd.ProductID),
			QtyAvailable: int(bd.UnitQty.QtyAvailable),
		})
	}

	utils.Info("catalog detail completed",
		"lwin", lwin,
		"offers", len(detail.Offers))

	return detail, nil
}

// AddToCartResult — результат мутации корзины.
type AddToCartResult struct {
	Confirmed bool
	Items     []CartItem
}

// AddToCart добавляет продукт в корзину на стороне маркетплейса.
//
// Confirmed == true только при HTTP 200 с декодируемым ответом —
// это единственное условие, при котором вызывающий фиксирует позицию локально.
func (c *Client) AddToCart(ctx context.Context, productID string, qty int) (*AddToCartResult, error) {
	if productID == "" {
		return nil, fmt.Errorf("productID is required")
	}
	if qty < 1 {
		return nil, fmt.Errorf("qty must be >= 1, got %d", qty)
	}

	payload := addToCartPayload{
		Availability:    "available",
		ConditionStatus: "verified",
		Escape:          true,
		Platform:        "web",
		Product:         productID,
		Qty:             qty,
		SkipMiniCart:    1,
		SpecialPrice:    0.0,
		Status:          "on_bpo",
		Uenc:            "",
		WarehouseID:     c.warehouseID,
	}

	var resp addToCartResponse
	if err := c.doPost(ctx, "catalog_add_to_cart", "/live-markets/api_cart/addToCart", payload, &resp); err != nil {
		return nil, fmt.Errorf("catalog add to cart: %w", err)
	}

	utils.Info("catalog add to cart confirmed",
		"product_id", productID,
		"qty", qty,
		"items", len(resp.CartItems))

	return &AddToCartResult{
		Confirmed: true,
		Items:     resp.CartItems,
	}, nil
}

// DownloadImage скачивает изображение этикетки по абсолютному URL.
//
// Используется для превью при intent == image. Не применяет rate limiting
// каталога: изображения раздаёт CDN, не API.
func (c *Client) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	if imageURL == "" {
		return nil, fmt.Errorf("imageURL is required")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download error: status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
