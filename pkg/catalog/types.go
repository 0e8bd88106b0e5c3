// Wire-типы для Cru marketplace API.
package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexInt — целое, которое API отдаёт то числом, то строкой.
//
// Endpoint деталей продукта возвращает qty_available как "12" или 12
// в зависимости от типа оффера. Невалидное значение декодируется в 0,
// а не в ошибку — отсутствие количества означает "нет в наличии".
type FlexInt int

// UnmarshalJSON реализует tolerant декодирование числа или строки.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}

	// Строковый вариант: "12"
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexInt(n)
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		// Может прийти float
		var fl float64
		if err := json.Unmarshal(data, &fl); err != nil {
			*f = 0
			return nil
		}
		*f = FlexInt(int(fl))
		return nil
	}
	*f = FlexInt(n)
	return nil
}

// FlexString — значение, которое API отдаёт то строкой, то числом.
// product_id в buy_details приходит в обоих видах.
type FlexString string

// UnmarshalJSON реализует tolerant декодирование строки или числа.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	// Число — сохраняем исходное текстовое представление
	*f = FlexString(string(data))
	return nil
}

// Типы кандидатов autosuggestion поиска.
const (
	CandidateProducer = "producer"
	CandidateProduct  = "product"
)

// Candidate — один результат autosuggestion поиска.
//
// Producer-записи не имеют SKU и не участвуют в разрешении деталей.
type Candidate struct {
	Type     string // "producer" или "product"
	Name     string
	URL      string // Путь к странице продукта (источник req_path)
	Lwin     string // Стабильный идентификатор каталога; пустой = не покупается
	ImageURL string
}

// searchResponse — сырой ответ autosuggestionsearch.
//
// Формат: {"found": bool, "data": [{"type": "...", "data": [{...}]}]}
type searchResponse struct {
	Found bool          `json:"found"`
	Data  []searchGroup `json:"data"`
}

type searchGroup struct {
	Type string        `json:"type"`
	Data []searchEntry `json:"data"`
}

type searchEntry struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Lwin     string `json:"lwin"`
	ImageURL string `json:"image_url"`
}

// ProductDetail — детали продукта со страницы PDP.
type ProductDetail struct {
	ShortName        string
	Description      string
	ImageURL         string
	StockLocation    string
	StockLocationETA string
	Offers           []Offer
}

// Offer — покупаемая единица продукта.
type Offer struct {
	ProductID    string
	QtyAvailable int
}

// FirstAvailable возвращает первый оффер с положительным остатком.
//
// Порядок офферов задаёт API; второй результат false означает,
// что покупаемого оффера нет.
func (d *ProductDetail) FirstAvailable() (Offer, bool) {
	for _, o := range d.Offers {
		if o.ProductID != "" && o.QtyAvailable > 0 {
			return o, true
		}
	}
	return Offer{}, false
}

// detailResponse — сырой ответ api_pdp/get.
type detailResponse struct {
	MainDetails *mainDetails `json:"main_details"`
	BuyDetails  []buyDetail  `json:"buy_details"`
}

type mainDetails struct {
	ShortName        string `json:"short_name"`
	Description      string `json:"description"`
	ImageURL         string `json:"image_url"`
	StockLocation    string `json:"stock_location"`
	StockLocationETA string `json:"stock_location_eta"`
}

type buyDetail struct {
	ProductID FlexString  `json:"product_id"`
	UnitQty   unitQtyInfo `json:"unit_qty_info"`
}

type unitQtyInfo struct {
	QtyAvailable FlexInt `json:"qty_available"`
}

// CartItem — позиция корзины из ответа addToCart.
type CartItem struct {
	ItemID       FlexString `json:"item_id"`
	ProductID    FlexString `json:"product_id"`
	Name         string     `json:"name"`
	ShortName    string     `json:"short_name"`
	Quantity     FlexInt    `json:"quantity"`
	Price        float64    `json:"price"`
	PriceInclTax float64    `json:"price_including_tax"`
	Tax          float64    `json:"tax"`
	RowTotal     float64    `json:"row_total"`
	RowTotalIncl float64    `json:"row_total_including_tax"`
	ProductType  string     `json:"product_type"`
	Lwin         FlexString `json:"lwin"`
	Vintage      FlexString `json:"vintage"`
	Format       string     `json:"format"`
}

// addToCartResponse — сырой ответ api_cart/addToCart.
type addToCartResponse struct {
	CartItems []CartItem `json:"cart_items"`
}

// addToCartPayload — тело POST запроса addToCart.
//
// Значения полей фиксированы контрактом endpoint'а, меняются только
// product, qty и warehouse_id.
type addToCartPayload struct {
	Availability    string  `json:"availability"`
	ConditionStatus string  `json:"condition_status"`
	Escape          bool    `json:"escape"`
	Platform        string  `json:"platform"`
	Product         string  `json:"product"`
	Qty             int     `json:"qty"`
	SkipMiniCart    int     `json:"skip_mini_cart"`
	SpecialPrice    float64 `json:"special_price"`
	Status          string  `json:"status"`
	Uenc            string  `json:"uenc"`
	WarehouseID     int     `json:"warehouse_id"`
}
