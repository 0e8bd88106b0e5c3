// Типизированные результаты и таксономия ошибок pipeline.
package pipeline

import (
	"github.com/ilkoid/sommelier-ai/pkg/cart"
	"github.com/ilkoid/sommelier-ai/pkg/catalog"
)

// Kind — вид успешного результата.
type Kind string

const (
	// Added — позиция добавлена в корзину, Result несёт снапшот.
	Added Kind = "added"
	// Info — детали продукта без мутации состояния.
	Info Kind = "info"
	// CartView — снапшот корзины (show_cart), сетевых вызовов не было.
	CartView Kind = "cart_view"
	// Failed — ход завершился типизированной ошибкой (см. Failure).
	Failed Kind = "failed"
)

// FailureCode — таксономия ошибок разрешения.
type FailureCode string

const (
	// NotFound — поиск не дал подходящего продукта.
	NotFound FailureCode = "not_found"
	// MissingIdentifiers — у кандидата нет catalog path или lwin.
	MissingIdentifiers FailureCode = "missing_identifiers"
	// InsufficientStock — запрошено больше, чем доступно.
	InsufficientStock FailureCode = "insufficient_stock"
	// CartRejected — cart endpoint не подтвердил мутацию.
	CartRejected FailureCode = "cart_rejected"
	// UpstreamFailure — транспортная ошибка или битый payload коллаборатора.
	UpstreamFailure FailureCode = "upstream_failure"
)

// Failure — типизированная ошибка стадии.
//
// Message — короткое человекочитаемое сообщение для пользователя;
// Cause — исходная ошибка для логов (может быть nil).
type Failure struct {
	Code    FailureCode
	Message string
	Cause   error
}

// Result — итог разрешения одного хода разговора.
//
// Ошибки не пересекают границу стадий молча: любой сбой
// сворачивается в Failure внутри Result.
type Result struct {
	Kind      Kind
	Detail    *catalog.ProductDetail // Заполнен для Info и Added
	Candidate *catalog.Candidate     // Выбранный кандидат (для Info и Added)
	Requested int                    // Запрошенное количество бутылок
	CartLines []cart.Line            // Снапшот корзины (Added и CartView)
	Err       *Failure               // Заполнен только при Kind == Failed
}

// Failed сообщает, завершился ли ход ошибкой.
func (r *Result) Failed() bool {
	return r.Kind == Failed
}

// fail строит Result с типизированной ошибкой.
func fail(code FailureCode, message string, cause error) *Result {
	return &Result{
		Kind: Failed,
		Err:  &Failure{Code: code, Message: message, Cause: cause},
	}
}
