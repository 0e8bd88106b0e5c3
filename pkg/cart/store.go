// Package cart хранит позиции корзины в памяти процесса.
//
// Store — append-only: позиции добавляются только после подтверждённой
// мутации на стороне маркетплейса и живут до завершения процесса.
// Операции удаления нет по контракту.
package cart

import "sync"

// Line — одна зафиксированная позиция корзины.
//
// Immutable после добавления.
type Line struct {
	ItemID       string
	ProductID    string
	Name         string
	ShortName    string
	Quantity     int
	Price        float64
	PriceInclTax float64
	RowTotal     float64
	ETA          string // Ожидаемый срок из stock_location_eta
	Warehouse    string // Локация склада из stock_location
	Format       string
	Vintage      string
	Lwin         string
}

// Store — упорядоченное append-only хранилище позиций.
//
// Ходы разговора строго последовательны, но мьютекс оставлен:
// TUI рендерит снапшот из другой горутины.
type Store struct {
	mu    sync.Mutex
	lines []Line
}

// NewStore создает пустое хранилище.
func NewStore() *Store {
	return &Store{}
}

// Append добавляет подтверждённую позицию в конец.
//
// Вызывается только после успешного ответа cart endpoint'а;
// отклонённая попытка не добавляет ничего.
func (s *Store) Append(line Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
}

// Snapshot возвращает копию всех позиций в порядке добавления.
func (s *Store) Snapshot() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len возвращает количество позиций.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}
