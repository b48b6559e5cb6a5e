package levelbook

import (
	"sync"
	"sync/atomic"
)

// Registry manages the order books of all registered symbols.
// Registration and lookup are safe for concurrent use; each returned book
// still has a single writer.
type Registry struct {
	orderbooks sync.Map
	count      atomic.Int64
	opts       []OrderBookOption
}

// NewRegistry creates a registry. opts are applied to every book before the
// per-symbol options passed to Register.
func NewRegistry(opts ...OrderBookOption) *Registry {
	return &Registry{
		opts: opts,
	}
}

// Register creates the order book for symbol.
// Returns ErrInvalidParam for an empty symbol or ErrSymbolExists if it is already registered.
func (r *Registry) Register(symbol string, opts ...OrderBookOption) (*OrderBook, error) {
	if len(symbol) == 0 {
		return nil, ErrInvalidParam
	}
	if _, exists := r.orderbooks.Load(symbol); exists {
		logger.Warn("symbol already registered", "symbol", symbol)
		return nil, ErrSymbolExists
	}

	all := make([]OrderBookOption, 0, len(r.opts)+len(opts))
	all = append(all, r.opts...)
	all = append(all, opts...)
	book := NewOrderBook(symbol, all...)

	if _, loaded := r.orderbooks.LoadOrStore(symbol, book); loaded {
		logger.Warn("symbol already registered", "symbol", symbol)
		return nil, ErrSymbolExists
	}
	r.count.Add(1)

	logger.Info("order book registered", "book", book)
	return book, nil
}

// Deregister retires the order book of symbol.
// Returns ErrNotFound if the symbol is not registered.
func (r *Registry) Deregister(symbol string) error {
	value, loaded := r.orderbooks.LoadAndDelete(symbol)
	if !loaded {
		return ErrNotFound
	}
	r.count.Add(-1)

	book, _ := value.(*OrderBook)
	if book.metricsSet != nil {
		book.metricsSet.forget(symbol)
	}
	logger.Info("order book deregistered", "book", book)
	return nil
}

// OrderBook retrieves the order book for symbol.
// Returns nil if the symbol is not registered.
func (r *Registry) OrderBook(symbol string) *OrderBook {
	value, found := r.orderbooks.Load(symbol)
	if !found {
		return nil
	}

	book, _ := value.(*OrderBook)
	return book
}

// Range calls fn for every registered book until fn returns false.
// fn must not mutate books owned by other goroutines.
func (r *Registry) Range(fn func(symbol string, book *OrderBook) bool) {
	r.orderbooks.Range(func(key, value any) bool {
		return fn(key.(string), value.(*OrderBook))
	})
}

// Len returns the number of registered symbols.
func (r *Registry) Len() int {
	return int(r.count.Load())
}
