package core

import (
	"sync"
)

// StockUpdate is one observed change to a product's aggregate stock.
type StockUpdate struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type stockSub struct {
	productID int // 0 watches every product
	ch        chan StockUpdate
}

// StockWatcher fans stock changes out to in-process subscribers. Services
// call Notify after committing a stock mutation; register sessions and the
// dashboard subscribe to keep displayed quantities current. Slow subscribers
// drop updates rather than block the notifier.
type StockWatcher struct {
	mu   sync.Mutex
	subs map[int]*stockSub
	next int
}

// NewStockWatcher constructs an empty watcher.
func NewStockWatcher() *StockWatcher {
	return &StockWatcher{subs: map[int]*stockSub{}}
}

// Watch subscribes to stock changes for one product, or for all products
// when productID is 0. The returned cancel function releases the
// subscription and closes the channel; callers must invoke it.
func (w *StockWatcher) Watch(productID int) (<-chan StockUpdate, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.next
	w.next++
	sub := &stockSub{productID: productID, ch: make(chan StockUpdate, 16)}
	w.subs[id] = sub

	cancel := func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if s, ok := w.subs[id]; ok {
			delete(w.subs, id)
			close(s.ch)
		}
	}
	return sub.ch, cancel
}

// Notify publishes a product's new aggregate stock to interested
// subscribers. It never blocks; a subscriber with a full buffer misses the
// update and catches up on the next one.
func (w *StockWatcher) Notify(productID, quantity int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	update := StockUpdate{ProductID: productID, Quantity: quantity}
	for _, sub := range w.subs {
		if sub.productID != 0 && sub.productID != productID {
			continue
		}
		select {
		case sub.ch <- update:
		default:
		}
	}
}
