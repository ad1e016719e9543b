// Package events publishes stock-change notifications to Kafka so external
// consumers (reporting pipelines, store displays) can follow inventory
// without polling the database.
package events

import (
	"time"

	"github.com/google/uuid"
)

// StockChangedEvent announces a product's new aggregate stock level.
type StockChangedEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	ProductID int       `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Source    string    `json:"source"` // e.g. "sale", "transfer-receive", "product-update"
	Timestamp time.Time `json:"timestamp"`
}

// NewStockChangedEvent stamps a fresh event ID and timestamp.
func NewStockChangedEvent(productID, quantity int, source string) StockChangedEvent {
	return StockChangedEvent{
		EventID:   uuid.New(),
		ProductID: productID,
		Quantity:  quantity,
		Source:    source,
		Timestamp: time.Now().UTC(),
	}
}
