package core

import (
	"time"
)

// LocationType classifies the endpoints of a transfer.
type LocationType string

const (
	LocationWarehouse LocationType = "warehouse"
	LocationStore     LocationType = "store"
	LocationSupplier  LocationType = "supplier"
)

// Location is an embedded snapshot of a warehouse or store taken when the
// transfer referencing it was created. It is not a live reference: renaming
// the warehouse later does not change existing transfers.
type Location struct {
	ID      int          `json:"id"`
	Name    string       `json:"name"`
	Type    LocationType `json:"type"`
	Address string       `json:"address"`
}

// ItemCondition tags the physical state of transferred goods.
type ItemCondition string

const (
	ConditionGood    ItemCondition = "good"
	ConditionDamaged ItemCondition = "damaged"
	ConditionExpired ItemCondition = "expired"
)

// TransferItem is one product line on a transfer. CurrentStock snapshots
// the product's aggregate stock at creation time. QtyReceived accumulates
// across partial receipts and never exceeds Quantity.
type TransferItem struct {
	ID           int           `json:"id"`
	ProductID    int           `json:"product_id"`
	Quantity     int           `json:"quantity"`
	CurrentStock int           `json:"current_stock"`
	Condition    ItemCondition `json:"condition"`
	QtyReceived  int           `json:"qty_received"`
}

// TransferType pairs the kinds of locations goods move between.
type TransferType string

const (
	WarehouseToWarehouse TransferType = "warehouse-to-warehouse"
	SupplierToWarehouse  TransferType = "supplier-to-warehouse"
	WarehouseToStore     TransferType = "warehouse-to-store"
	StoreToWarehouse     TransferType = "store-to-warehouse"
	ReturnToSupplier     TransferType = "return-to-supplier"
)

// TransferStatus is the lifecycle state of a stock transfer. Transitions
// are governed exclusively by Transition in transfer_state.go.
type TransferStatus string

const (
	StatusDraft              TransferStatus = "draft"
	StatusPending            TransferStatus = "pending"
	StatusAwaitingValidation TransferStatus = "awaiting-validation"
	StatusApproved           TransferStatus = "approved"
	StatusInTransit          TransferStatus = "in-transit"
	StatusPartiallyReceived  TransferStatus = "partially-received"
	StatusCompleted          TransferStatus = "completed"
	StatusCancelled          TransferStatus = "cancelled"
	StatusRejected           TransferStatus = "rejected"
)

// TransferPriority orders validation queues.
type TransferPriority string

const (
	PriorityLow    TransferPriority = "low"
	PriorityMedium TransferPriority = "medium"
	PriorityHigh   TransferPriority = "high"
	PriorityUrgent TransferPriority = "urgent"
)

// PersonRef identifies an acting user on a transfer record.
type PersonRef struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// Validation records the owner's approve/reject decision.
type Validation struct {
	PersonRef
	Date  time.Time `json:"date"`
	Notes string    `json:"notes"`
}

// Receipt records who received the goods and when.
type Receipt struct {
	PersonRef
	Date time.Time `json:"date"`
}

// StockTransfer is a request to move specified quantities of specified
// products from one location to another. TotalItems and TotalQuantity are
// derived from Items and recomputed on every create and update; they are
// never trusted from a caller-supplied copy.
type StockTransfer struct {
	ID                   int              `json:"id"`
	TransferNumber       string           `json:"transfer_number"`
	TransferType         TransferType     `json:"transfer_type"`
	SourceLocation       Location         `json:"source_location"`
	DestinationLocation  Location         `json:"destination_location"`
	Items                []TransferItem   `json:"items"`
	RequestDate          time.Time        `json:"request_date"`
	ExpectedDeliveryDate string           `json:"expected_delivery_date"` // YYYY-MM-DD
	ActualDeliveryDate   *time.Time       `json:"actual_delivery_date,omitempty"`
	RequestedBy          PersonRef        `json:"requested_by"`
	ValidatedBy          *Validation      `json:"validated_by,omitempty"`
	ReceivedBy           *Receipt         `json:"received_by,omitempty"`
	Status               TransferStatus   `json:"status"`
	Priority             TransferPriority `json:"priority"`
	TotalItems           int              `json:"total_items"`
	TotalQuantity        int              `json:"total_quantity"`
	Notes                string           `json:"notes"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// TransferItemInput holds the fields required to create a transfer line.
type TransferItemInput struct {
	ProductID int
	Quantity  int
	Condition ItemCondition // empty means "good"
}

// ReceivedLine is one transfer item being received.
type ReceivedLine struct {
	ItemID      int // references transfer_items.id
	QtyReceived int // quantity received on this call
}
