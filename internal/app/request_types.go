package app

import (
	"github.com/shopspring/decimal"

	"retail-ops/internal/core"
)

// StockLine is one warehouse's share of a product's stock in a create or
// update request.
type StockLine struct {
	WarehouseName string
	Quantity      int
}

// CreateProductRequest is the input for creating a catalog entry.
type CreateProductRequest struct {
	Name     string
	Price    decimal.Decimal
	Category string
	SKU      string
	Stocks   []StockLine
}

// UpdateProductRequest is a partial product update. Nil fields are left
// untouched; a nil Stocks leaves the breakdown as it is.
type UpdateProductRequest struct {
	Name     *string
	Price    *decimal.Decimal
	Category *string
	SKU      *string
	Stocks   []StockLine
}

// WarehouseRequest is the input for creating or updating a warehouse.
type WarehouseRequest struct {
	Name     string
	Address  string
	Capacity int
	Manager  string
	Status   string // "active" or "inactive"; empty defaults to active
}

// TransferLine is one product line in a transfer request.
type TransferLine struct {
	ProductID int
	Quantity  int
	Condition string // empty means "good"
}

// CreateTransferRequest is the input for opening a stock transfer.
type CreateTransferRequest struct {
	TransferType         string
	SourceID             int
	DestinationID        int
	Priority             string
	ExpectedDeliveryDate string // YYYY-MM-DD
	Notes                string
	Items                []TransferLine
	RequestedBy          core.PersonRef
}

// UpdateTransferRequest carries the editable fields of a transfer.
type UpdateTransferRequest struct {
	TransferType         string
	SourceID             int
	DestinationID        int
	Priority             string
	ExpectedDeliveryDate string
	Notes                string
	Items                []TransferLine
}

// ValidateTransferRequest records an owner's decision.
type ValidateTransferRequest struct {
	TransferID  int
	Approve     bool
	Notes       string
	ValidatedBy core.PersonRef
}

// ReceiveLine is one transfer item being received.
type ReceiveLine struct {
	ItemID      int
	QtyReceived int
}

// ReceiveTransferRequest records goods arriving at the destination.
type ReceiveTransferRequest struct {
	TransferID int
	Lines      []ReceiveLine
	ReceivedBy core.PersonRef
}

// CheckoutLine is one product in a checkout request. The unit price is not
// accepted from the caller; it is read from the catalog at checkout.
type CheckoutLine struct {
	ProductID int
	Quantity  int
}

// CheckoutRequest is the input for recording a sale.
type CheckoutRequest struct {
	Lines     []CheckoutLine
	CashierID int
}
