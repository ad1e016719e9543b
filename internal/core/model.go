package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is a flat product tag with no hierarchy.
type Category struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// WarehouseStatus marks whether a warehouse participates in transfers.
type WarehouseStatus string

const (
	WarehouseActive   WarehouseStatus = "active"
	WarehouseInactive WarehouseStatus = "inactive"
)

// Warehouse is a physical storage location. Capacity is an advisory
// ceiling shown on forms; it is not enforced against stock totals.
type Warehouse struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Address   string          `json:"address"`
	Capacity  int             `json:"capacity"`
	Manager   string          `json:"manager"`
	Status    WarehouseStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// WarehouseStock is one warehouse's share of a product's stock.
// Warehouses are referenced by display name throughout the stock tables.
type WarehouseStock struct {
	WarehouseName string `json:"warehouse_name"`
	Quantity      int    `json:"quantity"`
}

// Product is a catalog entry. Stock is the aggregate across warehouses and
// must always equal the sum of Stocks quantities; it is recomputed
// server-side on every create and update.
type Product struct {
	ID        int              `json:"id"`
	Name      string           `json:"name"`
	Price     decimal.Decimal  `json:"price"`
	Stock     int              `json:"stock"`
	Category  string           `json:"category"`
	SKU       string           `json:"sku"`
	Stocks    []WarehouseStock `json:"stocks"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// TransactionStatus is the lifecycle state of a point-of-sale transaction.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionCancelled TransactionStatus = "cancelled"
)

// Transaction is a completed point-of-sale checkout.
type Transaction struct {
	ID        int               `json:"id"`
	Items     []TransactionItem `json:"items"`
	Total     decimal.Decimal   `json:"total"`
	SaleDate  time.Time         `json:"date"`
	CashierID int               `json:"cashier_id"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// TransactionItem is one sold line. Price is the unit price captured when
// the item was added to the cart, not re-read at checkout. WarehouseName is
// the first warehouse the stock was drawn from.
type TransactionItem struct {
	ID            int             `json:"id"`
	ProductID     int             `json:"product_id"`
	ProductName   string          `json:"product_name,omitempty"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	WarehouseName string          `json:"warehouse_name,omitempty"`
}

// StockMovement is an audit record of stock entering or leaving a warehouse.
type StockMovement struct {
	ID                   int       `json:"id"`
	Type                 string    `json:"type"` // "in" or "out"
	ProductID            int       `json:"product_id"`
	Quantity             int       `json:"quantity"`
	Date                 time.Time `json:"date"`
	RequestedBy          string    `json:"requested_by"`
	Status               string    `json:"status"`
	TransferID           *int      `json:"transfer_id,omitempty"`
	SourceWarehouse      string    `json:"source_warehouse,omitempty"`
	DestinationWarehouse string    `json:"destination_warehouse,omitempty"`
}

// User is an authentication account. The display name and role live on the
// companion Profile record.
type User struct {
	ID           int
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Profile carries a user's display name and role. A profile is created on
// first sign-in with an empty role; roles are assigned by an owner later.
type Profile struct {
	UserID    int       `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Known roles. Anything else (including the empty string) has no privileges.
const (
	RoleOwner = "owner"
	RoleStaff = "staff"
)
