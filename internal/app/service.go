package app

import (
	"context"
	"time"

	"retail-ops/internal/core"
)

// ApplicationService is the single interface presentation adapters call.
// It decouples transport from business logic. Implementations must contain
// no status codes, no JSON tags, and no display logic of any kind.
type ApplicationService interface {
	// CreateProduct adds a catalog entry with its per-warehouse stock
	// breakdown. The aggregate stock is computed server-side.
	CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResult, error)

	// GetProduct returns a single product with its stock breakdown.
	GetProduct(ctx context.Context, id int) (*ProductResult, error)

	// ListProducts returns the catalog, optionally filtered to one category.
	ListProducts(ctx context.Context, category string) (*ProductListResult, error)

	// ListLowStock returns products whose aggregate stock is below the
	// configured threshold.
	ListLowStock(ctx context.Context) (*ProductListResult, error)

	// UpdateProduct applies a partial update. Omitted fields are untouched.
	UpdateProduct(ctx context.Context, id int, req UpdateProductRequest) (*ProductResult, error)

	// DeleteProduct removes a product and its stock records.
	DeleteProduct(ctx context.Context, id int) error

	CreateCategory(ctx context.Context, name, description string) (*CategoryResult, error)
	ListCategories(ctx context.Context) (*CategoryListResult, error)
	UpdateCategory(ctx context.Context, id int, name, description string) (*CategoryResult, error)
	DeleteCategory(ctx context.Context, id int) error

	CreateWarehouse(ctx context.Context, req WarehouseRequest) (*WarehouseResult, error)
	GetWarehouse(ctx context.Context, id int) (*WarehouseResult, error)
	// ListWarehouses returns all warehouses, or only active ones.
	ListWarehouses(ctx context.Context, activeOnly bool) (*WarehouseListResult, error)
	UpdateWarehouse(ctx context.Context, id int, req WarehouseRequest) (*WarehouseResult, error)
	DeleteWarehouse(ctx context.Context, id int) error

	// CreateTransfer opens a stock transfer in awaiting-validation.
	CreateTransfer(ctx context.Context, req CreateTransferRequest) (*TransferResult, error)

	// UpdateTransfer edits an editable transfer's route, dates, and items.
	UpdateTransfer(ctx context.Context, id int, req UpdateTransferRequest) (*TransferResult, error)

	// ValidateTransfer records an owner's approve or reject decision.
	ValidateTransfer(ctx context.Context, req ValidateTransferRequest) (*TransferResult, error)

	// DispatchTransfer marks an approved transfer as in transit.
	DispatchTransfer(ctx context.Context, id int) (*TransferResult, error)

	// ReceiveTransfer records received quantities and moves per-warehouse
	// stock from source to destination atomically with the status change.
	ReceiveTransfer(ctx context.Context, req ReceiveTransferRequest) (*TransferResult, error)

	// CancelTransfer abandons a non-terminal transfer.
	CancelTransfer(ctx context.Context, id int) (*TransferResult, error)

	// DeleteTransfer removes a non-terminal transfer.
	DeleteTransfer(ctx context.Context, id int) error

	GetTransfer(ctx context.Context, id int) (*TransferResult, error)
	ListTransfers(ctx context.Context) (*TransferListResult, error)
	// ListPendingValidation returns transfers awaiting an owner decision.
	ListPendingValidation(ctx context.Context) (*TransferListResult, error)

	// Checkout validates cart lines against the catalog, captures current
	// prices, and records the sale with its stock deductions.
	Checkout(ctx context.Context, req CheckoutRequest) (*TransactionResult, error)

	// ListTransactions returns sales history, optionally bounded to
	// [from, to). Nil bounds are open.
	ListTransactions(ctx context.Context, from, to *time.Time) (*TransactionListResult, error)

	// SignUp registers a new account.
	SignUp(ctx context.Context, email, password string) (*SessionResult, error)

	// SignIn verifies credentials and returns the account with its
	// profile, creating the profile on first sign-in.
	SignIn(ctx context.Context, email, password string) (*SessionResult, error)

	GetProfile(ctx context.Context, userID int) (*ProfileResult, error)
	ListProfiles(ctx context.Context) (*ProfileListResult, error)

	// AssignRole sets a profile's role. Empty string revokes privileges.
	AssignRole(ctx context.Context, userID int, role string) (*ProfileResult, error)

	// DeleteAccount removes a user and their profile.
	DeleteAccount(ctx context.Context, userID int) error

	// GetDashboard computes the aggregate dashboard snapshot.
	GetDashboard(ctx context.Context) (*DashboardResult, error)

	// WatchStock subscribes to in-process stock updates for one product,
	// or all products when productID is 0. The cancel function must be
	// called when the subscriber is done.
	WatchStock(productID int) (<-chan core.StockUpdate, func())
}
