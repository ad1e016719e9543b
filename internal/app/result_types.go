package app

import "retail-ops/internal/core"

// ProductResult is returned by single-product operations.
type ProductResult struct {
	Product *core.Product
}

// ProductListResult is returned by catalog listings.
type ProductListResult struct {
	Products []core.Product
}

// CategoryResult is returned by category operations.
type CategoryResult struct {
	Category *core.Category
}

// CategoryListResult is returned by ListCategories.
type CategoryListResult struct {
	Categories []core.Category
}

// WarehouseResult is returned by warehouse operations.
type WarehouseResult struct {
	Warehouse *core.Warehouse
}

// WarehouseListResult is returned by ListWarehouses.
type WarehouseListResult struct {
	Warehouses []core.Warehouse
}

// TransferResult is returned by transfer lifecycle operations.
type TransferResult struct {
	Transfer *core.StockTransfer
}

// TransferListResult is returned by transfer listings.
type TransferListResult struct {
	Transfers []core.StockTransfer
}

// TransactionResult is returned by Checkout.
type TransactionResult struct {
	Transaction *core.Transaction
}

// TransactionListResult is returned by ListTransactions.
type TransactionListResult struct {
	Transactions []core.Transaction
}

// SessionResult is returned by SignUp and SignIn.
type SessionResult struct {
	User    *core.User
	Profile *core.Profile
}

// ProfileResult is returned by profile operations.
type ProfileResult struct {
	Profile *core.Profile
}

// ProfileListResult is returned by ListProfiles.
type ProfileListResult struct {
	Profiles []core.Profile
}

// DashboardResult is returned by GetDashboard.
type DashboardResult struct {
	Metrics *core.DashboardMetrics
}
