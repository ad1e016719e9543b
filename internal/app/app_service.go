package app

import (
	"context"
	"time"

	"retail-ops/internal/core"
)

type appService struct {
	catalog           core.CatalogService
	categories        core.CategoryService
	warehouses        core.WarehouseService
	transfers         core.TransferService
	sales             core.SalesService
	profiles          core.ProfileService
	reporting         core.ReportingService
	watcher           *core.StockWatcher
	lowStockThreshold int
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	catalog core.CatalogService,
	categories core.CategoryService,
	warehouses core.WarehouseService,
	transfers core.TransferService,
	sales core.SalesService,
	profiles core.ProfileService,
	reporting core.ReportingService,
	watcher *core.StockWatcher,
	lowStockThreshold int,
) ApplicationService {
	return &appService{
		catalog:           catalog,
		categories:        categories,
		warehouses:        warehouses,
		transfers:         transfers,
		sales:             sales,
		profiles:          profiles,
		reporting:         reporting,
		watcher:           watcher,
		lowStockThreshold: lowStockThreshold,
	}
}

func stockLines(lines []StockLine) []core.WarehouseStock {
	if lines == nil {
		return nil
	}
	stocks := make([]core.WarehouseStock, len(lines))
	for i, l := range lines {
		stocks[i] = core.WarehouseStock{WarehouseName: l.WarehouseName, Quantity: l.Quantity}
	}
	return stocks
}

func (s *appService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResult, error) {
	product, err := s.catalog.CreateProduct(ctx, core.ProductInput{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		SKU:      req.SKU,
		Stocks:   stockLines(req.Stocks),
	})
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: product}, nil
}

func (s *appService) GetProduct(ctx context.Context, id int) (*ProductResult, error) {
	product, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: product}, nil
}

func (s *appService) ListProducts(ctx context.Context, category string) (*ProductListResult, error) {
	var (
		products []core.Product
		err      error
	)
	if category == "" {
		products, err = s.catalog.ListProducts(ctx)
	} else {
		products, err = s.catalog.ListProductsByCategory(ctx, category)
	}
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) ListLowStock(ctx context.Context) (*ProductListResult, error) {
	products, err := s.catalog.ListLowStock(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) UpdateProduct(ctx context.Context, id int, req UpdateProductRequest) (*ProductResult, error) {
	product, err := s.catalog.UpdateProduct(ctx, id, core.ProductUpdate{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		SKU:      req.SKU,
		Stocks:   stockLines(req.Stocks),
	})
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: product}, nil
}

func (s *appService) DeleteProduct(ctx context.Context, id int) error {
	return s.catalog.DeleteProduct(ctx, id)
}

func (s *appService) CreateCategory(ctx context.Context, name, description string) (*CategoryResult, error) {
	category, err := s.categories.CreateCategory(ctx, name, description)
	if err != nil {
		return nil, err
	}
	return &CategoryResult{Category: category}, nil
}

func (s *appService) ListCategories(ctx context.Context) (*CategoryListResult, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return &CategoryListResult{Categories: categories}, nil
}

func (s *appService) UpdateCategory(ctx context.Context, id int, name, description string) (*CategoryResult, error) {
	category, err := s.categories.UpdateCategory(ctx, id, name, description)
	if err != nil {
		return nil, err
	}
	return &CategoryResult{Category: category}, nil
}

func (s *appService) DeleteCategory(ctx context.Context, id int) error {
	return s.categories.DeleteCategory(ctx, id)
}

func warehouseInput(req WarehouseRequest) core.WarehouseInput {
	status := core.WarehouseStatus(req.Status)
	if status == "" {
		status = core.WarehouseActive
	}
	return core.WarehouseInput{
		Name:     req.Name,
		Address:  req.Address,
		Capacity: req.Capacity,
		Manager:  req.Manager,
		Status:   status,
	}
}

func (s *appService) CreateWarehouse(ctx context.Context, req WarehouseRequest) (*WarehouseResult, error) {
	warehouse, err := s.warehouses.CreateWarehouse(ctx, warehouseInput(req))
	if err != nil {
		return nil, err
	}
	return &WarehouseResult{Warehouse: warehouse}, nil
}

func (s *appService) GetWarehouse(ctx context.Context, id int) (*WarehouseResult, error) {
	warehouse, err := s.warehouses.GetWarehouse(ctx, id)
	if err != nil {
		return nil, err
	}
	return &WarehouseResult{Warehouse: warehouse}, nil
}

func (s *appService) ListWarehouses(ctx context.Context, activeOnly bool) (*WarehouseListResult, error) {
	var (
		warehouses []core.Warehouse
		err        error
	)
	if activeOnly {
		warehouses, err = s.warehouses.ListActiveWarehouses(ctx)
	} else {
		warehouses, err = s.warehouses.ListWarehouses(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &WarehouseListResult{Warehouses: warehouses}, nil
}

func (s *appService) UpdateWarehouse(ctx context.Context, id int, req WarehouseRequest) (*WarehouseResult, error) {
	warehouse, err := s.warehouses.UpdateWarehouse(ctx, id, warehouseInput(req))
	if err != nil {
		return nil, err
	}
	return &WarehouseResult{Warehouse: warehouse}, nil
}

func (s *appService) DeleteWarehouse(ctx context.Context, id int) error {
	return s.warehouses.DeleteWarehouse(ctx, id)
}

func transferItems(lines []TransferLine) []core.TransferItemInput {
	items := make([]core.TransferItemInput, len(lines))
	for i, l := range lines {
		items[i] = core.TransferItemInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Condition: core.ItemCondition(l.Condition),
		}
	}
	return items
}

func (s *appService) CreateTransfer(ctx context.Context, req CreateTransferRequest) (*TransferResult, error) {
	transfer, err := s.transfers.CreateTransfer(ctx, core.TransferInput{
		TransferType:         core.TransferType(req.TransferType),
		SourceID:             req.SourceID,
		DestinationID:        req.DestinationID,
		Priority:             core.TransferPriority(req.Priority),
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Notes:                req.Notes,
		Items:                transferItems(req.Items),
	}, req.RequestedBy)
	if err != nil {
		return nil, err
	}
	return &TransferResult{Transfer: transfer}, nil
}

func (s *appService) UpdateTransfer(ctx context.Context, id int, req UpdateTransferRequest) (*TransferResult, error) {
	transfer, err := s.transfers.UpdateTransfer(ctx, id, core.TransferInput{
		TransferType:         core.TransferType(req.TransferType),
		SourceID:             req.SourceID,
		DestinationID:        req.DestinationID,
		Priority:             core.TransferPriority(req.Priority),
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Notes:                req.Notes,
		Items:                transferItems(req.Items),
	})
	if err != nil {
		return nil, err
	}
	return &TransferResult{Transfer: transfer}, nil
}

func (s *appService) ValidateTransfer(ctx context.Context, req ValidateTransferRequest) (*TransferResult, error) {
	transfer, err := s.transfers.ValidateTransfer(ctx, req.TransferID, req.Approve, req.Notes, req.ValidatedBy)
	if err != nil {
		return nil, err
	}
	return &TransferResult{Transfer: transfer}, nil
}

func (s *appService) DispatchTransfer(ctx context.Context, id int) (*TransferResult, error) {
	transfer, err := s.transfers.DispatchTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TransferResult{Transfer: transfer}, nil
}

func (s *appService) ReceiveTransfer(ctx context.Context, req ReceiveTransferRequest) (*TransferResult, error) {
	lines := make([]core.ReceivedLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.ReceivedLine{ItemID: l.ItemID, QtyReceived: l.QtyReceived}
	}
	transfer, err := s.transfers.ReceiveTransfer(ctx, req.TransferID, lines, req.ReceivedBy)
	if err != nil {
		return nil, err
	}
	return &TransferResult{Transfer: transfer}, nil
}

func (s *appService) CancelTransfer(ctx context.Context, id int) (*TransferResult, error) {
	transfer, err := s.transfers.CancelTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TransferResult{Transfer: transfer}, nil
}

func (s *appService) DeleteTransfer(ctx context.Context, id int) error {
	return s.transfers.DeleteTransfer(ctx, id)
}

func (s *appService) GetTransfer(ctx context.Context, id int) (*TransferResult, error) {
	transfer, err := s.transfers.GetTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TransferResult{Transfer: transfer}, nil
}

func (s *appService) ListTransfers(ctx context.Context) (*TransferListResult, error) {
	transfers, err := s.transfers.ListTransfers(ctx)
	if err != nil {
		return nil, err
	}
	return &TransferListResult{Transfers: transfers}, nil
}

func (s *appService) ListPendingValidation(ctx context.Context) (*TransferListResult, error) {
	transfers, err := s.transfers.ListPendingValidation(ctx)
	if err != nil {
		return nil, err
	}
	return &TransferListResult{Transfers: transfers}, nil
}

// Checkout rebuilds the cart server-side so prices come from the catalog,
// never from the caller.
func (s *appService) Checkout(ctx context.Context, req CheckoutRequest) (*TransactionResult, error) {
	var cart core.Cart
	for _, line := range req.Lines {
		product, err := s.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		cart.Add(*product)
		cart.SetQuantity(product.ID, line.Quantity)
	}

	transaction, err := s.sales.Checkout(ctx, cart.Lines, req.CashierID)
	if err != nil {
		return nil, err
	}
	return &TransactionResult{Transaction: transaction}, nil
}

func (s *appService) ListTransactions(ctx context.Context, from, to *time.Time) (*TransactionListResult, error) {
	var (
		transactions []core.Transaction
		err          error
	)
	if from != nil || to != nil {
		start := time.Time{}
		if from != nil {
			start = *from
		}
		end := time.Now().AddDate(100, 0, 0)
		if to != nil {
			end = *to
		}
		transactions, err = s.sales.ListTransactionsByDateRange(ctx, start, end)
	} else {
		transactions, err = s.sales.ListTransactions(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &TransactionListResult{Transactions: transactions}, nil
}

func (s *appService) SignUp(ctx context.Context, email, password string) (*SessionResult, error) {
	user, err := s.profiles.CreateUser(ctx, email, password)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.EnsureProfile(ctx, user)
	if err != nil {
		return nil, err
	}
	return &SessionResult{User: user, Profile: profile}, nil
}

func (s *appService) SignIn(ctx context.Context, email, password string) (*SessionResult, error) {
	user, err := s.profiles.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.EnsureProfile(ctx, user)
	if err != nil {
		return nil, err
	}
	return &SessionResult{User: user, Profile: profile}, nil
}

func (s *appService) GetProfile(ctx context.Context, userID int) (*ProfileResult, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileResult{Profile: profile}, nil
}

func (s *appService) ListProfiles(ctx context.Context) (*ProfileListResult, error) {
	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	return &ProfileListResult{Profiles: profiles}, nil
}

func (s *appService) AssignRole(ctx context.Context, userID int, role string) (*ProfileResult, error) {
	profile, err := s.profiles.SetRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	return &ProfileResult{Profile: profile}, nil
}

func (s *appService) DeleteAccount(ctx context.Context, userID int) error {
	return s.profiles.DeleteUser(ctx, userID)
}

func (s *appService) GetDashboard(ctx context.Context) (*DashboardResult, error) {
	metrics, err := s.reporting.DashboardMetrics(ctx)
	if err != nil {
		return nil, err
	}
	return &DashboardResult{Metrics: metrics}, nil
}

func (s *appService) WatchStock(productID int) (<-chan core.StockUpdate, func()) {
	return s.watcher.Watch(productID)
}
