package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductInput holds the fields required to create a product.
type ProductInput struct {
	Name     string
	Price    decimal.Decimal
	Category string
	SKU      string
	Stocks   []WarehouseStock
}

// ProductUpdate is a partial update. Nil fields are left unchanged; a nil
// Stocks slice leaves the per-warehouse breakdown and aggregate untouched.
type ProductUpdate struct {
	Name     *string
	Price    *decimal.Decimal
	Category *string
	SKU      *string
	Stocks   []WarehouseStock
}

// StockPublisher receives aggregate-stock changes for external fanout.
type StockPublisher interface {
	StockChanged(ctx context.Context, productID, quantity int, source string)
}

// CatalogService manages the product catalog. Every write that touches a
// product's stock also writes the parallel stock_levels record in the same
// transaction, so the aggregate can never drift from the breakdown.
type CatalogService interface {
	CreateProduct(ctx context.Context, input ProductInput) (*Product, error)
	GetProduct(ctx context.Context, id int) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ListProductsByCategory(ctx context.Context, category string) ([]Product, error)
	// ListLowStock returns products whose aggregate stock is below threshold.
	ListLowStock(ctx context.Context, threshold int) ([]Product, error)
	UpdateProduct(ctx context.Context, id int, update ProductUpdate) (*Product, error)
	DeleteProduct(ctx context.Context, id int) error
}

type catalogService struct {
	pool      *pgxpool.Pool
	watcher   *StockWatcher
	publisher StockPublisher
	logger    *zap.Logger
}

// NewCatalogService constructs a CatalogService backed by PostgreSQL.
// watcher and publisher may be nil; stock-change notification is then skipped.
func NewCatalogService(pool *pgxpool.Pool, watcher *StockWatcher, publisher StockPublisher, logger *zap.Logger) CatalogService {
	return &catalogService{pool: pool, watcher: watcher, publisher: publisher, logger: logger}
}

func validateProductInput(input ProductInput) error {
	if input.Name == "" {
		return validationf("product name is required")
	}
	if input.Price.IsNegative() {
		return validationf("valid price is required")
	}
	total := 0
	for _, s := range input.Stocks {
		if s.Quantity < 0 {
			return validationf("stock for warehouse %q cannot be negative", s.WarehouseName)
		}
		total += s.Quantity
	}
	if total <= 0 {
		return validationf("total stock across warehouses must be greater than 0")
	}
	return nil
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	// Aggregate stock is always computed here, never taken from the caller.
	totalStock := 0
	stocks := make([]WarehouseStock, 0, len(input.Stocks))
	for _, st := range input.Stocks {
		if st.Quantity == 0 {
			continue
		}
		stocks = append(stocks, st)
		totalStock += st.Quantity
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int
	err = tx.QueryRow(ctx, `
		INSERT INTO products (name, price, stock, category, sku)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, input.Name, input.Price, totalStock, input.Category, input.SKU).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	for _, st := range stocks {
		if _, err := tx.Exec(ctx, `
			INSERT INTO product_stocks (product_id, warehouse_name, quantity)
			VALUES ($1, $2, $3)
		`, id, st.WarehouseName, st.Quantity); err != nil {
			return nil, fmt.Errorf("failed to create product stock entry: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO stock_levels (product_id, quantity) VALUES ($1, $2)
	`, id, totalStock); err != nil {
		return nil, fmt.Errorf("failed to create stock level record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit product creation: %w", err)
	}

	s.notifyStock(ctx, id, totalStock, "product-create")
	return s.GetProduct(ctx, id)
}

func (s *catalogService) GetProduct(ctx context.Context, id int) (*Product, error) {
	var p Product
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, price, stock, category, sku, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Category, &p.SKU, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}

	stocks, err := s.fetchStocks(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Stocks = stocks
	return &p, nil
}

func (s *catalogService) fetchStocks(ctx context.Context, productID int) ([]WarehouseStock, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT warehouse_name, quantity
		FROM product_stocks
		WHERE product_id = $1
		ORDER BY warehouse_name
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query product stocks: %w", err)
	}
	defer rows.Close()

	stocks := []WarehouseStock{}
	for rows.Next() {
		var st WarehouseStock
		if err := rows.Scan(&st.WarehouseName, &st.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan product stock: %w", err)
		}
		stocks = append(stocks, st)
	}
	return stocks, nil
}

func (s *catalogService) listProducts(ctx context.Context, where string, args ...any) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, price, stock, category, sku, created_at, updated_at
		FROM products `+where+`
		ORDER BY name
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Category, &p.SKU, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("failed to read products: %w", rows.Err())
	}

	for i := range products {
		stocks, err := s.fetchStocks(ctx, products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].Stocks = stocks
	}
	return products, nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]Product, error) {
	return s.listProducts(ctx, "")
}

func (s *catalogService) ListProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	return s.listProducts(ctx, "WHERE category = $1", category)
}

func (s *catalogService) ListLowStock(ctx context.Context, threshold int) ([]Product, error) {
	return s.listProducts(ctx, "WHERE stock < $1", threshold)
}

func (s *catalogService) UpdateProduct(ctx context.Context, id int, update ProductUpdate) (*Product, error) {
	if update.Name != nil && *update.Name == "" {
		return nil, validationf("product name is required")
	}
	if update.Price != nil && update.Price.IsNegative() {
		return nil, validationf("valid price is required")
	}
	for _, st := range update.Stocks {
		if st.Quantity < 0 {
			return nil, validationf("stock for warehouse %q cannot be negative", st.WarehouseName)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current Product
	err = tx.QueryRow(ctx, `
		SELECT name, price, category, sku FROM products WHERE id = $1 FOR UPDATE
	`, id).Scan(&current.Name, &current.Price, &current.Category, &current.SKU)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}

	name, price, category, sku := current.Name, current.Price, current.Category, current.SKU
	if update.Name != nil {
		name = *update.Name
	}
	if update.Price != nil {
		price = *update.Price
	}
	if update.Category != nil {
		category = *update.Category
	}
	if update.SKU != nil {
		sku = *update.SKU
	}

	if _, err := tx.Exec(ctx, `
		UPDATE products
		SET name = $1, price = $2, category = $3, sku = $4, updated_at = NOW()
		WHERE id = $5
	`, name, price, category, sku, id); err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}

	var newTotal *int
	if update.Stocks != nil {
		total := 0
		if _, err := tx.Exec(ctx, "DELETE FROM product_stocks WHERE product_id = $1", id); err != nil {
			return nil, fmt.Errorf("failed to clear product stocks: %w", err)
		}
		for _, st := range update.Stocks {
			if st.Quantity == 0 {
				continue
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO product_stocks (product_id, warehouse_name, quantity)
				VALUES ($1, $2, $3)
			`, id, st.WarehouseName, st.Quantity); err != nil {
				return nil, fmt.Errorf("failed to update product stock entry: %w", err)
			}
			total += st.Quantity
		}

		// Aggregate and the parallel stock_levels record move together.
		if _, err := tx.Exec(ctx, "UPDATE products SET stock = $1 WHERE id = $2", total, id); err != nil {
			return nil, fmt.Errorf("failed to update aggregate stock: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE stock_levels SET quantity = $1, updated_at = NOW() WHERE product_id = $2
		`, total, id); err != nil {
			return nil, fmt.Errorf("failed to update stock level record: %w", err)
		}
		newTotal = &total
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit product update: %w", err)
	}

	if newTotal != nil {
		s.notifyStock(ctx, id, *newTotal, "product-update")
	}
	return s.GetProduct(ctx, id)
}

func (s *catalogService) DeleteProduct(ctx context.Context, id int) error {
	// product_stocks and stock_levels cascade with the product row, so the
	// whole group disappears in one statement.
	tag, err := s.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *catalogService) notifyStock(ctx context.Context, productID, quantity int, source string) {
	if s.watcher != nil {
		s.watcher.Notify(productID, quantity)
	}
	if s.publisher != nil {
		s.publisher.StockChanged(ctx, productID, quantity, source)
	}
	if s.logger != nil {
		s.logger.Debug("stock changed",
			zap.Int("product_id", productID),
			zap.Int("quantity", quantity),
			zap.String("source", source))
	}
}
