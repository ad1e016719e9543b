package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SalesService records point-of-sale checkouts and serves sales history.
type SalesService interface {
	// Checkout turns a cart into a completed transaction. Stock for every
	// line is validated and deducted in one database transaction; any
	// shortfall aborts the whole sale.
	Checkout(ctx context.Context, lines []CartLine, cashierID int) (*Transaction, error)

	GetTransaction(ctx context.Context, id int) (*Transaction, error)
	ListTransactions(ctx context.Context) ([]Transaction, error)
	// ListTransactionsByDateRange returns transactions with a sale date in
	// [from, to), newest first.
	ListTransactionsByDateRange(ctx context.Context, from, to time.Time) ([]Transaction, error)
}

type salesService struct {
	pool      *pgxpool.Pool
	watcher   *StockWatcher
	publisher StockPublisher
	logger    *zap.Logger
}

// NewSalesService constructs a SalesService backed by PostgreSQL.
func NewSalesService(pool *pgxpool.Pool, watcher *StockWatcher, publisher StockPublisher, logger *zap.Logger) SalesService {
	return &salesService{pool: pool, watcher: watcher, publisher: publisher, logger: logger}
}

func (s *salesService) Checkout(ctx context.Context, lines []CartLine, cashierID int) (*Transaction, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range lines {
		if line.ProductID == 0 || line.Quantity <= 0 {
			return nil, validationf("all cart lines must have valid quantities")
		}
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var txID int
	err = tx.QueryRow(ctx, `
		INSERT INTO transactions (total, cashier_id, status)
		VALUES ($1, $2, 'completed')
		RETURNING id
	`, total, cashierID).Scan(&txID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	// quantities holds the post-sale aggregate stock for watcher/event
	// notification after commit.
	quantities := map[int]int{}
	for _, line := range lines {
		warehouse, remaining, err := deductStock(ctx, tx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		quantities[line.ProductID] = remaining

		if _, err := tx.Exec(ctx, `
			INSERT INTO transaction_items (transaction_id, product_id, quantity, price, warehouse_name)
			VALUES ($1, $2, $3, $4, $5)
		`, txID, line.ProductID, line.Quantity, line.Price, warehouse); err != nil {
			return nil, fmt.Errorf("failed to create transaction item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}

	for productID, quantity := range quantities {
		if s.watcher != nil {
			s.watcher.Notify(productID, quantity)
		}
		if s.publisher != nil {
			s.publisher.StockChanged(ctx, productID, quantity, "sale")
		}
	}
	if s.logger != nil {
		s.logger.Info("sale completed",
			zap.Int("transaction_id", txID),
			zap.Int("cashier_id", cashierID),
			zap.String("total", total.String()),
			zap.Int("lines", len(lines)))
	}
	return s.GetTransaction(ctx, txID)
}

// deductStock removes qty units of a product, drawing down the per-warehouse
// breakdown in warehouse-name order until the quantity is covered. The
// aggregate products.stock row is the authority; the breakdown may lag it for
// products created before per-warehouse tracking. Returns the first supplying
// warehouse name and the remaining aggregate stock.
func deductStock(ctx context.Context, tx pgx.Tx, productID, qty int) (string, int, error) {
	var stock int
	var name string
	err := tx.QueryRow(ctx, "SELECT stock, name FROM products WHERE id = $1 FOR UPDATE", productID).Scan(&stock, &name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", 0, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return "", 0, fmt.Errorf("failed to lock product %d: %w", productID, err)
	}
	if stock < qty {
		return "", 0, fmt.Errorf("%s: %w", name, ErrInsufficientStock)
	}

	rows, err := tx.Query(ctx, `
		SELECT warehouse_name, quantity FROM product_stocks
		WHERE product_id = $1 AND quantity > 0
		ORDER BY warehouse_name
		FOR UPDATE
	`, productID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read stock breakdown: %w", err)
	}
	type slot struct {
		warehouse string
		quantity  int
	}
	var slots []slot
	for rows.Next() {
		var sl slot
		if err := rows.Scan(&sl.warehouse, &sl.quantity); err != nil {
			rows.Close()
			return "", 0, fmt.Errorf("failed to scan stock breakdown: %w", err)
		}
		slots = append(slots, sl)
	}
	rows.Close()
	if rows.Err() != nil {
		return "", 0, fmt.Errorf("failed to read stock breakdown: %w", rows.Err())
	}

	firstWarehouse := ""
	need := qty
	for _, sl := range slots {
		if need == 0 {
			break
		}
		take := sl.quantity
		if take > need {
			take = need
		}
		if _, err := tx.Exec(ctx, `
			UPDATE product_stocks SET quantity = quantity - $1
			WHERE product_id = $2 AND warehouse_name = $3
		`, take, productID, sl.warehouse); err != nil {
			return "", 0, fmt.Errorf("failed to deduct warehouse stock: %w", err)
		}
		if firstWarehouse == "" {
			firstWarehouse = sl.warehouse
		}
		need -= take
	}
	if need > 0 && len(slots) > 0 {
		// The breakdown exists but cannot cover the aggregate. Keep the
		// two in sync by refusing rather than letting them diverge.
		return "", 0, fmt.Errorf("%s: %w", name, ErrInsufficientStock)
	}

	remaining := stock - qty
	if _, err := tx.Exec(ctx, "UPDATE products SET stock = $1, updated_at = NOW() WHERE id = $2", remaining, productID); err != nil {
		return "", 0, fmt.Errorf("failed to update aggregate stock: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE stock_levels SET quantity = $1, updated_at = NOW() WHERE product_id = $2
	`, remaining, productID); err != nil {
		return "", 0, fmt.Errorf("failed to update stock level record: %w", err)
	}
	return firstWarehouse, remaining, nil
}

func (s *salesService) GetTransaction(ctx context.Context, id int) (*Transaction, error) {
	var t Transaction
	err := s.pool.QueryRow(ctx, `
		SELECT id, total, sale_date, cashier_id, status, created_at
		FROM transactions WHERE id = $1
	`, id).Scan(&t.ID, &t.Total, &t.SaleDate, &t.CashierID, &t.Status, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch transaction %d: %w", id, err)
	}

	items, err := s.fetchItems(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return &t, nil
}

func (s *salesService) fetchItems(ctx context.Context, transactionID int) ([]TransactionItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ti.id, ti.product_id, p.name, ti.quantity, ti.price, ti.warehouse_name
		FROM transaction_items ti
		LEFT JOIN products p ON p.id = ti.product_id
		WHERE ti.transaction_id = $1
		ORDER BY ti.id
	`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction items: %w", err)
	}
	defer rows.Close()

	items := []TransactionItem{}
	for rows.Next() {
		var item TransactionItem
		var name *string
		if err := rows.Scan(&item.ID, &item.ProductID, &name, &item.Quantity, &item.Price, &item.WarehouseName); err != nil {
			return nil, fmt.Errorf("failed to scan transaction item: %w", err)
		}
		if name != nil {
			item.ProductName = *name
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *salesService) listWhere(ctx context.Context, where string, args ...any) ([]Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, total, sale_date, cashier_id, status, created_at
		FROM transactions `+where+` ORDER BY sale_date DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Total, &t.SaleDate, &t.CashierID, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", rows.Err())
	}
	rows.Close()

	for i := range transactions {
		items, err := s.fetchItems(ctx, transactions[i].ID)
		if err != nil {
			return nil, err
		}
		transactions[i].Items = items
	}
	return transactions, nil
}

func (s *salesService) ListTransactions(ctx context.Context) ([]Transaction, error) {
	return s.listWhere(ctx, "")
}

func (s *salesService) ListTransactionsByDateRange(ctx context.Context, from, to time.Time) ([]Transaction, error) {
	return s.listWhere(ctx, "WHERE sale_date >= $1 AND sale_date < $2", from, to)
}
