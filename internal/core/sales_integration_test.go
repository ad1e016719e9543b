package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"retail-ops/internal/core"
)

func TestSales_Checkout(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	seedWarehouses(t, pool)
	p := seedProduct(t, pool, "Espresso", 10, 5)

	svc := core.NewSalesService(pool, nil, nil, nil)

	var cart core.Cart
	cart.Add(*p)
	cart.SetQuantity(p.ID, 3)

	tx, err := svc.Checkout(ctx, cart.Lines, 42)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if tx.CashierID != 42 {
		t.Errorf("expected cashier 42, got %d", tx.CashierID)
	}
	if tx.Status != core.TransactionCompleted {
		t.Errorf("expected completed transaction, got %s", tx.Status)
	}
	want := decimal.RequireFromString("29.97")
	if !tx.Total.Equal(want) {
		t.Errorf("expected total %s, got %s", want, tx.Total)
	}
	if len(tx.Items) != 1 || tx.Items[0].Quantity != 3 {
		t.Errorf("unexpected items: %+v", tx.Items)
	}

	// Stock drops by 3 and the breakdown stays in sync with the aggregate.
	var aggregate int
	if err := pool.QueryRow(ctx, "SELECT stock FROM products WHERE id = $1", p.ID).Scan(&aggregate); err != nil {
		t.Fatalf("read aggregate: %v", err)
	}
	if aggregate != 12 {
		t.Errorf("expected aggregate 12 after sale, got %d", aggregate)
	}
	var breakdown int
	if err := pool.QueryRow(ctx, "SELECT COALESCE(SUM(quantity), 0) FROM product_stocks WHERE product_id = $1", p.ID).Scan(&breakdown); err != nil {
		t.Fatalf("read breakdown: %v", err)
	}
	if breakdown != aggregate {
		t.Errorf("breakdown sum %d diverged from aggregate %d", breakdown, aggregate)
	}
	var level int
	if err := pool.QueryRow(ctx, "SELECT quantity FROM stock_levels WHERE product_id = $1", p.ID).Scan(&level); err != nil {
		t.Fatalf("read stock level: %v", err)
	}
	if level != aggregate {
		t.Errorf("stock_levels %d diverged from aggregate %d", level, aggregate)
	}
}

func TestSales_CheckoutDrawsAcrossWarehouses(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	seedWarehouses(t, pool)
	p := seedProduct(t, pool, "Espresso", 4, 6)

	svc := core.NewSalesService(pool, nil, nil, nil)
	var cart core.Cart
	cart.Add(*p)
	cart.SetQuantity(p.ID, 7)

	if _, err := svc.Checkout(ctx, cart.Lines, 1); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	// Main Warehouse (4) is drained first in name order; the remaining 3
	// come out of North Branch.
	var mainQty, northQty int
	pool.QueryRow(ctx, "SELECT COALESCE(SUM(quantity),0) FROM product_stocks WHERE product_id = $1 AND warehouse_name = 'Main Warehouse'", p.ID).Scan(&mainQty)
	pool.QueryRow(ctx, "SELECT COALESCE(SUM(quantity),0) FROM product_stocks WHERE product_id = $1 AND warehouse_name = 'North Branch'", p.ID).Scan(&northQty)
	if mainQty != 0 || northQty != 3 {
		t.Errorf("expected 0/3 after cross-warehouse draw, got %d/%d", mainQty, northQty)
	}
}

func TestSales_CheckoutFailures(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	seedWarehouses(t, pool)
	p := seedProduct(t, pool, "Espresso", 2, 0)

	svc := core.NewSalesService(pool, nil, nil, nil)

	t.Run("EmptyCart", func(t *testing.T) {
		if _, err := svc.Checkout(ctx, nil, 1); !errors.Is(err, core.ErrEmptyCart) {
			t.Errorf("expected ErrEmptyCart, got %v", err)
		}
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		var cart core.Cart
		cart.Add(*p)
		cart.SetQuantity(p.ID, 5)
		if _, err := svc.Checkout(ctx, cart.Lines, 1); !errors.Is(err, core.ErrInsufficientStock) {
			t.Errorf("expected ErrInsufficientStock, got %v", err)
		}

		// Nothing was recorded.
		var count int
		pool.QueryRow(ctx, "SELECT COUNT(*) FROM transactions").Scan(&count)
		if count != 0 {
			t.Errorf("expected no transactions after failed checkout, got %d", count)
		}
		var stock int
		pool.QueryRow(ctx, "SELECT stock FROM products WHERE id = $1", p.ID).Scan(&stock)
		if stock != 2 {
			t.Errorf("expected stock unchanged at 2, got %d", stock)
		}
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		lines := []core.CartLine{{ProductID: 999999, Quantity: 1, Price: decimal.RequireFromString("1.00")}}
		if _, err := svc.Checkout(ctx, lines, 1); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestSales_ListByDateRange(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	seedWarehouses(t, pool)
	p := seedProduct(t, pool, "Espresso", 100, 0)

	svc := core.NewSalesService(pool, nil, nil, nil)
	var cart core.Cart
	cart.Add(*p)
	if _, err := svc.Checkout(ctx, cart.Lines, 1); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	now := time.Now()
	today, err := svc.ListTransactionsByDateRange(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListTransactionsByDateRange: %v", err)
	}
	if len(today) != 1 {
		t.Errorf("expected 1 transaction today, got %d", len(today))
	}

	yesterday, err := svc.ListTransactionsByDateRange(ctx, now.AddDate(0, 0, -2), now.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("ListTransactionsByDateRange: %v", err)
	}
	if len(yesterday) != 0 {
		t.Errorf("expected no transactions yesterday, got %d", len(yesterday))
	}
}
