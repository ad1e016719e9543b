package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"retail-ops/internal/core"
)

func TestCatalog_CreateProduct(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	seedWarehouses(t, pool)

	svc := core.NewCatalogService(pool, nil, nil, nil)

	t.Run("AggregateEqualsBreakdownSum", func(t *testing.T) {
		p, err := svc.CreateProduct(ctx, core.ProductInput{
			Name:     "Espresso Beans 1kg",
			Price:    decimal.RequireFromString("18.50"),
			Category: "Coffee",
			SKU:      "ESP-1KG",
			Stocks: []core.WarehouseStock{
				{WarehouseName: "Main Warehouse", Quantity: 30},
				{WarehouseName: "North Branch", Quantity: 12},
			},
		})
		if err != nil {
			t.Fatalf("CreateProduct: %v", err)
		}
		if p.Stock != 42 {
			t.Errorf("expected aggregate stock 42, got %d", p.Stock)
		}
		if len(p.Stocks) != 2 {
			t.Errorf("expected 2 breakdown entries, got %d", len(p.Stocks))
		}

		// The parallel stock_levels record is written in the same transaction.
		var levelQty int
		if err := pool.QueryRow(ctx, "SELECT quantity FROM stock_levels WHERE product_id = $1", p.ID).Scan(&levelQty); err != nil {
			t.Fatalf("stock_levels record missing: %v", err)
		}
		if levelQty != 42 {
			t.Errorf("expected stock_levels quantity 42, got %d", levelQty)
		}
	})

	t.Run("ZeroQuantityEntriesDropped", func(t *testing.T) {
		p, err := svc.CreateProduct(ctx, core.ProductInput{
			Name:  "Filter Papers",
			Price: decimal.RequireFromString("3.20"),
			Stocks: []core.WarehouseStock{
				{WarehouseName: "Main Warehouse", Quantity: 8},
				{WarehouseName: "North Branch", Quantity: 0},
			},
		})
		if err != nil {
			t.Fatalf("CreateProduct: %v", err)
		}
		if len(p.Stocks) != 1 {
			t.Errorf("expected zero-quantity entry to be dropped, got %d entries", len(p.Stocks))
		}
	})

	t.Run("RejectsMissingName", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, core.ProductInput{Price: decimal.RequireFromString("1.00")})
		if !core.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("RejectsNegativePrice", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, core.ProductInput{
			Name: "Broken", Price: decimal.RequireFromString("-1.00"),
		})
		if !core.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestCatalog_UpdateProduct(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	seedWarehouses(t, pool)

	svc := core.NewCatalogService(pool, nil, nil, nil)
	p := seedProduct(t, pool, "Oat Milk 1L", 20, 5)

	t.Run("PartialUpdateLeavesStockAlone", func(t *testing.T) {
		newPrice := decimal.RequireFromString("2.75")
		updated, err := svc.UpdateProduct(ctx, p.ID, core.ProductUpdate{Price: &newPrice})
		if err != nil {
			t.Fatalf("UpdateProduct: %v", err)
		}
		if !updated.Price.Equal(newPrice) {
			t.Errorf("expected price 2.75, got %s", updated.Price)
		}
		if updated.Stock != 25 {
			t.Errorf("expected stock untouched at 25, got %d", updated.Stock)
		}
	})

	t.Run("StockReplacementRecomputesAggregate", func(t *testing.T) {
		updated, err := svc.UpdateProduct(ctx, p.ID, core.ProductUpdate{
			Stocks: []core.WarehouseStock{{WarehouseName: "Main Warehouse", Quantity: 7}},
		})
		if err != nil {
			t.Fatalf("UpdateProduct: %v", err)
		}
		if updated.Stock != 7 {
			t.Errorf("expected aggregate 7 after replacement, got %d", updated.Stock)
		}
		if len(updated.Stocks) != 1 {
			t.Errorf("expected 1 breakdown entry, got %d", len(updated.Stocks))
		}
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		name := "Ghost"
		_, err := svc.UpdateProduct(ctx, 999999, core.ProductUpdate{Name: &name})
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestCatalog_ListsAndDelete(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	seedWarehouses(t, pool)

	svc := core.NewCatalogService(pool, nil, nil, nil)
	low := seedProduct(t, pool, "Rare Syrup", 2, 1)
	seedProduct(t, pool, "House Blend", 80, 40)

	t.Run("ListLowStock", func(t *testing.T) {
		products, err := svc.ListLowStock(ctx, 10)
		if err != nil {
			t.Fatalf("ListLowStock: %v", err)
		}
		if len(products) != 1 || products[0].ID != low.ID {
			t.Errorf("expected only the low product, got %d results", len(products))
		}
	})

	t.Run("ListByCategory", func(t *testing.T) {
		products, err := svc.ListProductsByCategory(ctx, "General")
		if err != nil {
			t.Fatalf("ListProductsByCategory: %v", err)
		}
		if len(products) != 2 {
			t.Errorf("expected 2 products in General, got %d", len(products))
		}
		products, err = svc.ListProductsByCategory(ctx, "Nonexistent")
		if err != nil {
			t.Fatalf("ListProductsByCategory: %v", err)
		}
		if len(products) != 0 {
			t.Errorf("expected 0 products, got %d", len(products))
		}
	})

	t.Run("DeleteCascades", func(t *testing.T) {
		if err := svc.DeleteProduct(ctx, low.ID); err != nil {
			t.Fatalf("DeleteProduct: %v", err)
		}
		var count int
		if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM product_stocks WHERE product_id = $1", low.ID).Scan(&count); err != nil {
			t.Fatalf("count product_stocks: %v", err)
		}
		if count != 0 {
			t.Errorf("expected breakdown rows to cascade, found %d", count)
		}
		if _, err := svc.GetProduct(ctx, low.ID); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})
}

func TestWarehouse_Lifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	svc := core.NewWarehouseService(pool)

	w, err := svc.CreateWarehouse(ctx, core.WarehouseInput{
		Name: "South Depot", Capacity: 900, Manager: "Lena", Status: core.WarehouseActive,
	})
	if err != nil {
		t.Fatalf("CreateWarehouse: %v", err)
	}

	t.Run("InactiveExcludedFromActiveList", func(t *testing.T) {
		if _, err := svc.UpdateWarehouse(ctx, w.ID, core.WarehouseInput{
			Name: "South Depot", Capacity: 900, Manager: "Lena", Status: core.WarehouseInactive,
		}); err != nil {
			t.Fatalf("UpdateWarehouse: %v", err)
		}

		active, err := svc.ListActiveWarehouses(ctx)
		if err != nil {
			t.Fatalf("ListActiveWarehouses: %v", err)
		}
		for _, a := range active {
			if a.ID == w.ID {
				t.Error("inactive warehouse still listed as active")
			}
		}
		all, err := svc.ListWarehouses(ctx)
		if err != nil {
			t.Fatalf("ListWarehouses: %v", err)
		}
		if len(all) != 1 {
			t.Errorf("expected 1 warehouse in full list, got %d", len(all))
		}
	})

	t.Run("RejectsNegativeCapacity", func(t *testing.T) {
		_, err := svc.CreateWarehouse(ctx, core.WarehouseInput{
			Name: "Bad", Capacity: -1, Manager: "X", Status: core.WarehouseActive,
		})
		if !core.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestCategory_Lifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	svc := core.NewCategoryService(pool)

	c, err := svc.CreateCategory(ctx, "Beverages", "Drinks of every kind")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	if _, err := svc.CreateCategory(ctx, "", ""); !core.IsValidation(err) {
		t.Errorf("expected validation error for empty name, got %v", err)
	}

	updated, err := svc.UpdateCategory(ctx, c.ID, "Drinks", "Renamed")
	if err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if updated.Name != "Drinks" {
		t.Errorf("expected renamed category, got %s", updated.Name)
	}

	if err := svc.DeleteCategory(ctx, c.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	categories, err := svc.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 0 {
		t.Errorf("expected empty category list, got %d", len(categories))
	}
}
