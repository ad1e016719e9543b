package core_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"retail-ops/internal/core"
)

// setupTestDB connects to the dedicated test database and resets every
// table. Set TEST_DATABASE_URL (with migrations applied) to run the
// integration tests; without it they skip.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE transfer_items, transfers, transfer_sequences, stock_movements,
			transaction_items, transactions, product_stocks, stock_levels, products,
			categories, warehouses, profiles, users CASCADE;
	`)
	if err != nil {
		t.Fatalf("Failed to reset test database: %v", err)
	}

	return pool
}

// seedWarehouses inserts two active warehouses and returns their IDs.
func seedWarehouses(t *testing.T, pool *pgxpool.Pool) (int, int) {
	t.Helper()
	ctx := context.Background()

	svc := core.NewWarehouseService(pool)
	main, err := svc.CreateWarehouse(ctx, core.WarehouseInput{
		Name: "Main Warehouse", Address: "1 Dock Rd", Capacity: 5000,
		Manager: "Priya", Status: core.WarehouseActive,
	})
	if err != nil {
		t.Fatalf("seed main warehouse: %v", err)
	}
	north, err := svc.CreateWarehouse(ctx, core.WarehouseInput{
		Name: "North Branch", Address: "9 Hill St", Capacity: 1200,
		Manager: "Dario", Status: core.WarehouseActive,
	})
	if err != nil {
		t.Fatalf("seed north warehouse: %v", err)
	}
	return main.ID, north.ID
}

// seedProduct creates a product stocked in the two seeded warehouses.
func seedProduct(t *testing.T, pool *pgxpool.Pool, name string, mainQty, northQty int) *core.Product {
	t.Helper()
	ctx := context.Background()

	svc := core.NewCatalogService(pool, nil, nil, nil)
	product, err := svc.CreateProduct(ctx, core.ProductInput{
		Name:     name,
		Price:    decimal.RequireFromString("9.99"),
		Category: "General",
		SKU:      "SKU-" + name,
		Stocks: []core.WarehouseStock{
			{WarehouseName: "Main Warehouse", Quantity: mainQty},
			{WarehouseName: "North Branch", Quantity: northQty},
		},
	})
	if err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return product
}
