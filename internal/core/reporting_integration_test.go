package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"retail-ops/internal/core"
)

func TestReporting_DashboardMetrics(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	mainID, northID := seedWarehouses(t, pool)

	seedProduct(t, pool, "Rare Syrup", 2, 1)
	stocked := seedProduct(t, pool, "House Blend", 80, 40)

	transfers := core.NewTransferService(pool, nil, nil, nil)
	sales := core.NewSalesService(pool, nil, nil, nil)
	reporting := core.NewReportingService(pool, transfers, 10)

	input := core.TransferInput{
		SourceID:             mainID,
		DestinationID:        northID,
		Priority:             core.PriorityUrgent,
		ExpectedDeliveryDate: time.Now().AddDate(0, 0, 3).Format("2006-01-02"),
		Items:                []core.TransferItemInput{{ProductID: stocked.ID, Quantity: 5}},
	}

	pending, err := transfers.CreateTransfer(ctx, input, testStaff)
	if err != nil {
		t.Fatalf("CreateTransfer pending: %v", err)
	}
	approvedT, err := transfers.CreateTransfer(ctx, input, testStaff)
	if err != nil {
		t.Fatalf("CreateTransfer approved: %v", err)
	}
	if _, err := transfers.ValidateTransfer(ctx, approvedT.ID, true, "go ahead", testOwner); err != nil {
		t.Fatalf("ValidateTransfer: %v", err)
	}

	var cart core.Cart
	cart.Add(*stocked)
	cart.SetQuantity(stocked.ID, 2)
	if _, err := sales.Checkout(ctx, cart.Lines, 1); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	m, err := reporting.DashboardMetrics(ctx)
	if err != nil {
		t.Fatalf("DashboardMetrics: %v", err)
	}

	if m.TotalProducts != 2 {
		t.Errorf("expected 2 products, got %d", m.TotalProducts)
	}
	if m.LowStockCount != 1 {
		t.Errorf("expected 1 low-stock product, got %d", m.LowStockCount)
	}
	if m.ActiveWarehouses != 2 {
		t.Errorf("expected 2 active warehouses, got %d", m.ActiveWarehouses)
	}
	if m.PendingTransfers != 1 {
		t.Errorf("expected 1 pending transfer, got %d", m.PendingTransfers)
	}
	if m.UrgentTransfers != 2 {
		t.Errorf("expected 2 open urgent transfers, got %d", m.UrgentTransfers)
	}
	if m.TransferStatuses[core.StatusAwaitingValidation] != 1 {
		t.Errorf("expected 1 awaiting-validation, got %d", m.TransferStatuses[core.StatusAwaitingValidation])
	}
	if m.TransferStatuses[core.StatusApproved] != 1 {
		t.Errorf("expected 1 approved, got %d", m.TransferStatuses[core.StatusApproved])
	}
	if m.TodaySalesCount != 1 {
		t.Errorf("expected 1 sale today, got %d", m.TodaySalesCount)
	}
	want := decimal.RequireFromString("19.98")
	if !m.TodaySalesTotal.Equal(want) {
		t.Errorf("expected today's total %s, got %s", want, m.TodaySalesTotal)
	}
	if len(m.RecentValidations) != 1 || m.RecentValidations[0].ID != approvedT.ID {
		t.Errorf("expected the approved transfer in recent validations, got %d entries", len(m.RecentValidations))
	}
	if m.PendingTransfers != 1 || pending.Status != core.StatusAwaitingValidation {
		t.Errorf("pending transfer accounting mismatch")
	}
}
