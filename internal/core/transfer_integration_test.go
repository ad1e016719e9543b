package core_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"retail-ops/internal/core"
)

var (
	testStaff = core.PersonRef{UserID: 1, Name: "Dario", Role: "staff"}
	testOwner = core.PersonRef{UserID: 2, Name: "Maya", Role: "owner"}
)

func transferInput(sourceID, destinationID int, items []core.TransferItemInput) core.TransferInput {
	return core.TransferInput{
		SourceID:             sourceID,
		DestinationID:        destinationID,
		Priority:             core.PriorityHigh,
		ExpectedDeliveryDate: time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		Notes:                "restock run",
		Items:                items,
	}
}

func warehouseQty(t *testing.T, pool *pgxpool.Pool, productID int, warehouse string) int {
	t.Helper()
	var qty int
	err := pool.QueryRow(context.Background(),
		"SELECT COALESCE(SUM(quantity), 0) FROM product_stocks WHERE product_id = $1 AND warehouse_name = $2",
		productID, warehouse).Scan(&qty)
	if err != nil {
		t.Fatalf("read warehouse quantity: %v", err)
	}
	return qty
}

func TestTransfer_CreateAssignsSequentialNumbers(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	mainID, northID := seedWarehouses(t, pool)
	p := seedProduct(t, pool, "Espresso Beans", 50, 10)

	svc := core.NewTransferService(pool, nil, nil, nil)
	items := []core.TransferItemInput{{ProductID: p.ID, Quantity: 10}}

	first, err := svc.CreateTransfer(ctx, transferInput(mainID, northID, items), testStaff)
	if err != nil {
		t.Fatalf("CreateTransfer: %v", err)
	}

	year := time.Now().Year()
	if want := fmt.Sprintf("TRF-%d-0001", year); first.TransferNumber != want {
		t.Errorf("expected transfer number %s, got %s", want, first.TransferNumber)
	}
	if first.Status != core.StatusAwaitingValidation {
		t.Errorf("expected status awaiting-validation, got %s", first.Status)
	}
	if first.TotalItems != 1 || first.TotalQuantity != 10 {
		t.Errorf("expected totals 1/10, got %d/%d", first.TotalItems, first.TotalQuantity)
	}
	if first.SourceLocation.Name != "Main Warehouse" || first.DestinationLocation.Name != "North Branch" {
		t.Errorf("unexpected location snapshot: %s -> %s",
			first.SourceLocation.Name, first.DestinationLocation.Name)
	}
	if len(first.Items) != 1 || first.Items[0].CurrentStock != 60 {
		t.Errorf("expected snapshotted current stock 60, got %+v", first.Items)
	}
	if first.RequestedBy != testStaff {
		t.Errorf("expected requester %+v, got %+v", testStaff, first.RequestedBy)
	}

	second, err := svc.CreateTransfer(ctx, transferInput(mainID, northID, items), testStaff)
	if err != nil {
		t.Fatalf("CreateTransfer second: %v", err)
	}
	if want := fmt.Sprintf("TRF-%d-0002", year); second.TransferNumber != want {
		t.Errorf("expected transfer number %s, got %s", want, second.TransferNumber)
	}
}

func TestTransfer_CreateValidation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	mainID, northID := seedWarehouses(t, pool)
	p := seedProduct(t, pool, "Beans", 50, 10)

	svc := core.NewTransferService(pool, nil, nil, nil)
	items := []core.TransferItemInput{{ProductID: p.ID, Quantity: 5}}

	tests := []struct {
		name  string
		input core.TransferInput
	}{
		{"same source and destination", transferInput(mainID, mainID, items)},
		{"missing source", transferInput(0, northID, items)},
		{"no items", transferInput(mainID, northID, nil)},
		{"zero quantity item", transferInput(mainID, northID, []core.TransferItemInput{{ProductID: p.ID, Quantity: 0}})},
		{"bad date", func() core.TransferInput {
			in := transferInput(mainID, northID, items)
			in.ExpectedDeliveryDate = "next tuesday"
			return in
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateTransfer(ctx, tt.input, testStaff); !core.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	t.Run("unknown warehouse", func(t *testing.T) {
		_, err := svc.CreateTransfer(ctx, transferInput(mainID, 999999, items), testStaff)
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestTransfer_FullLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	mainID, northID := seedWarehouses(t, pool)
	p := seedProduct(t, pool, "Beans", 50, 10)

	svc := core.NewTransferService(pool, nil, nil, nil)
	created, err := svc.CreateTransfer(ctx, transferInput(mainID, northID,
		[]core.TransferItemInput{{ProductID: p.ID, Quantity: 10}}), testStaff)
	if err != nil {
		t.Fatalf("CreateTransfer: %v", err)
	}

	t.Run("Approve", func(t *testing.T) {
		approved, err := svc.ValidateTransfer(ctx, created.ID, true, "looks right", testOwner)
		if err != nil {
			t.Fatalf("ValidateTransfer: %v", err)
		}
		if approved.Status != core.StatusApproved {
			t.Errorf("expected approved, got %s", approved.Status)
		}
		if approved.ValidatedBy == nil || approved.ValidatedBy.Name != "Maya" {
			t.Errorf("expected validator Maya, got %+v", approved.ValidatedBy)
		}
		if approved.ValidatedBy.Notes != "looks right" {
			t.Errorf("expected validation notes, got %q", approved.ValidatedBy.Notes)
		}
	})

	t.Run("ApproveTwiceConflicts", func(t *testing.T) {
		_, err := svc.ValidateTransfer(ctx, created.ID, true, "", testOwner)
		if !errors.Is(err, core.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("Dispatch", func(t *testing.T) {
		dispatched, err := svc.DispatchTransfer(ctx, created.ID)
		if err != nil {
			t.Fatalf("DispatchTransfer: %v", err)
		}
		if dispatched.Status != core.StatusInTransit {
			t.Errorf("expected in-transit, got %s", dispatched.Status)
		}
	})

	itemID := created.Items[0].ID

	t.Run("PartialReceiveMovesStock", func(t *testing.T) {
		partial, err := svc.ReceiveTransfer(ctx, created.ID,
			[]core.ReceivedLine{{ItemID: itemID, QtyReceived: 4}}, testStaff)
		if err != nil {
			t.Fatalf("ReceiveTransfer: %v", err)
		}
		if partial.Status != core.StatusPartiallyReceived {
			t.Errorf("expected partially-received, got %s", partial.Status)
		}
		if partial.Items[0].QtyReceived != 4 {
			t.Errorf("expected qty_received 4, got %d", partial.Items[0].QtyReceived)
		}
		if got := warehouseQty(t, pool, p.ID, "Main Warehouse"); got != 46 {
			t.Errorf("expected source stock 46, got %d", got)
		}
		if got := warehouseQty(t, pool, p.ID, "North Branch"); got != 14 {
			t.Errorf("expected destination stock 14, got %d", got)
		}

		// Warehouse-to-warehouse moves leave the aggregate unchanged.
		var aggregate int
		if err := pool.QueryRow(ctx, "SELECT stock FROM products WHERE id = $1", p.ID).Scan(&aggregate); err != nil {
			t.Fatalf("read aggregate: %v", err)
		}
		if aggregate != 60 {
			t.Errorf("expected aggregate 60, got %d", aggregate)
		}

		var movements int
		if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM stock_movements WHERE transfer_id = $1", created.ID).Scan(&movements); err != nil {
			t.Fatalf("count movements: %v", err)
		}
		if movements != 2 {
			t.Errorf("expected an out and an in movement, got %d", movements)
		}
	})

	t.Run("OverReceiveRejected", func(t *testing.T) {
		_, err := svc.ReceiveTransfer(ctx, created.ID,
			[]core.ReceivedLine{{ItemID: itemID, QtyReceived: 7}}, testStaff)
		if !core.IsValidation(err) {
			t.Errorf("expected validation error for over-receipt, got %v", err)
		}
	})

	t.Run("FinalReceiveCompletes", func(t *testing.T) {
		completed, err := svc.ReceiveTransfer(ctx, created.ID,
			[]core.ReceivedLine{{ItemID: itemID, QtyReceived: 6}}, testStaff)
		if err != nil {
			t.Fatalf("ReceiveTransfer: %v", err)
		}
		if completed.Status != core.StatusCompleted {
			t.Errorf("expected completed, got %s", completed.Status)
		}
		if completed.ReceivedBy == nil || completed.ReceivedBy.Name != "Dario" {
			t.Errorf("expected receiver Dario, got %+v", completed.ReceivedBy)
		}
		if completed.ActualDeliveryDate == nil {
			t.Error("expected actual delivery date to be stamped")
		}
		if got := warehouseQty(t, pool, p.ID, "North Branch"); got != 20 {
			t.Errorf("expected destination stock 20, got %d", got)
		}
	})

	t.Run("TerminalRefusesDeletion", func(t *testing.T) {
		if err := svc.DeleteTransfer(ctx, created.ID); !core.IsValidation(err) {
			t.Errorf("expected validation error deleting completed transfer, got %v", err)
		}
	})
}

func TestTransfer_InsufficientSourceStockAbortsReceive(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	mainID, northID := seedWarehouses(t, pool)
	p := seedProduct(t, pool, "Beans", 3, 0)

	svc := core.NewTransferService(pool, nil, nil, nil)
	created, err := svc.CreateTransfer(ctx, transferInput(mainID, northID,
		[]core.TransferItemInput{{ProductID: p.ID, Quantity: 5}}), testStaff)
	if err != nil {
		t.Fatalf("CreateTransfer: %v", err)
	}
	if _, err := svc.ValidateTransfer(ctx, created.ID, true, "", testOwner); err != nil {
		t.Fatalf("ValidateTransfer: %v", err)
	}
	if _, err := svc.DispatchTransfer(ctx, created.ID); err != nil {
		t.Fatalf("DispatchTransfer: %v", err)
	}

	_, err = svc.ReceiveTransfer(ctx, created.ID,
		[]core.ReceivedLine{{ItemID: created.Items[0].ID, QtyReceived: 5}}, testStaff)
	if !errors.Is(err, core.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// The whole receive rolls back: status and stock are untouched.
	after, err := svc.GetTransfer(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTransfer: %v", err)
	}
	if after.Status != core.StatusInTransit {
		t.Errorf("expected status in-transit after failed receive, got %s", after.Status)
	}
	if after.Items[0].QtyReceived != 0 {
		t.Errorf("expected qty_received 0, got %d", after.Items[0].QtyReceived)
	}
	if got := warehouseQty(t, pool, p.ID, "Main Warehouse"); got != 3 {
		t.Errorf("expected source stock unchanged at 3, got %d", got)
	}
}

func TestTransfer_RejectAndCancel(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	mainID, northID := seedWarehouses(t, pool)
	p := seedProduct(t, pool, "Beans", 50, 10)

	svc := core.NewTransferService(pool, nil, nil, nil)
	items := []core.TransferItemInput{{ProductID: p.ID, Quantity: 5}}

	t.Run("Reject", func(t *testing.T) {
		created, err := svc.CreateTransfer(ctx, transferInput(mainID, northID, items), testStaff)
		if err != nil {
			t.Fatalf("CreateTransfer: %v", err)
		}
		rejected, err := svc.ValidateTransfer(ctx, created.ID, false, "wrong branch", testOwner)
		if err != nil {
			t.Fatalf("ValidateTransfer: %v", err)
		}
		if rejected.Status != core.StatusRejected {
			t.Errorf("expected rejected, got %s", rejected.Status)
		}
		if rejected.ValidatedBy == nil || rejected.ValidatedBy.Notes != "wrong branch" {
			t.Errorf("expected rejection notes stamped, got %+v", rejected.ValidatedBy)
		}
		// Rejection is terminal.
		if _, err := svc.CancelTransfer(ctx, created.ID); !errors.Is(err, core.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition cancelling rejected transfer, got %v", err)
		}
	})

	t.Run("CancelBeforeValidation", func(t *testing.T) {
		created, err := svc.CreateTransfer(ctx, transferInput(mainID, northID, items), testStaff)
		if err != nil {
			t.Fatalf("CreateTransfer: %v", err)
		}
		cancelled, err := svc.CancelTransfer(ctx, created.ID)
		if err != nil {
			t.Fatalf("CancelTransfer: %v", err)
		}
		if cancelled.Status != core.StatusCancelled {
			t.Errorf("expected cancelled, got %s", cancelled.Status)
		}
	})

	t.Run("DeleteNonTerminal", func(t *testing.T) {
		created, err := svc.CreateTransfer(ctx, transferInput(mainID, northID, items), testStaff)
		if err != nil {
			t.Fatalf("CreateTransfer: %v", err)
		}
		if err := svc.DeleteTransfer(ctx, created.ID); err != nil {
			t.Fatalf("DeleteTransfer: %v", err)
		}
		if _, err := svc.GetTransfer(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})
}

func TestTransfer_EditRules(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	mainID, northID := seedWarehouses(t, pool)
	p := seedProduct(t, pool, "Beans", 50, 10)
	p2 := seedProduct(t, pool, "Cups", 200, 0)

	svc := core.NewTransferService(pool, nil, nil, nil)
	created, err := svc.CreateTransfer(ctx, transferInput(mainID, northID,
		[]core.TransferItemInput{{ProductID: p.ID, Quantity: 5}}), testStaff)
	if err != nil {
		t.Fatalf("CreateTransfer: %v", err)
	}

	t.Run("AwaitingValidationNotEditable", func(t *testing.T) {
		_, err := svc.UpdateTransfer(ctx, created.ID, transferInput(mainID, northID,
			[]core.TransferItemInput{{ProductID: p.ID, Quantity: 9}}))
		if !core.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("ApprovedEditRecomputesTotals", func(t *testing.T) {
		if _, err := svc.ValidateTransfer(ctx, created.ID, true, "", testOwner); err != nil {
			t.Fatalf("ValidateTransfer: %v", err)
		}
		updated, err := svc.UpdateTransfer(ctx, created.ID, transferInput(mainID, northID,
			[]core.TransferItemInput{
				{ProductID: p.ID, Quantity: 8},
				{ProductID: p2.ID, Quantity: 20},
			}))
		if err != nil {
			t.Fatalf("UpdateTransfer: %v", err)
		}
		if updated.TotalItems != 2 || updated.TotalQuantity != 28 {
			t.Errorf("expected totals 2/28, got %d/%d", updated.TotalItems, updated.TotalQuantity)
		}
		if updated.Status != core.StatusApproved {
			t.Errorf("editing must not change status, got %s", updated.Status)
		}
	})

	t.Run("ListPendingValidation", func(t *testing.T) {
		pending, err := svc.CreateTransfer(ctx, transferInput(mainID, northID,
			[]core.TransferItemInput{{ProductID: p.ID, Quantity: 1}}), testStaff)
		if err != nil {
			t.Fatalf("CreateTransfer: %v", err)
		}
		queue, err := svc.ListPendingValidation(ctx)
		if err != nil {
			t.Fatalf("ListPendingValidation: %v", err)
		}
		if len(queue) != 1 || queue[0].ID != pending.ID {
			t.Errorf("expected only the new transfer in the queue, got %d entries", len(queue))
		}
	})
}
