package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// TransferInput holds the fields required to create or edit a transfer.
// Source and destination are warehouse IDs; the service snapshots them into
// embedded Locations at write time.
type TransferInput struct {
	TransferType         TransferType
	SourceID             int
	DestinationID        int
	Priority             TransferPriority
	ExpectedDeliveryDate string // YYYY-MM-DD
	Notes                string
	Items                []TransferItemInput
}

// TransferService owns the stock-transfer lifecycle. All status changes go
// through Transition; no caller mutates status directly.
type TransferService interface {
	// CreateTransfer validates the request and creates a transfer in
	// awaiting-validation with a freshly assigned transfer number.
	CreateTransfer(ctx context.Context, input TransferInput, requestedBy PersonRef) (*StockTransfer, error)

	// UpdateTransfer replaces route, dates, and items on an editable
	// transfer. Status is unchanged; totals are recomputed.
	UpdateTransfer(ctx context.Context, id int, input TransferInput) (*StockTransfer, error)

	// ValidateTransfer records the owner's decision on a transfer awaiting
	// validation: approve moves it to approved, decline to rejected. The
	// validator identity, role, timestamp, and notes are stamped either way.
	ValidateTransfer(ctx context.Context, id int, approve bool, notes string, validatedBy PersonRef) (*StockTransfer, error)

	// DispatchTransfer marks an approved transfer as in transit.
	DispatchTransfer(ctx context.Context, id int) (*StockTransfer, error)

	// ReceiveTransfer records goods arriving at the destination. Received
	// quantities move per-warehouse stock from source to destination
	// atomically with the status change; the whole call fails if source
	// stock is insufficient for any line. When every item is fully
	// received the transfer completes, otherwise it is partially-received.
	ReceiveTransfer(ctx context.Context, id int, lines []ReceivedLine, receivedBy PersonRef) (*StockTransfer, error)

	// CancelTransfer abandons any non-terminal transfer.
	CancelTransfer(ctx context.Context, id int) (*StockTransfer, error)

	// DeleteTransfer removes a non-terminal transfer outright.
	DeleteTransfer(ctx context.Context, id int) error

	GetTransfer(ctx context.Context, id int) (*StockTransfer, error)
	ListTransfers(ctx context.Context) ([]StockTransfer, error)
	// ListPendingValidation returns transfers awaiting an owner decision,
	// newest request first.
	ListPendingValidation(ctx context.Context) ([]StockTransfer, error)
}

type transferService struct {
	pool      *pgxpool.Pool
	watcher   *StockWatcher
	publisher StockPublisher
	logger    *zap.Logger
}

// NewTransferService constructs a TransferService backed by PostgreSQL.
func NewTransferService(pool *pgxpool.Pool, watcher *StockWatcher, publisher StockPublisher, logger *zap.Logger) TransferService {
	return &transferService{pool: pool, watcher: watcher, publisher: publisher, logger: logger}
}

func validateTransferInput(input TransferInput) error {
	if input.SourceID == 0 {
		return validationf("source warehouse is required")
	}
	if input.DestinationID == 0 {
		return validationf("destination warehouse is required")
	}
	if input.SourceID == input.DestinationID {
		return validationf("source and destination warehouses must be different")
	}
	if input.ExpectedDeliveryDate == "" {
		return validationf("expected delivery date is required")
	}
	if _, err := time.Parse("2006-01-02", input.ExpectedDeliveryDate); err != nil {
		return validationf("expected delivery date must be YYYY-MM-DD")
	}
	if len(input.Items) == 0 {
		return validationf("at least one product is required")
	}
	for _, item := range input.Items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return validationf("all products must have valid quantities")
		}
	}
	return nil
}

// snapshotLocation copies a warehouse into an embedded Location.
func snapshotLocation(ctx context.Context, tx pgx.Tx, warehouseID int) (Location, error) {
	var loc Location
	err := tx.QueryRow(ctx, `
		SELECT id, name, address FROM warehouses WHERE id = $1
	`, warehouseID).Scan(&loc.ID, &loc.Name, &loc.Address)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return loc, fmt.Errorf("warehouse %d: %w", warehouseID, ErrNotFound)
		}
		return loc, fmt.Errorf("failed to snapshot warehouse %d: %w", warehouseID, err)
	}
	loc.Type = LocationWarehouse
	return loc, nil
}

// nextTransferNumber assigns the next number in this year's sequence.
// The per-year counter replaces a random suffix so numbers cannot collide
// under concurrent creation.
func nextTransferNumber(ctx context.Context, tx pgx.Tx, year int) (string, error) {
	var seq int
	err := tx.QueryRow(ctx, `
		INSERT INTO transfer_sequences (year, last_value)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = transfer_sequences.last_value + 1
		RETURNING last_value
	`, year).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("failed to advance transfer sequence: %w", err)
	}
	return fmt.Sprintf("TRF-%d-%04d", year, seq), nil
}

func (s *transferService) CreateTransfer(ctx context.Context, input TransferInput, requestedBy PersonRef) (*StockTransfer, error) {
	if err := validateTransferInput(input); err != nil {
		return nil, err
	}
	if input.TransferType == "" {
		input.TransferType = WarehouseToWarehouse
	}
	if input.Priority == "" {
		input.Priority = PriorityMedium
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	source, err := snapshotLocation(ctx, tx, input.SourceID)
	if err != nil {
		return nil, err
	}
	destination, err := snapshotLocation(ctx, tx, input.DestinationID)
	if err != nil {
		return nil, err
	}

	number, err := nextTransferNumber(ctx, tx, time.Now().Year())
	if err != nil {
		return nil, err
	}

	totalQuantity := 0
	for _, item := range input.Items {
		totalQuantity += item.Quantity
	}

	var id int
	err = tx.QueryRow(ctx, `
		INSERT INTO transfers (
			transfer_number, transfer_type,
			source_id, source_name, source_type, source_address,
			destination_id, destination_name, destination_type, destination_address,
			expected_delivery_date,
			requested_by_id, requested_by_name, requested_by_role,
			status, priority, total_items, total_quantity, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id
	`, number, input.TransferType,
		source.ID, source.Name, source.Type, source.Address,
		destination.ID, destination.Name, destination.Type, destination.Address,
		input.ExpectedDeliveryDate,
		requestedBy.UserID, requestedBy.Name, requestedBy.Role,
		StatusAwaitingValidation, input.Priority, len(input.Items), totalQuantity, input.Notes,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create transfer: %w", err)
	}

	if err := insertTransferItems(ctx, tx, id, input.Items, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer creation: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("transfer created",
			zap.Int("transfer_id", id),
			zap.String("transfer_number", number),
			zap.Int("total_quantity", totalQuantity))
	}
	return s.GetTransfer(ctx, id)
}

// insertTransferItems writes the item lines, snapshotting each product's
// current aggregate stock. carried maps product ID to a previously received
// quantity to preserve across edits.
func insertTransferItems(ctx context.Context, tx pgx.Tx, transferID int, items []TransferItemInput, carried map[int]int) error {
	for _, item := range items {
		condition := item.Condition
		if condition == "" {
			condition = ConditionGood
		}

		var currentStock int
		err := tx.QueryRow(ctx, "SELECT stock FROM products WHERE id = $1", item.ProductID).Scan(&currentStock)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("product %d: %w", item.ProductID, ErrNotFound)
			}
			return fmt.Errorf("failed to read stock for product %d: %w", item.ProductID, err)
		}

		received := carried[item.ProductID]
		if received > item.Quantity {
			received = item.Quantity
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO transfer_items (transfer_id, product_id, quantity, current_stock, condition, qty_received)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, transferID, item.ProductID, item.Quantity, currentStock, condition, received); err != nil {
			return fmt.Errorf("failed to create transfer item: %w", err)
		}
	}
	return nil
}

func (s *transferService) UpdateTransfer(ctx context.Context, id int, input TransferInput) (*StockTransfer, error) {
	if err := validateTransferInput(input); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status TransferStatus
	err = tx.QueryRow(ctx, "SELECT status FROM transfers WHERE id = $1 FOR UPDATE", id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transfer %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch transfer %d: %w", id, err)
	}
	if !CanEdit(status) {
		return nil, validationf("transfer in status %q cannot be edited", status)
	}

	source, err := snapshotLocation(ctx, tx, input.SourceID)
	if err != nil {
		return nil, err
	}
	destination, err := snapshotLocation(ctx, tx, input.DestinationID)
	if err != nil {
		return nil, err
	}

	// Preserve received quantities for products that stay on the transfer.
	carried := map[int]int{}
	rows, err := tx.Query(ctx, "SELECT product_id, qty_received FROM transfer_items WHERE transfer_id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to read existing transfer items: %w", err)
	}
	for rows.Next() {
		var productID, received int
		if err := rows.Scan(&productID, &received); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan transfer item: %w", err)
		}
		carried[productID] = received
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, fmt.Errorf("failed to read existing transfer items: %w", rows.Err())
	}

	if _, err := tx.Exec(ctx, "DELETE FROM transfer_items WHERE transfer_id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to clear transfer items: %w", err)
	}
	if err := insertTransferItems(ctx, tx, id, input.Items, carried); err != nil {
		return nil, err
	}

	totalQuantity := 0
	for _, item := range input.Items {
		totalQuantity += item.Quantity
	}

	if input.TransferType == "" {
		input.TransferType = WarehouseToWarehouse
	}
	if input.Priority == "" {
		input.Priority = PriorityMedium
	}

	if _, err := tx.Exec(ctx, `
		UPDATE transfers SET
			transfer_type = $1,
			source_id = $2, source_name = $3, source_type = $4, source_address = $5,
			destination_id = $6, destination_name = $7, destination_type = $8, destination_address = $9,
			expected_delivery_date = $10, priority = $11, notes = $12,
			total_items = $13, total_quantity = $14, updated_at = NOW()
		WHERE id = $15
	`, input.TransferType,
		source.ID, source.Name, source.Type, source.Address,
		destination.ID, destination.Name, destination.Type, destination.Address,
		input.ExpectedDeliveryDate, input.Priority, input.Notes,
		len(input.Items), totalQuantity, id,
	); err != nil {
		return nil, fmt.Errorf("failed to update transfer %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer update: %w", err)
	}
	return s.GetTransfer(ctx, id)
}

func (s *transferService) ValidateTransfer(ctx context.Context, id int, approve bool, notes string, validatedBy PersonRef) (*StockTransfer, error) {
	event := EventReject
	if approve {
		event = EventApprove
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status TransferStatus
	err = tx.QueryRow(ctx, "SELECT status FROM transfers WHERE id = $1 FOR UPDATE", id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transfer %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch transfer %d: %w", id, err)
	}

	next, err := Transition(status, event)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE transfers SET
			status = $1,
			validated_by_id = $2, validated_by_name = $3, validated_by_role = $4,
			validated_at = NOW(), validation_notes = $5,
			updated_at = NOW()
		WHERE id = $6
	`, next, validatedBy.UserID, validatedBy.Name, validatedBy.Role, notes, id); err != nil {
		return nil, fmt.Errorf("failed to validate transfer %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer validation: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("transfer validated",
			zap.Int("transfer_id", id),
			zap.Bool("approved", approve),
			zap.String("validator", validatedBy.Name))
	}
	return s.GetTransfer(ctx, id)
}

func (s *transferService) DispatchTransfer(ctx context.Context, id int) (*StockTransfer, error) {
	return s.applyEvent(ctx, id, EventDispatch)
}

func (s *transferService) CancelTransfer(ctx context.Context, id int) (*StockTransfer, error) {
	return s.applyEvent(ctx, id, EventCancel)
}

// applyEvent performs a plain status transition with no side effects.
func (s *transferService) applyEvent(ctx context.Context, id int, event TransferEvent) (*StockTransfer, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status TransferStatus
	err = tx.QueryRow(ctx, "SELECT status FROM transfers WHERE id = $1 FOR UPDATE", id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transfer %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch transfer %d: %w", id, err)
	}

	next, err := Transition(status, event)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, "UPDATE transfers SET status = $1, updated_at = NOW() WHERE id = $2", next, id); err != nil {
		return nil, fmt.Errorf("failed to update transfer %d: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer transition: %w", err)
	}
	return s.GetTransfer(ctx, id)
}

func (s *transferService) ReceiveTransfer(ctx context.Context, id int, lines []ReceivedLine, receivedBy PersonRef) (*StockTransfer, error) {
	if len(lines) == 0 {
		return nil, validationf("at least one received line is required")
	}
	for _, line := range lines {
		if line.QtyReceived <= 0 {
			return nil, validationf("received quantity must be positive")
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status TransferStatus
	var sourceName, destinationName, number string
	err = tx.QueryRow(ctx, `
		SELECT status, source_name, destination_name, transfer_number
		FROM transfers WHERE id = $1 FOR UPDATE
	`, id).Scan(&status, &sourceName, &destinationName, &number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transfer %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch transfer %d: %w", id, err)
	}

	// Probe with a partial receive first; the final event is decided below
	// once the outstanding quantities are known.
	if _, err := Transition(status, EventReceivePartial); err != nil {
		return nil, err
	}

	type itemRow struct {
		productID   int
		quantity    int
		qtyReceived int
	}
	items := map[int]*itemRow{}
	rows, err := tx.Query(ctx, `
		SELECT id, product_id, quantity, qty_received
		FROM transfer_items WHERE transfer_id = $1 FOR UPDATE
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read transfer items: %w", err)
	}
	for rows.Next() {
		var itemID int
		row := &itemRow{}
		if err := rows.Scan(&itemID, &row.productID, &row.quantity, &row.qtyReceived); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan transfer item: %w", err)
		}
		items[itemID] = row
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, fmt.Errorf("failed to read transfer items: %w", rows.Err())
	}

	touched := map[int]bool{}
	for _, line := range lines {
		item, ok := items[line.ItemID]
		if !ok {
			return nil, validationf("transfer item %d does not belong to transfer %d", line.ItemID, id)
		}
		if item.qtyReceived+line.QtyReceived > item.quantity {
			return nil, validationf("received quantity exceeds requested quantity for item %d", line.ItemID)
		}

		if err := moveStock(ctx, tx, item.productID, sourceName, destinationName, line.QtyReceived, receivedBy.Name, id); err != nil {
			return nil, err
		}

		if _, err := tx.Exec(ctx, `
			UPDATE transfer_items SET qty_received = qty_received + $1 WHERE id = $2
		`, line.QtyReceived, line.ItemID); err != nil {
			return nil, fmt.Errorf("failed to record received quantity: %w", err)
		}
		item.qtyReceived += line.QtyReceived
		touched[item.productID] = true
	}

	event := EventReceiveAll
	for _, item := range items {
		if item.qtyReceived < item.quantity {
			event = EventReceivePartial
			break
		}
	}
	next, err := Transition(status, event)
	if err != nil {
		return nil, err
	}

	if event == EventReceiveAll {
		if _, err := tx.Exec(ctx, `
			UPDATE transfers SET
				status = $1, actual_delivery_date = NOW(),
				received_by_id = $2, received_by_name = $3, received_by_role = $4,
				updated_at = NOW()
			WHERE id = $5
		`, next, receivedBy.UserID, receivedBy.Name, receivedBy.Role, id); err != nil {
			return nil, fmt.Errorf("failed to complete transfer %d: %w", id, err)
		}
	} else {
		if _, err := tx.Exec(ctx, "UPDATE transfers SET status = $1, updated_at = NOW() WHERE id = $2", next, id); err != nil {
			return nil, fmt.Errorf("failed to update transfer %d: %w", id, err)
		}
	}

	// Refresh aggregate stock for every product touched; warehouse-to-
	// warehouse moves leave the aggregate unchanged but the write keeps the
	// products row, the stock_levels record, and the breakdown in lockstep.
	quantities := map[int]int{}
	for productID := range touched {
		var total int
		err := tx.QueryRow(ctx, `
			SELECT COALESCE(SUM(quantity), 0) FROM product_stocks WHERE product_id = $1
		`, productID).Scan(&total)
		if err != nil {
			return nil, fmt.Errorf("failed to recompute stock for product %d: %w", productID, err)
		}
		if _, err := tx.Exec(ctx, "UPDATE products SET stock = $1, updated_at = NOW() WHERE id = $2", total, productID); err != nil {
			return nil, fmt.Errorf("failed to update aggregate stock: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE stock_levels SET quantity = $1, updated_at = NOW() WHERE product_id = $2
		`, total, productID); err != nil {
			return nil, fmt.Errorf("failed to update stock level record: %w", err)
		}
		quantities[productID] = total
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer receipt: %w", err)
	}

	for productID, quantity := range quantities {
		if s.watcher != nil {
			s.watcher.Notify(productID, quantity)
		}
		if s.publisher != nil {
			s.publisher.StockChanged(ctx, productID, quantity, "transfer-receive")
		}
	}
	if s.logger != nil {
		s.logger.Info("transfer received",
			zap.Int("transfer_id", id),
			zap.String("transfer_number", number),
			zap.String("status", string(next)))
	}
	return s.GetTransfer(ctx, id)
}

// moveStock shifts qty units of a product from the source warehouse to the
// destination warehouse and appends the matching stock movement records.
// It fails if the source warehouse does not hold enough stock.
func moveStock(ctx context.Context, tx pgx.Tx, productID int, sourceName, destinationName string, qty int, actor string, transferID int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE product_stocks SET quantity = quantity - $1
		WHERE product_id = $2 AND warehouse_name = $3 AND quantity >= $1
	`, qty, productID, sourceName)
	if err != nil {
		return fmt.Errorf("failed to deduct source stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d at %s: %w", productID, sourceName, ErrInsufficientStock)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO product_stocks (product_id, warehouse_name, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id, warehouse_name) DO UPDATE
		SET quantity = product_stocks.quantity + EXCLUDED.quantity
	`, productID, destinationName, qty); err != nil {
		return fmt.Errorf("failed to add destination stock: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO stock_movements (movement_type, product_id, quantity, requested_by, status, transfer_id, source_warehouse, destination_warehouse)
		VALUES ('out', $1, $2, $3, 'approved', $4, $5, $6),
		       ('in',  $1, $2, $3, 'approved', $4, $5, $6)
	`, productID, qty, actor, transferID, sourceName, destinationName); err != nil {
		return fmt.Errorf("failed to record stock movements: %w", err)
	}
	return nil
}

func (s *transferService) DeleteTransfer(ctx context.Context, id int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status TransferStatus
	err = tx.QueryRow(ctx, "SELECT status FROM transfers WHERE id = $1 FOR UPDATE", id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("transfer %d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to fetch transfer %d: %w", id, err)
	}
	if IsTerminal(status) {
		return validationf("transfer in status %q cannot be deleted", status)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM transfers WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete transfer %d: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transfer deletion: %w", err)
	}
	return nil
}

const transferColumns = `
	id, transfer_number, transfer_type,
	source_id, source_name, source_type, source_address,
	destination_id, destination_name, destination_type, destination_address,
	request_date, expected_delivery_date::text, actual_delivery_date,
	requested_by_id, requested_by_name, requested_by_role,
	validated_by_id, validated_by_name, validated_by_role, validated_at, validation_notes,
	received_by_id, received_by_name, received_by_role,
	status, priority, total_items, total_quantity, notes, created_at, updated_at`

func scanTransfer(row pgx.Row) (*StockTransfer, error) {
	var t StockTransfer
	var validatedByID *int
	var validatedByName, validatedByRole, validationNotes *string
	var validatedAt *time.Time
	var receivedByID *int
	var receivedByName, receivedByRole *string

	err := row.Scan(
		&t.ID, &t.TransferNumber, &t.TransferType,
		&t.SourceLocation.ID, &t.SourceLocation.Name, &t.SourceLocation.Type, &t.SourceLocation.Address,
		&t.DestinationLocation.ID, &t.DestinationLocation.Name, &t.DestinationLocation.Type, &t.DestinationLocation.Address,
		&t.RequestDate, &t.ExpectedDeliveryDate, &t.ActualDeliveryDate,
		&t.RequestedBy.UserID, &t.RequestedBy.Name, &t.RequestedBy.Role,
		&validatedByID, &validatedByName, &validatedByRole, &validatedAt, &validationNotes,
		&receivedByID, &receivedByName, &receivedByRole,
		&t.Status, &t.Priority, &t.TotalItems, &t.TotalQuantity, &t.Notes, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if validatedByID != nil {
		v := &Validation{Date: *validatedAt}
		v.UserID = *validatedByID
		if validatedByName != nil {
			v.Name = *validatedByName
		}
		if validatedByRole != nil {
			v.Role = *validatedByRole
		}
		if validationNotes != nil {
			v.Notes = *validationNotes
		}
		t.ValidatedBy = v
	}
	if receivedByID != nil {
		r := &Receipt{}
		r.UserID = *receivedByID
		if receivedByName != nil {
			r.Name = *receivedByName
		}
		if receivedByRole != nil {
			r.Role = *receivedByRole
		}
		if t.ActualDeliveryDate != nil {
			r.Date = *t.ActualDeliveryDate
		}
		t.ReceivedBy = r
	}
	return &t, nil
}

func (s *transferService) fetchItems(ctx context.Context, transferID int) ([]TransferItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, product_id, quantity, current_stock, condition, qty_received
		FROM transfer_items WHERE transfer_id = $1 ORDER BY id
	`, transferID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer items: %w", err)
	}
	defer rows.Close()

	items := []TransferItem{}
	for rows.Next() {
		var item TransferItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity, &item.CurrentStock, &item.Condition, &item.QtyReceived); err != nil {
			return nil, fmt.Errorf("failed to scan transfer item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *transferService) GetTransfer(ctx context.Context, id int) (*StockTransfer, error) {
	t, err := scanTransfer(s.pool.QueryRow(ctx, "SELECT "+transferColumns+" FROM transfers WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transfer %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch transfer %d: %w", id, err)
	}

	items, err := s.fetchItems(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return t, nil
}

func (s *transferService) listWhere(ctx context.Context, where string, args ...any) ([]StockTransfer, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+transferColumns+" FROM transfers "+where+" ORDER BY request_date DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	var transfers []StockTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, *t)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("failed to read transfers: %w", rows.Err())
	}

	for i := range transfers {
		items, err := s.fetchItems(ctx, transfers[i].ID)
		if err != nil {
			return nil, err
		}
		transfers[i].Items = items
	}
	return transfers, nil
}

func (s *transferService) ListTransfers(ctx context.Context) ([]StockTransfer, error) {
	return s.listWhere(ctx, "")
}

func (s *transferService) ListPendingValidation(ctx context.Context) ([]StockTransfer, error) {
	return s.listWhere(ctx, "WHERE status IN ($1, $2)", StatusAwaitingValidation, StatusPending)
}
