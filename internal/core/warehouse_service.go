package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WarehouseInput holds the fields required to create or replace a warehouse.
type WarehouseInput struct {
	Name     string
	Address  string
	Capacity int
	Manager  string
	Status   WarehouseStatus
}

// WarehouseService manages warehouse master data.
type WarehouseService interface {
	CreateWarehouse(ctx context.Context, input WarehouseInput) (*Warehouse, error)
	GetWarehouse(ctx context.Context, id int) (*Warehouse, error)
	ListWarehouses(ctx context.Context) ([]Warehouse, error)
	// ListActiveWarehouses returns warehouses eligible as transfer endpoints.
	ListActiveWarehouses(ctx context.Context) ([]Warehouse, error)
	UpdateWarehouse(ctx context.Context, id int, input WarehouseInput) (*Warehouse, error)
	DeleteWarehouse(ctx context.Context, id int) error
}

type warehouseService struct {
	pool *pgxpool.Pool
}

func NewWarehouseService(pool *pgxpool.Pool) WarehouseService {
	return &warehouseService{pool: pool}
}

func validateWarehouseInput(input WarehouseInput) error {
	if input.Name == "" {
		return validationf("warehouse name is required")
	}
	if input.Capacity < 0 {
		return validationf("valid capacity is required")
	}
	if input.Manager == "" {
		return validationf("manager name is required")
	}
	if input.Status != WarehouseActive && input.Status != WarehouseInactive {
		return validationf("status must be active or inactive")
	}
	return nil
}

func (s *warehouseService) CreateWarehouse(ctx context.Context, input WarehouseInput) (*Warehouse, error) {
	if err := validateWarehouseInput(input); err != nil {
		return nil, err
	}

	var w Warehouse
	err := s.pool.QueryRow(ctx, `
		INSERT INTO warehouses (name, address, capacity, manager, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, address, capacity, manager, status, created_at, updated_at
	`, input.Name, input.Address, input.Capacity, input.Manager, input.Status).Scan(
		&w.ID, &w.Name, &w.Address, &w.Capacity, &w.Manager, &w.Status, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create warehouse: %w", err)
	}
	return &w, nil
}

func (s *warehouseService) GetWarehouse(ctx context.Context, id int) (*Warehouse, error) {
	var w Warehouse
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, address, capacity, manager, status, created_at, updated_at
		FROM warehouses
		WHERE id = $1
	`, id).Scan(&w.ID, &w.Name, &w.Address, &w.Capacity, &w.Manager, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("warehouse %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch warehouse %d: %w", id, err)
	}
	return &w, nil
}

func (s *warehouseService) list(ctx context.Context, where string, args ...any) ([]Warehouse, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, address, capacity, manager, status, created_at, updated_at
		FROM warehouses `+where+`
		ORDER BY name
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query warehouses: %w", err)
	}
	defer rows.Close()

	var warehouses []Warehouse
	for rows.Next() {
		var w Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Address, &w.Capacity, &w.Manager, &w.Status, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan warehouse: %w", err)
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}

func (s *warehouseService) ListWarehouses(ctx context.Context) ([]Warehouse, error) {
	return s.list(ctx, "")
}

func (s *warehouseService) ListActiveWarehouses(ctx context.Context) ([]Warehouse, error) {
	return s.list(ctx, "WHERE status = $1", WarehouseActive)
}

func (s *warehouseService) UpdateWarehouse(ctx context.Context, id int, input WarehouseInput) (*Warehouse, error) {
	if err := validateWarehouseInput(input); err != nil {
		return nil, err
	}

	var w Warehouse
	err := s.pool.QueryRow(ctx, `
		UPDATE warehouses
		SET name = $1, address = $2, capacity = $3, manager = $4, status = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING id, name, address, capacity, manager, status, created_at, updated_at
	`, input.Name, input.Address, input.Capacity, input.Manager, input.Status, id).Scan(
		&w.ID, &w.Name, &w.Address, &w.Capacity, &w.Manager, &w.Status, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("warehouse %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update warehouse %d: %w", id, err)
	}
	return &w, nil
}

func (s *warehouseService) DeleteWarehouse(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM warehouses WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete warehouse %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("warehouse %d: %w", id, ErrNotFound)
	}
	return nil
}
