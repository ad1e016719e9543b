package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DashboardMetrics is the aggregate snapshot behind the landing page.
type DashboardMetrics struct {
	TotalProducts     int                    `json:"total_products"`
	LowStockCount     int                    `json:"low_stock_count"`
	PendingTransfers  int                    `json:"pending_transfers"`
	ActiveWarehouses  int                    `json:"active_warehouses"`
	TodaySalesTotal   decimal.Decimal        `json:"today_sales_total"`
	TodaySalesCount   int                    `json:"today_sales_count"`
	TransferStatuses  map[TransferStatus]int `json:"transfer_statuses"`
	UrgentTransfers   int                    `json:"urgent_transfers"`
	RecentValidations []StockTransfer        `json:"recent_validations"`
}

// ReportingService serves read-only aggregates for the dashboard.
type ReportingService interface {
	// DashboardMetrics computes the full dashboard snapshot. "Today" is
	// the calendar day in the server's local time zone.
	DashboardMetrics(ctx context.Context) (*DashboardMetrics, error)
}

type reportingService struct {
	pool              *pgxpool.Pool
	transfers         TransferService
	lowStockThreshold int
}

// NewReportingService constructs a ReportingService. Recent validations are
// loaded through the transfer service so items come along.
func NewReportingService(pool *pgxpool.Pool, transfers TransferService, lowStockThreshold int) ReportingService {
	return &reportingService{pool: pool, transfers: transfers, lowStockThreshold: lowStockThreshold}
}

func (s *reportingService) DashboardMetrics(ctx context.Context) (*DashboardMetrics, error) {
	m := &DashboardMetrics{
		TodaySalesTotal:  decimal.Zero,
		TransferStatuses: map[TransferStatus]int{},
	}

	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM products WHERE stock < $1),
			(SELECT COUNT(*) FROM transfers WHERE status IN ($2, $3)),
			(SELECT COUNT(*) FROM warehouses WHERE status = 'active'),
			(SELECT COUNT(*) FROM transfers WHERE priority = 'urgent' AND status NOT IN ($4, $5, $6))
	`, s.lowStockThreshold,
		StatusAwaitingValidation, StatusPending,
		StatusCompleted, StatusCancelled, StatusRejected,
	).Scan(&m.TotalProducts, &m.LowStockCount, &m.PendingTransfers, &m.ActiveWarehouses, &m.UrgentTransfers)
	if err != nil {
		return nil, fmt.Errorf("failed to compute dashboard counts: %w", err)
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0), COUNT(*)
		FROM transactions
		WHERE sale_date >= $1 AND sale_date < $2 AND status = 'completed'
	`, dayStart, dayStart.AddDate(0, 0, 1)).Scan(&m.TodaySalesTotal, &m.TodaySalesCount)
	if err != nil {
		return nil, fmt.Errorf("failed to compute today's sales: %w", err)
	}

	rows, err := s.pool.Query(ctx, "SELECT status, COUNT(*) FROM transfers GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count transfers by status: %w", err)
	}
	for rows.Next() {
		var status TransferStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan transfer status count: %w", err)
		}
		m.TransferStatuses[status] = count
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, fmt.Errorf("failed to count transfers by status: %w", rows.Err())
	}

	recent, err := s.recentValidated(ctx, 5)
	if err != nil {
		return nil, err
	}
	m.RecentValidations = recent
	return m, nil
}

// recentValidated returns the most recently validated transfers, approved or
// rejected, newest decision first.
func (s *reportingService) recentValidated(ctx context.Context, limit int) ([]StockTransfer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id FROM transfers
		WHERE validated_at IS NOT NULL
		ORDER BY validated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent validations: %w", err)
	}
	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan transfer id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, fmt.Errorf("failed to query recent validations: %w", rows.Err())
	}

	transfers := []StockTransfer{}
	for _, id := range ids {
		t, err := s.transfers.GetTransfer(ctx, id)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, *t)
	}
	return transfers, nil
}
