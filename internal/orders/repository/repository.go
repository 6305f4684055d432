// Package repository persists orders in PostgreSQL. The order is stored as a
// whole JSONB document with a few derived columns for sweep queries; every
// update replaces the document atomically.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"transport_broker_backend/internal/orders/domain"
	"transport_broker_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides order persistence backed by PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an order repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new order. A missing id is generated.
func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	doc, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}

	query := `
		INSERT INTO orders (
			id, document, status, portal_id, external_id, external_updated_at,
			awaiting_pickup_confirmation, awaiting_delivery_confirmation,
			survey_sent_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11)`

	_, err = r.pool.Exec(ctx, query,
		order.ID,
		doc,
		string(order.Status),
		order.PortalID,
		order.TMS.ExternalID,
		order.TMS.UpdatedAt,
		order.Notifications.AwaitingPickupConfirmation,
		order.Notifications.AwaitingDeliveryConfirmation,
		order.Notifications.Survey.SentAt,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID fetches one order by its internal id.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.getOne(ctx, `SELECT document FROM orders WHERE id = $1`, id)
}

// GetByExternalID fetches the order mirroring one external id.
func (r *Repository) GetByExternalID(ctx context.Context, externalID string) (*domain.Order, error) {
	return r.getOne(ctx, `SELECT document FROM orders WHERE external_id = $1`, externalID)
}

func (r *Repository) getOne(ctx context.Context, query string, arg any) (*domain.Order, error) {
	var doc []byte
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, fmt.Errorf("query order: %w", err)
	}

	var order domain.Order
	if err := json.Unmarshal(doc, &order); err != nil {
		return nil, fmt.Errorf("decode order document: %w", err)
	}
	return &order, nil
}

// Update replaces the whole order document in one write. The external_id
// column is write-once at the database level too: once set, a different value
// never replaces it.
func (r *Repository) Update(ctx context.Context, order *domain.Order) error {
	order.UpdatedAt = time.Now().UTC()

	doc, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}

	query := `
		UPDATE orders SET
			document = $2,
			status = $3,
			external_id = COALESCE(external_id, NULLIF($4, '')),
			external_updated_at = $5,
			awaiting_pickup_confirmation = $6,
			awaiting_delivery_confirmation = $7,
			survey_sent_at = $8,
			updated_at = $9
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		order.ID,
		doc,
		string(order.Status),
		order.TMS.ExternalID,
		order.TMS.UpdatedAt,
		order.Notifications.AwaitingPickupConfirmation,
		order.Notifications.AwaitingDeliveryConfirmation,
		order.Notifications.Survey.SentAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("order not found")
	}
	return nil
}

// ListAwaitingPickupConfirmation returns orders still flagged for a pickup
// confirmation notification.
func (r *Repository) ListAwaitingPickupConfirmation(ctx context.Context) ([]*domain.Order, error) {
	return r.list(ctx, `
		SELECT document FROM orders
		WHERE awaiting_pickup_confirmation = TRUE
		ORDER BY created_at`)
}

// ListAwaitingDeliveryConfirmation returns orders still flagged for a
// delivery confirmation notification.
func (r *Repository) ListAwaitingDeliveryConfirmation(ctx context.Context) ([]*domain.Order, error) {
	return r.list(ctx, `
		SELECT document FROM orders
		WHERE awaiting_delivery_confirmation = TRUE
		ORDER BY created_at`)
}

// ListSurveyCandidates returns delivered or invoiced orders with an external
// id. The eligibility engine applies the time windows and channel checks.
func (r *Repository) ListSurveyCandidates(ctx context.Context) ([]*domain.Order, error) {
	return r.list(ctx, `
		SELECT document FROM orders
		WHERE status IN ('Delivered', 'Invoiced')
		  AND external_id IS NOT NULL
		ORDER BY external_updated_at`)
}

func (r *Repository) list(ctx context.Context, query string) ([]*domain.Order, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		var order domain.Order
		if err := json.Unmarshal(doc, &order); err != nil {
			return nil, fmt.Errorf("decode order document: %w", err)
		}
		orders = append(orders, &order)
	}
	return orders, rows.Err()
}
