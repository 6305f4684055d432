package portals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"transport_broker_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides portal persistence backed by PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a portal repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID fetches one portal. Returns apperr.NotFound when the id is unknown.
func (r *Repository) GetByID(ctx context.Context, id string) (*Portal, error) {
	query := `
		SELECT id, name, contact_profile, notification_emails, legacy_agent_email, created_at, updated_at
		FROM portals
		WHERE id = $1`

	var (
		portal            Portal
		contactJSON       []byte
		notificationsJSON []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&portal.ID,
		&portal.Name,
		&contactJSON,
		&notificationsJSON,
		&portal.LegacyAgentEmail,
		&portal.CreatedAt,
		&portal.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(fmt.Sprintf("portal %s not found", id))
		}
		return nil, fmt.Errorf("query portal: %w", err)
	}

	if err := json.Unmarshal(contactJSON, &portal.ContactProfile); err != nil {
		return nil, fmt.Errorf("decode portal contact profile: %w", err)
	}
	if len(notificationsJSON) > 0 {
		if err := json.Unmarshal(notificationsJSON, &portal.NotificationEmails); err != nil {
			return nil, fmt.Errorf("decode portal notification emails: %w", err)
		}
	}

	return &portal, nil
}
