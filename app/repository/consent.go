package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-onboarding/app/entity"
)

// ConsentRepository is append-only. Each choice a visitor makes is a new row.
type ConsentRepository struct {
	db DBTX
}

func NewConsentRepository(db DBTX) *ConsentRepository {
	return &ConsentRepository{db: db}
}

func (r *ConsentRepository) Append(ctx context.Context, record *entity.ConsentRecord) error {
	query := `
		INSERT INTO consent_records (visitor_id, necessary, analytics, marketing, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		record.VisitorID,
		record.Necessary,
		record.Analytics,
		record.Marketing,
		record.IPAddress,
		record.UserAgent,
		record.CreatedAt.UTC(),
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	record.ID = uint64(id)
	return nil
}

func (r *ConsentRepository) FindLatest(ctx context.Context, visitorID string) (*entity.ConsentRecord, error) {
	query := `
		SELECT id, visitor_id, necessary, analytics, marketing, ip_address, user_agent, created_at
		FROM consent_records
		WHERE visitor_id = ?
		ORDER BY id DESC
		LIMIT 1
	`

	item := &entity.ConsentRecord{}
	err := r.db.QueryRowContext(ctx, query, visitorID).Scan(
		&item.ID,
		&item.VisitorID,
		&item.Necessary,
		&item.Analytics,
		&item.Marketing,
		&item.IPAddress,
		&item.UserAgent,
		&item.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}
