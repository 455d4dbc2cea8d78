package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-onboarding/app/entity"
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrSlugTaken            = errors.New("organization slug already exists")
	ErrEmailTaken           = errors.New("user email already exists")
)

type AccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// CreateOwner inserts the organization and its first user atomically.
func (r *AccountRepository) CreateOwner(ctx context.Context, org *entity.Organization, user *entity.User) error {
	return withTx(ctx, r.db, func(tx DBTX) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO organizations (name, slug, plan, trial_ends_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			org.Name,
			org.Slug,
			org.Plan,
			nullableTimeValue(org.TrialEndsAt),
			org.CreatedAt.UTC(),
			org.UpdatedAt.UTC(),
		)
		if err != nil {
			if isDuplicateEntryError(err) {
				return ErrSlugTaken
			}
			return err
		}
		orgID, err := result.LastInsertId()
		if err != nil {
			return err
		}

		result, err = tx.ExecContext(ctx, `
			INSERT INTO users (organization_id, email, full_name, role, password_hash, email_verified, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			orgID,
			strings.ToLower(strings.TrimSpace(user.Email)),
			user.FullName,
			user.Role,
			user.PasswordHash,
			user.EmailVerified,
			user.CreatedAt.UTC(),
			user.UpdatedAt.UTC(),
		)
		if err != nil {
			if isDuplicateEntryError(err) {
				return ErrEmailTaken
			}
			return err
		}
		userID, err := result.LastInsertId()
		if err != nil {
			return err
		}

		org.ID = uint64(orgID)
		user.ID = uint64(userID)
		user.OrganizationID = org.ID
		return nil
	})
}

func (r *AccountRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM organizations WHERE slug = ?`, slug).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AccountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AccountRepository) FindOrganization(ctx context.Context, id uint64) (*entity.Organization, error) {
	query := `
		SELECT id, name, slug, plan, trial_ends_at, created_at, updated_at
		FROM organizations
		WHERE id = ?
	`

	item := &entity.Organization{}
	var trialEndsAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.Name,
		&item.Slug,
		&item.Plan,
		&trialEndsAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	item.TrialEndsAt = timePtr(trialEndsAt)
	return item, nil
}

func (r *AccountRepository) UpdateOrganizationPlan(ctx context.Context, id uint64, plan string, updatedAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE organizations SET plan = ?, updated_at = ? WHERE id = ?`, plan, updatedAt.UTC(), id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(result, ErrOrganizationNotFound)
}

func (r *AccountRepository) FindUserByID(ctx context.Context, id uint64) (*entity.User, error) {
	return r.findUser(ctx, `WHERE id = ?`, id)
}

func (r *AccountRepository) FindUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findUser(ctx, `WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *AccountRepository) findUser(ctx context.Context, where string, arg interface{}) (*entity.User, error) {
	query := `
		SELECT id, organization_id, email, full_name, role, password_hash, email_verified, created_at, updated_at
		FROM users
	` + where

	item := &entity.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&item.ID,
		&item.OrganizationID,
		&item.Email,
		&item.FullName,
		&item.Role,
		&item.PasswordHash,
		&item.EmailVerified,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}
