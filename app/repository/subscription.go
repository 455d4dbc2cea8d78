package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-onboarding/app/entity"
)

var (
	ErrSubscriptionNotFound      = errors.New("subscription not found")
	ErrSubscriptionAlreadyExists = errors.New("subscription already exists")
)

const subscriptionColumns = `
	id, organization_id, user_id, plan_id, billing_cycle, status,
	gateway_subscription_id, trial_ends_at, card_authorized_at,
	current_period_start, current_period_end, auto_renew, cancelled_at,
	created_at, updated_at`

type SubscriptionRepository struct {
	db DBTX
}

func NewSubscriptionRepository(db DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, subscription *entity.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			organization_id, live_organization_id, user_id, plan_id, billing_cycle, status,
			gateway_subscription_id, trial_ends_at, card_authorized_at,
			current_period_start, current_period_end, auto_renew, cancelled_at,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		subscription.OrganizationID,
		liveOrganizationValue(subscription),
		subscription.UserID,
		subscription.PlanID,
		subscription.BillingCycle,
		subscription.Status,
		nullableStringValue(subscription.GatewaySubscriptionID),
		nullableTimeValue(subscription.TrialEndsAt),
		nullableTimeValue(subscription.CardAuthorizedAt),
		nullableTimeValue(subscription.CurrentPeriodStart),
		nullableTimeValue(subscription.CurrentPeriodEnd),
		subscription.AutoRenew,
		nullableTimeValue(subscription.CancelledAt),
		subscription.CreatedAt.UTC(),
		subscription.UpdatedAt.UTC(),
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrSubscriptionAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	subscription.ID = uint64(id)
	return nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, subscription *entity.Subscription) error {
	query := `
		UPDATE subscriptions
		SET live_organization_id = ?, plan_id = ?, billing_cycle = ?, status = ?, gateway_subscription_id = ?,
		    trial_ends_at = ?, card_authorized_at = ?, current_period_start = ?,
		    current_period_end = ?, auto_renew = ?, cancelled_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		liveOrganizationValue(subscription),
		subscription.PlanID,
		subscription.BillingCycle,
		subscription.Status,
		nullableStringValue(subscription.GatewaySubscriptionID),
		nullableTimeValue(subscription.TrialEndsAt),
		nullableTimeValue(subscription.CardAuthorizedAt),
		nullableTimeValue(subscription.CurrentPeriodStart),
		nullableTimeValue(subscription.CurrentPeriodEnd),
		subscription.AutoRenew,
		nullableTimeValue(subscription.CancelledAt),
		subscription.UpdatedAt.UTC(),
		subscription.ID,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrSubscriptionAlreadyExists
		}
		return err
	}

	return affectedOrNotFound(result, ErrSubscriptionNotFound)
}

func (r *SubscriptionRepository) FindByID(ctx context.Context, id uint64) (*entity.Subscription, error) {
	query := `SELECT` + subscriptionColumns + `
		FROM subscriptions
		WHERE id = ?
	`
	return r.findOne(ctx, query, id)
}

func (r *SubscriptionRepository) FindByGatewayID(ctx context.Context, gatewaySubscriptionID string) (*entity.Subscription, error) {
	query := `SELECT` + subscriptionColumns + `
		FROM subscriptions
		WHERE gateway_subscription_id = ?
	`
	return r.findOne(ctx, query, gatewaySubscriptionID)
}

// FindCurrentByOrganization returns the organization's most recent subscription.
func (r *SubscriptionRepository) FindCurrentByOrganization(ctx context.Context, organizationID uint64) (*entity.Subscription, error) {
	query := `SELECT` + subscriptionColumns + `
		FROM subscriptions
		WHERE organization_id = ?
		ORDER BY id DESC
		LIMIT 1
	`
	return r.findOne(ctx, query, organizationID)
}

func (r *SubscriptionRepository) ListPendingAuthorizationStale(ctx context.Context, cutoff time.Time) ([]*entity.Subscription, error) {
	query := `SELECT` + subscriptionColumns + `
		FROM subscriptions
		WHERE status = ?
		  AND updated_at < ?
		ORDER BY id ASC
	`

	return r.listByQuery(ctx, query, entity.SubscriptionStatusPendingAuthorization, cutoff.UTC())
}

// ListExpiredActive returns active subscriptions whose period ended and that
// nothing will renew: cancelled ones and those no gateway subscription bills.
func (r *SubscriptionRepository) ListExpiredActive(ctx context.Context, now time.Time) ([]*entity.Subscription, error) {
	query := `SELECT` + subscriptionColumns + `
		FROM subscriptions
		WHERE status = ?
		  AND (auto_renew = ? OR gateway_subscription_id IS NULL)
		  AND current_period_end IS NOT NULL
		  AND current_period_end < ?
		ORDER BY id ASC
	`

	return r.listByQuery(ctx, query, entity.SubscriptionStatusActive, false, now.UTC())
}

func (r *SubscriptionRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.Subscription, error) {
	item := &entity.Subscription{}
	if err := scanSubscription(r.db.QueryRowContext(ctx, query, args...), item); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return item, nil
}

func (r *SubscriptionRepository) listByQuery(ctx context.Context, query string, args ...interface{}) ([]*entity.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.Subscription, 0)
	for rows.Next() {
		item := &entity.Subscription{}
		if err := scanSubscription(rows, item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// liveOrganizationValue fills the column that allows one live subscription per
// organization. Rows that are no longer live store NULL.
func liveOrganizationValue(subscription *entity.Subscription) interface{} {
	if !subscription.IsLive() {
		return nil
	}
	return subscription.OrganizationID
}

func scanSubscription(scanner rowScanner, item *entity.Subscription) error {
	var gatewayID sql.NullString
	var trialEndsAt, cardAuthorizedAt, periodStart, periodEnd, cancelledAt sql.NullTime

	err := scanner.Scan(
		&item.ID,
		&item.OrganizationID,
		&item.UserID,
		&item.PlanID,
		&item.BillingCycle,
		&item.Status,
		&gatewayID,
		&trialEndsAt,
		&cardAuthorizedAt,
		&periodStart,
		&periodEnd,
		&item.AutoRenew,
		&cancelledAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return err
	}

	item.GatewaySubscriptionID = stringPtr(gatewayID)
	item.TrialEndsAt = timePtr(trialEndsAt)
	item.CardAuthorizedAt = timePtr(cardAuthorizedAt)
	item.CurrentPeriodStart = timePtr(periodStart)
	item.CurrentPeriodEnd = timePtr(periodEnd)
	item.CancelledAt = timePtr(cancelledAt)
	return nil
}
