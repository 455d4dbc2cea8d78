package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-onboarding/app/entity"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderAlreadyExists = errors.New("order already exists")
)

const orderColumns = `
	id, organization_id, user_id, plan_id, billing_cycle, amount_minor, currency,
	receipt, gateway_order_id, gateway_payment_id, status, paid_at, created_at, updated_at`

type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (
			organization_id, user_id, plan_id, billing_cycle, amount_minor, currency,
			receipt, gateway_order_id, gateway_payment_id, status, paid_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		order.OrganizationID,
		order.UserID,
		order.PlanID,
		order.BillingCycle,
		order.AmountMinor,
		order.Currency,
		order.Receipt,
		order.GatewayOrderID,
		nullableStringValue(order.GatewayPaymentID),
		order.Status,
		nullableTimeValue(order.PaidAt),
		order.CreatedAt.UTC(),
		order.UpdatedAt.UTC(),
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrOrderAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	order.ID = uint64(id)
	return nil
}

func (r *OrderRepository) Update(ctx context.Context, order *entity.Order) error {
	query := `
		UPDATE orders
		SET gateway_payment_id = ?, status = ?, paid_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		nullableStringValue(order.GatewayPaymentID),
		order.Status,
		nullableTimeValue(order.PaidAt),
		order.UpdatedAt.UTC(),
		order.ID,
	)
	if err != nil {
		return err
	}

	return affectedOrNotFound(result, ErrOrderNotFound)
}

func (r *OrderRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*entity.Order, error) {
	query := `SELECT` + orderColumns + `
		FROM orders
		WHERE gateway_order_id = ?
	`

	item := &entity.Order{}
	if err := scanOrder(r.db.QueryRowContext(ctx, query, gatewayOrderID), item); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return item, nil
}

func (r *OrderRepository) ListByOrganization(ctx context.Context, organizationID uint64) ([]*entity.Order, error) {
	query := `SELECT` + orderColumns + `
		FROM orders
		WHERE organization_id = ?
		ORDER BY id DESC
	`
	return r.listByQuery(ctx, query, organizationID)
}

func (r *OrderRepository) ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]*entity.Order, error) {
	query := `SELECT` + orderColumns + `
		FROM orders
		WHERE status = ?
		  AND created_at < ?
		ORDER BY id ASC
	`
	return r.listByQuery(ctx, query, entity.OrderStatusCreated, cutoff.UTC())
}

func (r *OrderRepository) listByQuery(ctx context.Context, query string, args ...interface{}) ([]*entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.Order, 0)
	for rows.Next() {
		item := &entity.Order{}
		if err := scanOrder(rows, item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func scanOrder(scanner rowScanner, item *entity.Order) error {
	var paymentID sql.NullString
	var paidAt sql.NullTime

	err := scanner.Scan(
		&item.ID,
		&item.OrganizationID,
		&item.UserID,
		&item.PlanID,
		&item.BillingCycle,
		&item.AmountMinor,
		&item.Currency,
		&item.Receipt,
		&item.GatewayOrderID,
		&paymentID,
		&item.Status,
		&paidAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return err
	}

	item.GatewayPaymentID = stringPtr(paymentID)
	item.PaidAt = timePtr(paidAt)
	return nil
}
