package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vibast-solutions/ms-go-onboarding/app/entity"
)

const planColumns = `
	id, name, description, price, yearly_price, period, cta, popular,
	sort_order, status, features, plan_limits, gateway_plan_id, gateway_yearly_plan_id,
	created_at, updated_at`

type PlanRepository struct {
	db DBTX
}

func NewPlanRepository(db DBTX) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) FindByID(ctx context.Context, id string) (*entity.Plan, error) {
	query := `SELECT` + planColumns + `
		FROM plans
		WHERE id = ?
	`

	item, err := scanPlan(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *PlanRepository) ListActive(ctx context.Context) ([]*entity.Plan, error) {
	query := `SELECT` + planColumns + `
		FROM plans
		WHERE status = ?
		ORDER BY sort_order ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, entity.PlanStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.Plan, 0)
	for rows.Next() {
		item, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func scanPlan(scanner rowScanner) (*entity.Plan, error) {
	item := &entity.Plan{}
	var features, limits string
	err := scanner.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.YearlyPrice,
		&item.Period,
		&item.CTA,
		&item.Popular,
		&item.SortOrder,
		&item.Status,
		&features,
		&limits,
		&item.GatewayPlanID,
		&item.GatewayYearlyPlanID,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if features != "" {
		if err := json.Unmarshal([]byte(features), &item.Features); err != nil {
			return nil, fmt.Errorf("decode features for plan %s: %w", item.ID, err)
		}
	}
	if limits != "" {
		if err := json.Unmarshal([]byte(limits), &item.Limits); err != nil {
			return nil, fmt.Errorf("decode limits for plan %s: %w", item.ID, err)
		}
	}
	return item, nil
}
