package types

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// OrganizationRequest addresses one organization on the internal API.
type OrganizationRequest struct {
	OrganizationId uint64 `json:"organization_id"`
}

func (x *OrganizationRequest) GetOrganizationId() uint64 {
	if x != nil {
		return x.OrganizationId
	}
	return 0
}

func NewOrganizationRequestFromContext(ctx echo.Context) (*OrganizationRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}
	return &OrganizationRequest{OrganizationId: id}, nil
}

func (r *OrganizationRequest) Validate() error {
	if r.GetOrganizationId() == 0 {
		return errors.New("invalid organization id")
	}
	return nil
}

type Subscription struct {
	Id                    uint64 `json:"id"`
	OrganizationId        uint64 `json:"organization_id"`
	Plan                  string `json:"plan"`
	BillingCycle          string `json:"billing_cycle"`
	Status                int32  `json:"status"`
	StatusName            string `json:"status_name"`
	GatewaySubscriptionId string `json:"gateway_subscription_id,omitempty"`
	TrialEndsAt           string `json:"trial_ends_at,omitempty"`
	CardAuthorizedAt      string `json:"card_authorized_at,omitempty"`
	CurrentPeriodStart    string `json:"current_period_start,omitempty"`
	CurrentPeriodEnd      string `json:"current_period_end,omitempty"`
	AutoRenew             bool   `json:"auto_renew"`
	CancelledAt           string `json:"cancelled_at,omitempty"`
	CreatedAt             string `json:"created_at"`
	UpdatedAt             string `json:"updated_at"`
}

type Order struct {
	Id               uint64 `json:"id"`
	OrganizationId   uint64 `json:"organization_id"`
	Plan             string `json:"plan"`
	BillingCycle     string `json:"billing_cycle"`
	Amount           int64  `json:"amount"`
	DisplayAmount    string `json:"display_amount"`
	Currency         string `json:"currency"`
	Receipt          string `json:"receipt"`
	GatewayOrderId   string `json:"gateway_order_id"`
	GatewayPaymentId string `json:"gateway_payment_id,omitempty"`
	Status           string `json:"status"`
	PaidAt           string `json:"paid_at,omitempty"`
	CreatedAt        string `json:"created_at"`
}

type SubscriptionResponse struct {
	Subscription *Subscription `json:"subscription"`
}

type CancelSubscriptionResponse struct {
	Subscription *Subscription `json:"subscription"`
	Immediate    bool          `json:"immediate"`
	Message      string        `json:"message"`
}

type ListOrdersResponse struct {
	Orders []*Order `json:"orders"`
}

type WebhookResponse struct {
	Status  string `json:"status"`
	Event   string `json:"event"`
	Handled bool   `json:"handled"`
}
