package types

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vibast-solutions/ms-go-onboarding/app/dto"
)

type StartTrialRequest struct {
	Plan string `json:"plan"`
}

func (x *StartTrialRequest) GetPlan() string {
	if x != nil {
		return x.Plan
	}
	return ""
}

func NewStartTrialRequestFromContext(ctx echo.Context) (*StartTrialRequest, error) {
	var body StartTrialRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Plan = strings.ToLower(strings.TrimSpace(body.Plan))
	if body.Plan == "" {
		body.Plan = strings.ToLower(strings.TrimSpace(ctx.QueryParam("plan")))
	}
	return &body, nil
}

func (r *StartTrialRequest) Validate() error {
	return nil
}

// ConfirmTrialRequest carries the checkout widget's success handler payload.
type ConfirmTrialRequest struct {
	PaymentId      string `json:"razorpay_payment_id"`
	SubscriptionId string `json:"razorpay_subscription_id"`
	Signature      string `json:"razorpay_signature"`
}

func (x *ConfirmTrialRequest) GetPaymentId() string {
	if x != nil {
		return x.PaymentId
	}
	return ""
}

func (x *ConfirmTrialRequest) GetSubscriptionId() string {
	if x != nil {
		return x.SubscriptionId
	}
	return ""
}

func (x *ConfirmTrialRequest) GetSignature() string {
	if x != nil {
		return x.Signature
	}
	return ""
}

func NewConfirmTrialRequestFromContext(ctx echo.Context) (*ConfirmTrialRequest, error) {
	var body ConfirmTrialRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.PaymentId = strings.TrimSpace(body.PaymentId)
	body.SubscriptionId = strings.TrimSpace(body.SubscriptionId)
	body.Signature = strings.TrimSpace(body.Signature)
	return &body, nil
}

func (r *ConfirmTrialRequest) Validate() error {
	if r.GetPaymentId() == "" || r.GetSubscriptionId() == "" || r.GetSignature() == "" {
		return errors.New("razorpay_payment_id, razorpay_subscription_id and razorpay_signature are required")
	}
	return nil
}

type CreateOrderRequest struct {
	Plan  string `json:"plan"`
	Cycle string `json:"cycle"`
}

func (x *CreateOrderRequest) GetPlan() string {
	if x != nil {
		return x.Plan
	}
	return ""
}

func (x *CreateOrderRequest) GetCycle() string {
	if x != nil {
		return x.Cycle
	}
	return ""
}

func NewCreateOrderRequestFromContext(ctx echo.Context) (*CreateOrderRequest, error) {
	var body CreateOrderRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Plan = strings.ToLower(strings.TrimSpace(body.Plan))
	body.Cycle = strings.ToLower(strings.TrimSpace(body.Cycle))
	return &body, nil
}

func (r *CreateOrderRequest) Validate() error {
	switch r.GetPlan() {
	case "standard", "pro", "premium":
	default:
		return errors.New("Invalid plan selected")
	}
	return validateCycle(r.GetCycle())
}

type VerifyPaymentRequest struct {
	OrderId   string `json:"razorpay_order_id"`
	PaymentId string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
	Plan      string `json:"plan"`
	Cycle     string `json:"cycle"`
}

func (x *VerifyPaymentRequest) GetOrderId() string {
	if x != nil {
		return x.OrderId
	}
	return ""
}

func (x *VerifyPaymentRequest) GetPaymentId() string {
	if x != nil {
		return x.PaymentId
	}
	return ""
}

func (x *VerifyPaymentRequest) GetSignature() string {
	if x != nil {
		return x.Signature
	}
	return ""
}

func (x *VerifyPaymentRequest) GetPlan() string {
	if x != nil {
		return x.Plan
	}
	return ""
}

func (x *VerifyPaymentRequest) GetCycle() string {
	if x != nil {
		return x.Cycle
	}
	return ""
}

func NewVerifyPaymentRequestFromContext(ctx echo.Context) (*VerifyPaymentRequest, error) {
	var body VerifyPaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.OrderId = strings.TrimSpace(body.OrderId)
	body.PaymentId = strings.TrimSpace(body.PaymentId)
	body.Signature = strings.TrimSpace(body.Signature)
	body.Plan = strings.ToLower(strings.TrimSpace(body.Plan))
	body.Cycle = strings.ToLower(strings.TrimSpace(body.Cycle))
	return &body, nil
}

func (r *VerifyPaymentRequest) Validate() error {
	if r.GetOrderId() == "" || r.GetPaymentId() == "" || r.GetSignature() == "" {
		return errors.New("razorpay_order_id, razorpay_payment_id and razorpay_signature are required")
	}
	return validateCycle(r.GetCycle())
}

type StartTrialResponse struct {
	Options dto.CheckoutOptions `json:"checkout_options"`
	Summary dto.TrialSummary    `json:"summary"`
}

type CreateOrderResponse struct {
	Options dto.CheckoutOptions `json:"checkout_options"`
	Summary dto.OrderSummary    `json:"summary"`
}

type CheckoutOutcomeResponse struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
	Redirect     string        `json:"redirect"`
	Subscription *Subscription `json:"subscription,omitempty"`
}
