package payment

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type RazorpayGateway struct {
	client *razorpay.Client
	keyID  string
	tracer trace.Tracer
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		client: razorpay.NewClient(keyID, keySecret),
		keyID:  keyID,
		tracer: otel.Tracer("onboarding/payment/razorpay"),
	}
}

func (g *RazorpayGateway) KeyID() string {
	return g.keyID
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (_ *Order, err error) {
	_, span := g.tracer.Start(ctx, "razorpay.orders.create",
		trace.WithAttributes(attribute.Int64("amount", req.AmountMinor), attribute.String("currency", req.Currency)))
	defer func() { endSpan(span, err) }()

	body, err := invoke(func() (map[string]interface{}, error) {
		return g.client.Order.Create(map[string]interface{}{
			"amount":   req.AmountMinor,
			"currency": req.Currency,
			"receipt":  req.Receipt,
			"notes":    toNotes(req.Notes),
		}, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create order: %v", ErrGatewayRequest, err)
	}

	order := &Order{
		ID:          stringField(body, "id"),
		AmountMinor: int64Field(body, "amount"),
		Currency:    stringField(body, "currency"),
		Status:      stringField(body, "status"),
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: create order: empty id", ErrGatewayRequest)
	}
	return order, nil
}

func (g *RazorpayGateway) CreateSubscription(ctx context.Context, req SubscriptionRequest) (_ *Subscription, err error) {
	_, span := g.tracer.Start(ctx, "razorpay.subscriptions.create",
		trace.WithAttributes(attribute.String("plan_id", req.PlanID)))
	defer func() { endSpan(span, err) }()

	if req.PlanID == "" {
		return nil, fmt.Errorf("%w: create subscription: plan id is required", ErrGatewayRequest)
	}

	notify := 0
	if req.CustomerNotify {
		notify = 1
	}
	data := map[string]interface{}{
		"plan_id":         req.PlanID,
		"total_count":     req.TotalCount,
		"customer_notify": notify,
		"notes":           toNotes(req.Notes),
	}
	if !req.StartAt.IsZero() {
		data["start_at"] = req.StartAt.Unix()
	}

	body, err := invoke(func() (map[string]interface{}, error) {
		return g.client.Subscription.Create(data, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create subscription: %v", ErrGatewayRequest, err)
	}

	sub := &Subscription{
		ID:       stringField(body, "id"),
		Status:   stringField(body, "status"),
		ShortURL: stringField(body, "short_url"),
	}
	if sub.ID == "" {
		return nil, fmt.Errorf("%w: create subscription: empty id", ErrGatewayRequest)
	}
	return sub, nil
}

func (g *RazorpayGateway) CancelSubscription(ctx context.Context, subscriptionID string, atCycleEnd bool) (err error) {
	_, span := g.tracer.Start(ctx, "razorpay.subscriptions.cancel",
		trace.WithAttributes(attribute.String("subscription_id", subscriptionID)))
	defer func() { endSpan(span, err) }()

	if _, err := invoke(func() (map[string]interface{}, error) {
		return g.client.Subscription.Cancel(subscriptionID, map[string]interface{}{
			"cancel_at_cycle_end": atCycleEnd,
		}, nil)
	}); err != nil {
		return fmt.Errorf("%w: cancel subscription: %v", ErrGatewayRequest, err)
	}
	return nil
}

// invoke runs a client call and turns a panic inside the SDK into an error.
func invoke(call func() (map[string]interface{}, error)) (body map[string]interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return call()
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
	span.End()
}

func toNotes(notes map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(notes))
	for k, v := range notes {
		out[k] = v
	}
	return out
}

func stringField(body map[string]interface{}, key string) string {
	if v, ok := body[key].(string); ok {
		return v
	}
	return ""
}

func int64Field(body map[string]interface{}, key string) int64 {
	switch v := body[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
