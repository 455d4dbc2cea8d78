package mapper

import (
	"time"

	"github.com/vibast-solutions/ms-go-onboarding/app/entity"
	"github.com/vibast-solutions/ms-go-onboarding/app/pricing"
	"github.com/vibast-solutions/ms-go-onboarding/app/service"
	"github.com/vibast-solutions/ms-go-onboarding/app/types"
)

func PlanToProto(item *entity.Plan, quote *pricing.Quote) *types.Plan {
	if item == nil {
		return nil
	}

	features := make([]*types.PlanFeature, 0, len(item.Features))
	for _, feature := range item.Features {
		features = append(features, &types.PlanFeature{
			Text:     feature.Text,
			Included: feature.Included,
			Tooltip:  feature.Tooltip,
		})
	}

	result := &types.Plan{
		Id:           item.ID,
		Name:         item.Name,
		Description:  item.Description,
		Period:       item.Period,
		MonthlyPrice: item.Price,
		YearlyPrice:  item.YearlyPrice,
		Cta:          item.CTA,
		Popular:      item.Popular,
		Features:     features,
		Limits: &types.PlanLimits{
			MaxClients:          int32(item.Limits.MaxClients),
			VideoCallHours:      int32(item.Limits.VideoCallHours),
			WhatsappIntegration: item.Limits.WhatsAppIntegration,
			AiFeatures:          item.Limits.AIFeatures,
			Analytics:           item.Limits.Analytics,
		},
	}
	if quote != nil {
		result.Price = pricing.Format(quote.PerMonth)
		result.BilledAmount = pricing.Format(quote.Billed)
		result.Cycle = quote.Cycle
		result.Currency = quote.Currency
		if quote.Savings.Minor > 0 {
			result.Savings = pricing.Format(quote.Savings)
		}
	}
	return result
}

func PlanQuotesToProto(items []*service.PlanQuote) []*types.Plan {
	result := make([]*types.Plan, 0, len(items))
	for _, item := range items {
		result = append(result, PlanToProto(item.Plan, item.Quote))
	}
	return result
}

// ListPlansResponse reports the cycle and currency the quotes were priced in,
// falling back to monthly in the first supported currency when there are none.
func ListPlansResponse(items []*service.PlanQuote, currencies []string) *types.ListPlansResponse {
	resp := &types.ListPlansResponse{
		Plans:      PlanQuotesToProto(items),
		Cycle:      entity.BillingCycleMonthly,
		Currencies: currencies,
	}
	if len(currencies) > 0 {
		resp.Currency = currencies[0]
	}
	if len(items) > 0 && items[0].Quote != nil {
		resp.Cycle = items[0].Quote.Cycle
		resp.Currency = items[0].Quote.Currency
	}
	return resp
}

func SignupPlansToProto(items []*entity.Plan) []*types.SignupPlan {
	result := make([]*types.SignupPlan, 0, len(items))
	for _, item := range items {
		result = append(result, &types.SignupPlan{
			Id:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
			Popular:     item.Popular,
		})
	}
	return result
}

func UserToProto(item *entity.User) *types.User {
	if item == nil {
		return nil
	}

	return &types.User{
		Id:             item.ID,
		OrganizationId: item.OrganizationID,
		Email:          item.Email,
		FullName:       item.FullName,
		Role:           item.Role,
		EmailVerified:  item.EmailVerified,
		CreatedAt:      item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func OrganizationToProto(item *entity.Organization) *types.Organization {
	if item == nil {
		return nil
	}

	return &types.Organization{
		Id:          item.ID,
		Name:        item.Name,
		Slug:        item.Slug,
		Plan:        item.Plan,
		TrialEndsAt: formatTime(item.TrialEndsAt),
		CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func SubscriptionToProto(item *entity.Subscription) *types.Subscription {
	if item == nil {
		return nil
	}

	return &types.Subscription{
		Id:                    item.ID,
		OrganizationId:        item.OrganizationID,
		Plan:                  item.PlanID,
		BillingCycle:          item.BillingCycle,
		Status:                item.Status,
		StatusName:            SubscriptionStatusName(item.Status),
		GatewaySubscriptionId: derefString(item.GatewaySubscriptionID),
		TrialEndsAt:           formatTime(item.TrialEndsAt),
		CardAuthorizedAt:      formatTime(item.CardAuthorizedAt),
		CurrentPeriodStart:    formatTime(item.CurrentPeriodStart),
		CurrentPeriodEnd:      formatTime(item.CurrentPeriodEnd),
		AutoRenew:             item.AutoRenew,
		CancelledAt:           formatTime(item.CancelledAt),
		CreatedAt:             item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:             item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func OrderToProto(item *entity.Order) *types.Order {
	if item == nil {
		return nil
	}

	return &types.Order{
		Id:               item.ID,
		OrganizationId:   item.OrganizationID,
		Plan:             item.PlanID,
		BillingCycle:     item.BillingCycle,
		Amount:           item.AmountMinor,
		DisplayAmount:    pricing.Format(pricing.Money{Currency: item.Currency, Minor: item.AmountMinor, Scale: 2}),
		Currency:         item.Currency,
		Receipt:          item.Receipt,
		GatewayOrderId:   item.GatewayOrderID,
		GatewayPaymentId: derefString(item.GatewayPaymentID),
		Status:           item.Status,
		PaidAt:           formatTime(item.PaidAt),
		CreatedAt:        item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func OrdersToProto(items []*entity.Order) []*types.Order {
	result := make([]*types.Order, 0, len(items))
	for _, item := range items {
		result = append(result, OrderToProto(item))
	}
	return result
}

func ConsentToProto(item *service.ConsentPreferences) *types.ConsentPreferences {
	if item == nil {
		return nil
	}

	result := &types.ConsentPreferences{
		Necessary: item.Necessary,
		Analytics: item.Analytics,
		Marketing: item.Marketing,
	}
	if !item.Timestamp.IsZero() {
		result.Timestamp = item.Timestamp.UTC().Format(time.RFC3339)
	}
	return result
}

func SubscriptionStatusName(status int32) string {
	switch status {
	case entity.SubscriptionStatusPendingAuthorization:
		return "pending_authorization"
	case entity.SubscriptionStatusPastDue:
		return "past_due"
	case entity.SubscriptionStatusTrialing:
		return "trialing"
	case entity.SubscriptionStatusActive:
		return "active"
	default:
		return "inactive"
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
