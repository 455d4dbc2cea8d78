package entity

import "time"

const (
	PlanStatusInactive int32 = 0
	PlanStatusActive   int32 = 10
)

const (
	PlanStandard   = "standard"
	PlanPro        = "pro"
	PlanPremium    = "premium"
	PlanEnterprise = "enterprise"
)

const (
	BillingCycleMonthly = "monthly"
	BillingCycleYearly  = "yearly"
)

type PlanFeature struct {
	Text     string `json:"text"`
	Included bool   `json:"included"`
	Tooltip  string `json:"tooltip,omitempty"`
}

// PlanLimits mirrors what the gateway-backed plan unlocks. MaxClients of -1 means unlimited.
type PlanLimits struct {
	MaxClients          int    `json:"max_clients"`
	VideoCallHours      int    `json:"video_call_hours"`
	WhatsAppIntegration bool   `json:"whatsapp_integration"`
	AIFeatures          bool   `json:"ai_features"`
	Analytics           string `json:"analytics"`
}

type Plan struct {
	ID                  string
	Name                string
	Description         string
	Price               int64
	YearlyPrice         int64
	Period              string
	CTA                 string
	Popular             bool
	SortOrder           int32
	Status              int32
	Features            []PlanFeature
	Limits              PlanLimits
	GatewayPlanID       string
	GatewayYearlyPlanID string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (p *Plan) GatewayPlanFor(cycle string) string {
	if cycle == BillingCycleYearly && p.GatewayYearlyPlanID != "" {
		return p.GatewayYearlyPlanID
	}
	return p.GatewayPlanID
}
