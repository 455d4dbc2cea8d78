package types

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
)

type ListPlansRequest struct {
	Cycle    string `json:"cycle"`
	Currency string `json:"currency"`
}

func (x *ListPlansRequest) GetCycle() string {
	if x != nil {
		return x.Cycle
	}
	return ""
}

func (x *ListPlansRequest) GetCurrency() string {
	if x != nil {
		return x.Currency
	}
	return ""
}

func NewListPlansRequestFromContext(ctx echo.Context) (*ListPlansRequest, error) {
	return &ListPlansRequest{
		Cycle:    strings.ToLower(strings.TrimSpace(ctx.QueryParam("cycle"))),
		Currency: strings.ToUpper(strings.TrimSpace(ctx.QueryParam("currency"))),
	}, nil
}

func (r *ListPlansRequest) Validate() error {
	return validateCycle(r.GetCycle())
}

type GetPlanRequest struct {
	Id       string `json:"id"`
	Cycle    string `json:"cycle"`
	Currency string `json:"currency"`
}

func (x *GetPlanRequest) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

func (x *GetPlanRequest) GetCycle() string {
	if x != nil {
		return x.Cycle
	}
	return ""
}

func (x *GetPlanRequest) GetCurrency() string {
	if x != nil {
		return x.Currency
	}
	return ""
}

func NewGetPlanRequestFromContext(ctx echo.Context) (*GetPlanRequest, error) {
	return &GetPlanRequest{
		Id:       strings.ToLower(strings.TrimSpace(ctx.Param("id"))),
		Cycle:    strings.ToLower(strings.TrimSpace(ctx.QueryParam("cycle"))),
		Currency: strings.ToUpper(strings.TrimSpace(ctx.QueryParam("currency"))),
	}, nil
}

func (r *GetPlanRequest) Validate() error {
	if r.GetId() == "" {
		return errors.New("plan id is required")
	}
	return validateCycle(r.GetCycle())
}

type SelectPlanRequest struct {
	Plan     string `json:"plan"`
	Cycle    string `json:"cycle"`
	Currency string `json:"currency"`
}

func (x *SelectPlanRequest) GetPlan() string {
	if x != nil {
		return x.Plan
	}
	return ""
}

func (x *SelectPlanRequest) GetCycle() string {
	if x != nil {
		return x.Cycle
	}
	return ""
}

func (x *SelectPlanRequest) GetCurrency() string {
	if x != nil {
		return x.Currency
	}
	return ""
}

func NewSelectPlanRequestFromContext(ctx echo.Context) (*SelectPlanRequest, error) {
	var body SelectPlanRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Plan = strings.ToLower(strings.TrimSpace(body.Plan))
	body.Cycle = strings.ToLower(strings.TrimSpace(body.Cycle))
	body.Currency = strings.ToUpper(strings.TrimSpace(body.Currency))
	return &body, nil
}

func (r *SelectPlanRequest) Validate() error {
	if r.GetPlan() == "" {
		return errors.New("plan is required")
	}
	return validateCycle(r.GetCycle())
}

type PlanFeature struct {
	Text     string `json:"text"`
	Included bool   `json:"included"`
	Tooltip  string `json:"tooltip,omitempty"`
}

type PlanLimits struct {
	MaxClients          int32  `json:"max_clients"`
	VideoCallHours      int32  `json:"video_call_hours"`
	WhatsappIntegration bool   `json:"whatsapp_integration"`
	AiFeatures          bool   `json:"ai_features"`
	Analytics           string `json:"analytics"`
}

// Plan is a plan card. Price is the headline per-month figure in the display currency.
type Plan struct {
	Id           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Price        string         `json:"price"`
	Period       string         `json:"period"`
	BilledAmount string         `json:"billed_amount"`
	Savings      string         `json:"savings,omitempty"`
	Cycle        string         `json:"cycle"`
	Currency     string         `json:"currency"`
	MonthlyPrice int64          `json:"monthly_price"`
	YearlyPrice  int64          `json:"yearly_price"`
	Cta          string         `json:"cta"`
	Popular      bool           `json:"popular"`
	Features     []*PlanFeature `json:"features"`
	Limits       *PlanLimits    `json:"limits"`
}

type ListPlansResponse struct {
	Plans      []*Plan  `json:"plans"`
	Cycle      string   `json:"cycle"`
	Currency   string   `json:"currency"`
	Currencies []string `json:"currencies"`
}

type GetPlanResponse struct {
	Plan *Plan `json:"plan"`
}

type SignupPlan struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Popular     bool   `json:"popular"`
}

type SignupPlansResponse struct {
	Plans []*SignupPlan `json:"plans"`
}

type SelectPlanResponse struct {
	Plan     string `json:"plan"`
	Cycle    string `json:"cycle"`
	Currency string `json:"currency"`
	Redirect string `json:"redirect"`
}

type CurrenciesResponse struct {
	Base       string   `json:"base"`
	Currencies []string `json:"currencies"`
}

func validateCycle(cycle string) error {
	switch cycle {
	case "", "monthly", "yearly":
		return nil
	default:
		return errors.New("cycle must be monthly or yearly")
	}
}
