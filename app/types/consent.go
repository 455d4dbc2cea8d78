package types

import (
	"github.com/labstack/echo/v4"
)

type SavePreferencesRequest struct {
	Analytics bool `json:"analytics"`
	Marketing bool `json:"marketing"`
}

func (x *SavePreferencesRequest) GetAnalytics() bool {
	if x != nil {
		return x.Analytics
	}
	return false
}

func (x *SavePreferencesRequest) GetMarketing() bool {
	if x != nil {
		return x.Marketing
	}
	return false
}

func NewSavePreferencesRequestFromContext(ctx echo.Context) (*SavePreferencesRequest, error) {
	var body SavePreferencesRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

func (r *SavePreferencesRequest) Validate() error {
	return nil
}

type ConsentPreferences struct {
	Necessary bool   `json:"necessary"`
	Analytics bool   `json:"analytics"`
	Marketing bool   `json:"marketing"`
	Timestamp string `json:"timestamp,omitempty"`
}

type ConsentResponse struct {
	Preferences   *ConsentPreferences `json:"preferences,omitempty"`
	ShowBanner    bool                `json:"show_banner"`
	BannerDelayMs int64               `json:"banner_delay_ms"`
}

type ConsentDecisionResponse struct {
	Preferences         *ConsentPreferences `json:"preferences"`
	InitializeAnalytics bool                `json:"initialize_analytics"`
}
