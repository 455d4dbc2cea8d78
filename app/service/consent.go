package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-onboarding/app/entity"
)

type consentRepository interface {
	Append(ctx context.Context, record *entity.ConsentRecord) error
	FindLatest(ctx context.Context, visitorID string) (*entity.ConsentRecord, error)
}

type savePreferencesRequest interface {
	GetAnalytics() bool
	GetMarketing() bool
}

// ConsentPreferences is also the JSON stored in the cookie-consent cookie.
type ConsentPreferences struct {
	Necessary bool      `json:"necessary"`
	Analytics bool      `json:"analytics"`
	Marketing bool      `json:"marketing"`
	Timestamp time.Time `json:"timestamp"`
}

type ConsentVisitor struct {
	VisitorID string
	IPAddress string
	UserAgent string
}

type ConsentState struct {
	Preferences   *ConsentPreferences
	ShowBanner    bool
	BannerDelayMs int64
}

type ConsentDecision struct {
	Preferences         ConsentPreferences
	CookieValue         string
	InitializeAnalytics bool
}

type ConsentService struct {
	consentRepo consentRepository
	bannerDelay time.Duration
	now         func() time.Time
}

func NewConsentService(consentRepo consentRepository, bannerDelay time.Duration) *ConsentService {
	return &ConsentService{consentRepo: consentRepo, bannerDelay: bannerDelay, now: time.Now}
}

// GetConsent prefers the choice carried in the cookie and falls back to the
// visitor's latest stored record.
func (s *ConsentService) GetConsent(ctx context.Context, visitorID, cookieValue string) (*ConsentState, error) {
	state := &ConsentState{BannerDelayMs: s.bannerDelay.Milliseconds()}

	if prefs, ok := ParseConsentCookie(cookieValue); ok {
		state.Preferences = prefs
		return state, nil
	}

	if strings.TrimSpace(visitorID) != "" {
		record, err := s.consentRepo.FindLatest(ctx, visitorID)
		if err != nil {
			return nil, err
		}
		if record != nil {
			state.Preferences = &ConsentPreferences{
				Necessary: true,
				Analytics: record.Analytics,
				Marketing: record.Marketing,
				Timestamp: record.CreatedAt.UTC(),
			}
			return state, nil
		}
	}

	state.ShowBanner = true
	return state, nil
}

func (s *ConsentService) AcceptAll(ctx context.Context, visitor ConsentVisitor) (*ConsentDecision, error) {
	return s.record(ctx, visitor, true, true)
}

func (s *ConsentService) AcceptNecessary(ctx context.Context, visitor ConsentVisitor) (*ConsentDecision, error) {
	return s.record(ctx, visitor, false, false)
}

func (s *ConsentService) SavePreferences(ctx context.Context, visitor ConsentVisitor, req savePreferencesRequest) (*ConsentDecision, error) {
	return s.record(ctx, visitor, req.GetAnalytics(), req.GetMarketing())
}

func (s *ConsentService) record(ctx context.Context, visitor ConsentVisitor, analytics, marketing bool) (*ConsentDecision, error) {
	if strings.TrimSpace(visitor.VisitorID) == "" {
		return nil, fmt.Errorf("%w: visitor id is required", ErrInvalidRequest)
	}

	now := s.now().UTC()
	record := &entity.ConsentRecord{
		VisitorID: visitor.VisitorID,
		Necessary: true,
		Analytics: analytics,
		Marketing: marketing,
		IPAddress: visitor.IPAddress,
		UserAgent: visitor.UserAgent,
		CreatedAt: now,
	}
	if err := s.consentRepo.Append(ctx, record); err != nil {
		return nil, err
	}

	prefs := ConsentPreferences{Necessary: true, Analytics: analytics, Marketing: marketing, Timestamp: now}
	raw, err := json.Marshal(prefs)
	if err != nil {
		return nil, err
	}

	return &ConsentDecision{
		Preferences:         prefs,
		CookieValue:         string(raw),
		InitializeAnalytics: analytics,
	}, nil
}

// ParseConsentCookie decodes a cookie-consent value. Anything unreadable counts as no choice.
func ParseConsentCookie(value string) (*ConsentPreferences, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, false
	}
	var prefs ConsentPreferences
	if err := json.Unmarshal([]byte(value), &prefs); err != nil {
		return nil, false
	}
	prefs.Necessary = true
	return &prefs, true
}
