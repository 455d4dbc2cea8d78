package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-onboarding/app/entity"
)

type preferencesStub struct{ analytics, marketing bool }

func (r preferencesStub) GetAnalytics() bool { return r.analytics }
func (r preferencesStub) GetMarketing() bool { return r.marketing }

func newTestConsentService(repo *mockConsentRepo) *ConsentService {
	svc := NewConsentService(repo, time.Second)
	svc.now = clock
	return svc
}

func TestGetConsentShowsBannerWithoutChoice(t *testing.T) {
	state, err := newTestConsentService(&mockConsentRepo{}).GetConsent(context.Background(), "visitor-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !state.ShowBanner || state.BannerDelayMs != 1000 || state.Preferences != nil {
		t.Fatalf("unexpected state: %+v", state)
	}
}

func TestGetConsentPrefersCookie(t *testing.T) {
	repo := &mockConsentRepo{findLatestFn: func(context.Context, string) (*entity.ConsentRecord, error) {
		t.Fatalf("store must not be read when the cookie holds a choice")
		return nil, nil
	}}
	state, err := newTestConsentService(repo).GetConsent(context.Background(), "visitor-1", `{"necessary":false,"analytics":true,"marketing":false,"timestamp":"2026-02-01T00:00:00Z"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.ShowBanner || !state.Preferences.Analytics || !state.Preferences.Necessary {
		t.Fatalf("unexpected state: %+v", state.Preferences)
	}
}

func TestGetConsentFallsBackToStore(t *testing.T) {
	repo := &mockConsentRepo{findLatestFn: func(_ context.Context, visitorID string) (*entity.ConsentRecord, error) {
		return &entity.ConsentRecord{VisitorID: visitorID, Necessary: true, Marketing: true, CreatedAt: fixedNow}, nil
	}}
	state, err := newTestConsentService(repo).GetConsent(context.Background(), "visitor-1", "not json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.ShowBanner || !state.Preferences.Marketing || state.Preferences.Analytics {
		t.Fatalf("unexpected state: %+v", state.Preferences)
	}

	failing := &mockConsentRepo{findLatestFn: func(context.Context, string) (*entity.ConsentRecord, error) {
		return nil, errors.New("db down")
	}}
	if _, err := newTestConsentService(failing).GetConsent(context.Background(), "visitor-1", ""); err == nil {
		t.Fatalf("expected store error")
	}
}

func TestConsentChoicesAppendRecords(t *testing.T) {
	var records []*entity.ConsentRecord
	repo := &mockConsentRepo{appendFn: func(_ context.Context, record *entity.ConsentRecord) error {
		records = append(records, record)
		return nil
	}}
	svc := newTestConsentService(repo)
	visitor := ConsentVisitor{VisitorID: "visitor-1", IPAddress: "10.0.0.1", UserAgent: "test"}

	all, err := svc.AcceptAll(context.Background(), visitor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !all.InitializeAnalytics || !all.Preferences.Marketing {
		t.Fatalf("unexpected accept-all decision: %+v", all)
	}

	necessary, err := svc.AcceptNecessary(context.Background(), visitor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if necessary.InitializeAnalytics || necessary.Preferences.Analytics || necessary.Preferences.Marketing {
		t.Fatalf("unexpected necessary-only decision: %+v", necessary)
	}

	custom, err := svc.SavePreferences(context.Background(), visitor, preferencesStub{marketing: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if custom.InitializeAnalytics || !custom.Preferences.Marketing {
		t.Fatalf("unexpected custom decision: %+v", custom)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for _, record := range records {
		if !record.Necessary || record.IPAddress != "10.0.0.1" || !record.CreatedAt.Equal(fixedNow) {
			t.Fatalf("unexpected record: %+v", record)
		}
	}

	var cookie ConsentPreferences
	if err := json.Unmarshal([]byte(custom.CookieValue), &cookie); err != nil {
		t.Fatalf("cookie value is not JSON: %v", err)
	}
	if !cookie.Marketing || cookie.Analytics || !cookie.Timestamp.Equal(fixedNow) {
		t.Fatalf("unexpected cookie: %+v", cookie)
	}
}

func TestConsentRequiresVisitor(t *testing.T) {
	if _, err := newTestConsentService(&mockConsentRepo{}).AcceptAll(context.Background(), ConsentVisitor{}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}
