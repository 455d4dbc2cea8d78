package controller

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
)

type consentBody struct {
	Preferences *struct {
		Necessary bool   `json:"necessary"`
		Analytics bool   `json:"analytics"`
		Marketing bool   `json:"marketing"`
		Timestamp string `json:"timestamp"`
	} `json:"preferences"`
	ShowBanner          bool  `json:"show_banner"`
	BannerDelayMs       int64 `json:"banner_delay_ms"`
	InitializeAnalytics bool  `json:"initialize_analytics"`
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestConsentBannerForNewVisitor(t *testing.T) {
	app := newTestApp(t, true)
	ctx, rec := app.context(http.MethodGet, "/consent", "")
	if err := app.consent.GetConsent(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp consentBody
	decode(t, rec, &resp)
	if rec.Code != http.StatusOK || !resp.ShowBanner || resp.BannerDelayMs != 1000 || resp.Preferences != nil {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}

	visitor := findCookie(rec.Result().Cookies(), VisitorCookie)
	if visitor == nil || !visitor.HttpOnly || visitor.Path != "/" {
		t.Fatalf("expected an http-only visitor cookie, got %+v", visitor)
	}
	if _, err := uuid.Parse(visitor.Value); err != nil {
		t.Fatalf("visitor cookie is not a uuid: %q", visitor.Value)
	}
}

func TestConsentAcceptAllSetsCookie(t *testing.T) {
	app := newTestApp(t, true)
	ctx, rec := app.context(http.MethodPost, "/consent/accept-all", "")
	if err := app.consent.AcceptAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp consentBody
	decode(t, rec, &resp)
	if rec.Code != http.StatusOK || !resp.InitializeAnalytics || resp.Preferences == nil || !resp.Preferences.Marketing {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	consent := findCookie(cookies, ConsentCookie)
	if consent == nil || consent.HttpOnly || consent.MaxAge != 365*24*60*60 || consent.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected consent cookie: %+v", consent)
	}
	raw, err := url.QueryUnescape(consent.Value)
	if err != nil {
		t.Fatalf("unescape cookie: %v", err)
	}
	if raw == "" || raw[0] != '{' {
		t.Fatalf("expected json cookie value, got %q", raw)
	}

	// The stored cookie alone is enough to suppress the banner.
	ctx, rec = app.context(http.MethodGet, "/consent", "")
	ctx.Request().AddCookie(&http.Cookie{Name: ConsentCookie, Value: consent.Value})
	if err := app.consent.GetConsent(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decode(t, rec, &resp)
	if resp.ShowBanner || resp.Preferences == nil || !resp.Preferences.Analytics || !resp.Preferences.Necessary {
		t.Fatalf("unexpected state from cookie: %s", rec.Body.String())
	}
}

func TestConsentFallsBackToStoredRecord(t *testing.T) {
	app := newTestApp(t, true)
	visitorID := uuid.NewString()

	ctx, rec := app.context(http.MethodPost, "/consent/preferences", `{"analytics":true,"marketing":false}`)
	ctx.Request().AddCookie(&http.Cookie{Name: VisitorCookie, Value: visitorID})
	if err := app.consent.SavePreferences(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if findCookie(rec.Result().Cookies(), VisitorCookie) != nil {
		t.Fatalf("expected the existing visitor cookie to be reused")
	}

	ctx, rec = app.context(http.MethodPost, "/consent/necessary", "")
	ctx.Request().AddCookie(&http.Cookie{Name: VisitorCookie, Value: visitorID})
	if err := app.consent.AcceptNecessary(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp consentBody
	decode(t, rec, &resp)
	if resp.InitializeAnalytics || resp.Preferences.Analytics || resp.Preferences.Marketing {
		t.Fatalf("unexpected necessary-only response: %s", rec.Body.String())
	}

	ctx, rec = app.context(http.MethodGet, "/consent", "")
	ctx.Request().AddCookie(&http.Cookie{Name: VisitorCookie, Value: visitorID})
	ctx.Request().AddCookie(&http.Cookie{Name: ConsentCookie, Value: "garbage"})
	if err := app.consent.GetConsent(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decode(t, rec, &resp)
	if resp.ShowBanner || resp.Preferences == nil || resp.Preferences.Analytics {
		t.Fatalf("expected the latest stored choice, got %s", rec.Body.String())
	}
}

func TestConsentReplacesInvalidVisitorCookie(t *testing.T) {
	app := newTestApp(t, true)
	ctx, rec := app.context(http.MethodPost, "/consent/accept-all", "")
	ctx.Request().AddCookie(&http.Cookie{Name: VisitorCookie, Value: "not-a-uuid"})
	if err := app.consent.AcceptAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	visitor := findCookie(rec.Result().Cookies(), VisitorCookie)
	if visitor == nil || visitor.Value == "not-a-uuid" {
		t.Fatalf("expected a fresh visitor cookie, got %+v", visitor)
	}
}
