package types

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/labstack/echo/v4"
)

const minPasswordLength = 8

type SignupRequest struct {
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	OrganizationName string `json:"organization_name"`
	Slug             string `json:"slug"`
	AcceptTerms      bool   `json:"accept_terms"`
	Plan             string `json:"plan"`
	Role             string `json:"role"`
}

func (x *SignupRequest) GetFullName() string {
	if x != nil {
		return x.FullName
	}
	return ""
}

func (x *SignupRequest) GetEmail() string {
	if x != nil {
		return x.Email
	}
	return ""
}

func (x *SignupRequest) GetPassword() string {
	if x != nil {
		return x.Password
	}
	return ""
}

func (x *SignupRequest) GetOrganizationName() string {
	if x != nil {
		return x.OrganizationName
	}
	return ""
}

func (x *SignupRequest) GetSlug() string {
	if x != nil {
		return x.Slug
	}
	return ""
}

func (x *SignupRequest) GetAcceptTerms() bool {
	if x != nil {
		return x.AcceptTerms
	}
	return false
}

func (x *SignupRequest) GetPlan() string {
	if x != nil {
		return x.Plan
	}
	return ""
}

func (x *SignupRequest) GetRole() string {
	if x != nil {
		return x.Role
	}
	return ""
}

func NewSignupRequestFromContext(ctx echo.Context) (*SignupRequest, error) {
	var body SignupRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.FullName = strings.TrimSpace(body.FullName)
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	body.OrganizationName = strings.TrimSpace(body.OrganizationName)
	body.Slug = strings.TrimSpace(body.Slug)
	body.Plan = strings.ToLower(strings.TrimSpace(body.Plan))
	body.Role = strings.ToLower(strings.TrimSpace(body.Role))
	if body.Plan == "" {
		body.Plan = strings.ToLower(strings.TrimSpace(ctx.QueryParam("plan")))
	}
	return &body, nil
}

// Validate checks fields in the order the signup form reports them.
func (r *SignupRequest) Validate() error {
	if !r.GetAcceptTerms() {
		return errors.New("Please accept the terms and conditions")
	}
	if len(r.GetPassword()) < minPasswordLength {
		return errors.New("Password must be at least 8 characters")
	}
	if !validEmail(r.GetEmail()) {
		return errors.New("Please enter a valid email address")
	}
	if r.GetFullName() == "" {
		return errors.New("Full name is required")
	}
	if r.GetOrganizationName() == "" {
		return errors.New("Organization name is required")
	}
	switch r.GetPlan() {
	case "", "standard", "pro", "premium":
	default:
		return errors.New("Invalid plan selected")
	}
	switch r.GetRole() {
	case "", "owner", "coach":
	default:
		return errors.New("Role must be owner or coach")
	}
	return nil
}

type User struct {
	Id             uint64 `json:"id"`
	OrganizationId uint64 `json:"organization_id"`
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	Role           string `json:"role"`
	EmailVerified  bool   `json:"email_verified"`
	CreatedAt      string `json:"created_at"`
}

type Organization struct {
	Id          uint64 `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Plan        string `json:"plan"`
	TrialEndsAt string `json:"trial_ends_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type SignupResponse struct {
	User                      *User         `json:"user"`
	Organization              *Organization `json:"organization"`
	Token                     string        `json:"token"`
	EmailVerificationRequired bool          `json:"email_verification_required"`
	Message                   string        `json:"message"`
	Redirect                  string        `json:"redirect"`
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	parsed, err := mail.ParseAddress(email)
	if err != nil || parsed.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}
