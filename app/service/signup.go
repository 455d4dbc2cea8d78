package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-onboarding/app/entity"
	"github.com/vibast-solutions/ms-go-onboarding/app/repository"
	"github.com/vibast-solutions/ms-go-onboarding/app/session"
	"golang.org/x/crypto/bcrypt"
)

const maxSlugLength = 48

type signupRequest interface {
	GetFullName() string
	GetEmail() string
	GetPassword() string
	GetOrganizationName() string
	GetSlug() string
	GetPlan() string
	GetRole() string
}

type tokenIssuer interface {
	Issue(claims session.Claims) (string, error)
}

type SignupConfig struct {
	TrialDays                int
	RequireEmailVerification bool
	BrandName                string
}

type SignupResult struct {
	User                      *entity.User
	Organization              *entity.Organization
	Token                     string
	EmailVerificationRequired bool
	Message                   string
	Redirect                  string
}

type SignupService struct {
	accountRepo accountRepository
	planRepo    planRepository
	tokens      tokenIssuer
	cfg         SignupConfig
	hash        func(password []byte) ([]byte, error)
	now         func() time.Time
}

func NewSignupService(accountRepo accountRepository, planRepo planRepository, tokens tokenIssuer, cfg SignupConfig) *SignupService {
	return &SignupService{
		accountRepo: accountRepo,
		planRepo:    planRepo,
		tokens:      tokens,
		cfg:         cfg,
		hash: func(password []byte) ([]byte, error) {
			return bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
		},
		now: time.Now,
	}
}

func (s *SignupService) Signup(ctx context.Context, req signupRequest) (*SignupResult, error) {
	planID := strings.ToLower(strings.TrimSpace(req.GetPlan()))
	if planID == "" {
		planID = entity.PlanStandard
	}
	plan, err := findSellablePlan(ctx, s.planRepo, planID)
	if err != nil {
		return nil, err
	}

	role := strings.ToLower(strings.TrimSpace(req.GetRole()))
	switch role {
	case "":
		role = entity.RoleOwner
	case entity.RoleOwner, entity.RoleCoach:
	default:
		return nil, fmt.Errorf("%w: role must be owner or coach", ErrInvalidRequest)
	}

	slug := Slugify(req.GetSlug())
	if slug == "" {
		slug = Slugify(req.GetOrganizationName())
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: organization name must contain letters or digits", ErrInvalidRequest)
	}

	taken, err := s.accountRepo.SlugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}
	taken, err = s.accountRepo.EmailExists(ctx, req.GetEmail())
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := s.hash([]byte(req.GetPassword()))
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	trialEndsAt := now.Add(trialDuration(s.cfg.TrialDays))
	org := &entity.Organization{
		Name:        strings.TrimSpace(req.GetOrganizationName()),
		Slug:        slug,
		Plan:        plan.ID,
		TrialEndsAt: &trialEndsAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	user := &entity.User{
		Email:         strings.ToLower(strings.TrimSpace(req.GetEmail())),
		FullName:      strings.TrimSpace(req.GetFullName()),
		Role:          role,
		PasswordHash:  string(hash),
		EmailVerified: !s.cfg.RequireEmailVerification,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.accountRepo.CreateOwner(ctx, org, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlugTaken):
			return nil, ErrSlugTaken
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, ErrEmailTaken
		default:
			return nil, err
		}
	}

	token, err := s.tokens.Issue(session.Claims{
		UserID:         strconv.FormatUint(user.ID, 10),
		OrganizationID: strconv.FormatUint(org.ID, 10),
		Email:          user.Email,
		FullName:       user.FullName,
	})
	if err != nil {
		return nil, err
	}

	result := &SignupResult{
		User:                      user,
		Organization:              org,
		Token:                     token,
		EmailVerificationRequired: s.cfg.RequireEmailVerification,
	}
	if s.cfg.RequireEmailVerification {
		result.Redirect = "/auth/verify-email?email=" + url.QueryEscape(user.Email)
		result.Message = "Account created! Please check your email to verify your account."
	} else {
		result.Redirect = "/dashboard"
		result.Message = "Account created! Welcome to " + s.cfg.BrandName
	}
	return result, nil
}

// Slugify lowercases name, collapses every run of non-alphanumerics into a
// single dash and trims the result to the slug column width.
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}

	slug := b.String()
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}
