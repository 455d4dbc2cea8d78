package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const contextKey = "session_claims"

var (
	ErrTokenMissing = errors.New("session token is required")
	ErrTokenInvalid = errors.New("session token is invalid")
)

type Claims struct {
	UserID         string
	OrganizationID string
	Email          string
	FullName       string
	ExpiresAt      time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	OrganizationID string `json:"org_id"`
	Email          string `json:"email"`
	FullName       string `json:"name"`
}

type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret, issuer string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs an HS256 token for the given identity.
func (m *Manager) Issue(c Claims) (string, error) {
	now := m.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		OrganizationID: c.OrganizationID,
		Email:          c.Email,
		FullName:       c.FullName,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (m *Manager) Parse(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenMissing
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if parsed.Subject == "" || parsed.OrganizationID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	return &Claims{
		UserID:         parsed.Subject,
		OrganizationID: parsed.OrganizationID,
		Email:          parsed.Email,
		FullName:       parsed.FullName,
		ExpiresAt:      parsed.ExpiresAt.Time,
	}, nil
}

// Optional attaches claims when a valid bearer token is present and
// otherwise lets the request through anonymously.
func (m *Manager) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if claims, err := m.Parse(bearerToken(ctx.Request())); err == nil {
				ctx.Set(contextKey, claims)
			}
			return next(ctx)
		}
	}
}

func (m *Manager) Required() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := m.Parse(bearerToken(ctx.Request()))
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, map[string]string{
					"error":    "Please sign up first",
					"redirect": "/signup",
				})
			}
			ctx.Set(contextKey, claims)
			return next(ctx)
		}
	}
}

func FromContext(ctx echo.Context) (*Claims, bool) {
	claims, ok := ctx.Get(contextKey).(*Claims)
	return claims, ok && claims != nil
}

func WithClaims(ctx echo.Context, claims *Claims) {
	ctx.Set(contextKey, claims)
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get(echo.HeaderAuthorization))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
