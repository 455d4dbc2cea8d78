package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

const defaultSandboxKeyID = "rzp_test_sandbox"

// SandboxGateway fabricates gateway objects locally so checkout flows can run
// without provider credentials. Signatures still verify against the configured secret.
type SandboxGateway struct {
	keyID string
}

func NewSandboxGateway(keyID string) *SandboxGateway {
	if strings.TrimSpace(keyID) == "" {
		keyID = defaultSandboxKeyID
	}
	return &SandboxGateway{keyID: keyID}
}

func (g *SandboxGateway) KeyID() string {
	return g.keyID
}

func (g *SandboxGateway) CreateOrder(_ context.Context, req OrderRequest) (*Order, error) {
	return &Order{
		ID:          sandboxID("order"),
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Status:      "created",
	}, nil
}

func (g *SandboxGateway) CreateSubscription(_ context.Context, _ SubscriptionRequest) (*Subscription, error) {
	return &Subscription{ID: sandboxID("sub"), Status: "created"}, nil
}

func (g *SandboxGateway) CancelSubscription(context.Context, string, bool) error {
	return nil
}

func sandboxID(prefix string) string {
	return prefix + "_sbx" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
}
