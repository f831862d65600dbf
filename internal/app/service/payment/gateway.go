package payment

import (
	"context"
	"fmt"
	"net/url"

	"github.com/samber/lo"

	models "github.com/schoolhub/feepay/internal/models"
	types "github.com/schoolhub/feepay/pkg/types"
)

// Gateway adapts one payment provider to the coordinator.
type Gateway interface {
	Name() types.PaymentGateway
	// Initiate returns where the payer is sent. Returning ErrGatewayUnavailable
	// means the provider cannot be reached and no fallback is allowed.
	Initiate(ctx context.Context, in *InitiateInput) (*InitiateOutput, error)
	// Verify decides whether the callback data proves a completed payment.
	Verify(ctx context.Context, in *VerifyInput) (*VerifyOutput, error)
}

type InitiateInput struct {
	Transaction *models.PaymentTransaction
	StudentName string
	FeeType     string
	ReturnURL   string
	PayerEmail  string
}

type InitiateOutput struct {
	PaymentURL  string
	PaymentData map[string]any
	// Reference is the provider's session id, when it assigns one.
	Reference *string
	Mock      bool
	// Ack is what the provider answered, kept as response_payload.
	Ack map[string]any
}

type VerifyInput struct {
	Transaction     *models.PaymentTransaction
	GatewayResponse map[string]any
}

type VerifyOutput struct {
	Verified bool
	Mock     bool
	Proof    map[string]any
}

// Registry resolves gateways by name.
type Registry struct {
	gateways map[types.PaymentGateway]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[types.PaymentGateway]Gateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.Name()] = g
	}
	return r
}

func (r *Registry) Get(name types.PaymentGateway) (Gateway, error) {
	g, ok := r.gateways[name]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported gateway %q", ErrInvalidArgument, name)
	}
	return g, nil
}

// callbackURL appends the gateway callback parameters to returnURL, keeping
// any query it already has.
func callbackURL(returnURL string, params ...[2]string) string {
	u, err := url.Parse(returnURL)
	if err != nil {
		return returnURL
	}
	q := u.Query()
	for _, p := range params {
		q.Set(p[0], p[1])
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func mockCallbackURL(gateway types.PaymentGateway, returnURL, token string) string {
	return callbackURL(returnURL,
		[2]string{"gateway", string(gateway)},
		[2]string{"txn", token},
		[2]string{"status", "mock"},
	)
}

// mockInitiate is the simulated checkout used when a provider is unreachable
// or not integrated.
func mockInitiate(gateway types.PaymentGateway, in *InitiateInput, reason string) *InitiateOutput {
	token := in.Transaction.GatewayTransactionID
	return &InitiateOutput{
		PaymentURL: mockCallbackURL(gateway, in.ReturnURL, token),
		PaymentData: map[string]any{
			"transaction_id": token,
			"mock":           true,
		},
		Mock: true,
		Ack:  map[string]any{"mock": true, "reason": reason},
	}
}

var callbackSuccessStatuses = []string{"success", "mock"}

// callbackReportsSuccess reports whether the redirect carried a success status.
func callbackReportsSuccess(resp map[string]any) bool {
	status, _ := resp["status"].(string)
	return lo.Contains(callbackSuccessStatuses, status)
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
