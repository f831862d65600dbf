package payment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/schoolhub/feepay/pkg/config"
	"github.com/schoolhub/feepay/pkg/logctx"
	"github.com/schoolhub/feepay/pkg/metrics"
	types "github.com/schoolhub/feepay/pkg/types"
)

// ImePayGateway has no live integration yet; every checkout is simulated.
type ImePayGateway struct {
	allowMock bool
	log       *zap.SugaredLogger
	metrics   *metrics.PaymentRecorder
}

func NewImePayGateway(cfg *config.Config, log *zap.SugaredLogger, rec *metrics.PaymentRecorder) *ImePayGateway {
	return &ImePayGateway{allowMock: cfg.Payment.AllowMock, log: log, metrics: rec}
}

func (g *ImePayGateway) Name() types.PaymentGateway { return types.PaymentGatewayImePay }

func (g *ImePayGateway) Initiate(ctx context.Context, in *InitiateInput) (*InitiateOutput, error) {
	if !g.allowMock {
		return nil, fmt.Errorf("%w: imepay is not integrated", ErrGatewayUnavailable)
	}
	logctx.FromCtx(ctx, g.log).Warnw("imepay checkout is simulated", "transaction_id", in.Transaction.GatewayTransactionID)
	g.metrics.GatewayFallback(string(types.PaymentGatewayImePay), "initiate")
	return mockInitiate(types.PaymentGatewayImePay, in, "imepay not integrated"), nil
}

func (g *ImePayGateway) Verify(_ context.Context, in *VerifyInput) (*VerifyOutput, error) {
	if !g.allowMock {
		return nil, fmt.Errorf("%w: imepay is not integrated", ErrGatewayUnavailable)
	}
	g.metrics.GatewayFallback(string(types.PaymentGatewayImePay), "verify")
	return &VerifyOutput{
		Verified: callbackReportsSuccess(in.GatewayResponse),
		Mock:     true,
		Proof: map[string]any{
			"mock":   true,
			"status": stringField(in.GatewayResponse, "status"),
		},
	}, nil
}
