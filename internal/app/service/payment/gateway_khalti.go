package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	models "github.com/schoolhub/feepay/internal/models"
	"github.com/schoolhub/feepay/internal/platform/khalti"
	"github.com/schoolhub/feepay/pkg/config"
	"github.com/schoolhub/feepay/pkg/logctx"
	"github.com/schoolhub/feepay/pkg/metrics"
	types "github.com/schoolhub/feepay/pkg/types"
)

type khaltiAPI interface {
	Initiate(ctx context.Context, req *khalti.InitiateRequest) (*khalti.InitiateResponse, error)
	Lookup(ctx context.Context, pidx string) (*khalti.LookupResponse, error)
}

var paisaPerRupee = decimal.NewFromInt(100)

// KhaltiGateway talks to the Khalti ePayment API. Failed calls fall back to
// the mock path when allowed.
type KhaltiGateway struct {
	client     khaltiAPI
	websiteURL string
	allowMock  bool
	log        *zap.SugaredLogger
	metrics    *metrics.PaymentRecorder
}

func NewKhaltiGateway(cfg *config.Config, client *khalti.Client, log *zap.SugaredLogger, rec *metrics.PaymentRecorder) *KhaltiGateway {
	return newKhaltiGateway(client, cfg.Payment.WebsiteURL, cfg.Payment.AllowMock, log, rec)
}

func newKhaltiGateway(client khaltiAPI, websiteURL string, allowMock bool, log *zap.SugaredLogger, rec *metrics.PaymentRecorder) *KhaltiGateway {
	return &KhaltiGateway{client: client, websiteURL: websiteURL, allowMock: allowMock, log: log, metrics: rec}
}

func (g *KhaltiGateway) Name() types.PaymentGateway { return types.PaymentGatewayKhalti }

func (g *KhaltiGateway) Initiate(ctx context.Context, in *InitiateInput) (*InitiateOutput, error) {
	txn := in.Transaction
	req := &khalti.InitiateRequest{
		ReturnURL:         in.ReturnURL,
		WebsiteURL:        g.websiteURL,
		Amount:            txn.Amount.Mul(paisaPerRupee).IntPart(),
		PurchaseOrderID:   txn.GatewayTransactionID,
		PurchaseOrderName: strings.TrimSpace(in.FeeType + " - " + in.StudentName),
		CustomerInfo:      &khalti.CustomerInfo{Name: in.StudentName, Email: in.PayerEmail},
	}

	start := time.Now()
	resp, err := g.client.Initiate(ctx, req)
	g.metrics.ObserveGatewayCall(string(types.PaymentGatewayKhalti), "initiate", start)
	if err != nil || resp.PaymentURL == "" {
		if err == nil {
			err = fmt.Errorf("khalti: empty payment_url")
		}
		if !g.allowMock {
			return nil, fmt.Errorf("%w: khalti initiate: %v", ErrGatewayUnavailable, err)
		}
		logctx.FromCtx(ctx, g.log).Warnw("khalti initiate failed, falling back to mock checkout",
			"transaction_id", txn.GatewayTransactionID, "error", err)
		g.metrics.GatewayFallback(string(types.PaymentGatewayKhalti), "initiate")
		return mockInitiate(types.PaymentGatewayKhalti, in, err.Error()), nil
	}

	pidx := resp.Pidx
	return &InitiateOutput{
		PaymentURL: resp.PaymentURL,
		PaymentData: map[string]any{
			"transaction_id": txn.GatewayTransactionID,
			"pidx":           resp.Pidx,
			"expires_at":     resp.ExpiresAt,
		},
		Reference: &pidx,
		Ack: map[string]any{
			"pidx":        resp.Pidx,
			"payment_url": resp.PaymentURL,
			"expires_at":  resp.ExpiresAt,
			"expires_in":  resp.ExpiresIn,
		},
	}, nil
}

// Verify looks up the session stored at initiation. A pidx sent with the
// callback is never looked up, so a transaction cannot be settled by another
// payment's session.
func (g *KhaltiGateway) Verify(ctx context.Context, in *VerifyInput) (*VerifyOutput, error) {
	txn := in.Transaction
	pidx := txn.Reference()

	var lookupErr error
	if pidx == "" {
		lookupErr = fmt.Errorf("khalti: no payment session was opened for this transaction")
	} else {
		start := time.Now()
		resp, err := g.client.Lookup(ctx, pidx)
		g.metrics.ObserveGatewayCall(string(types.PaymentGatewayKhalti), "lookup", start)
		if err == nil {
			return g.checkLookup(ctx, txn, resp), nil
		}
		lookupErr = err
	}

	if !g.allowMock {
		return nil, fmt.Errorf("%w: khalti lookup: %v", ErrGatewayUnavailable, lookupErr)
	}
	logctx.FromCtx(ctx, g.log).Warnw("khalti lookup unavailable, trusting callback status",
		"transaction_id", txn.GatewayTransactionID, "error", lookupErr)
	g.metrics.GatewayFallback(string(types.PaymentGatewayKhalti), "verify")
	return &VerifyOutput{
		Verified: callbackReportsSuccess(in.GatewayResponse),
		Mock:     true,
		Proof: map[string]any{
			"mock":          true,
			"pidx":          pidx,
			"callback_pidx": stringField(in.GatewayResponse, "pidx"),
			"status":        stringField(in.GatewayResponse, "status"),
			"reason":        lookupErr.Error(),
		},
	}, nil
}

// checkLookup accepts a completed session only when it paid this
// transaction's amount for this transaction's order.
func (g *KhaltiGateway) checkLookup(ctx context.Context, txn *models.PaymentTransaction, resp *khalti.LookupResponse) *VerifyOutput {
	expected := txn.Amount.Mul(paisaPerRupee).IntPart()
	proof := map[string]any{
		"pidx":            resp.Pidx,
		"status":          resp.Status,
		"total_amount":    resp.TotalAmount,
		"expected_amount": expected,
		"transaction_id":  resp.TransactionID,
		"fee":             resp.Fee,
		"refunded":        resp.Refunded,
	}
	if resp.PurchaseOrderID != "" {
		proof["purchase_order_id"] = resp.PurchaseOrderID
	}

	var mismatch string
	switch {
	case resp.Pidx != "" && resp.Pidx != txn.Reference():
		mismatch = "pidx"
	case resp.TotalAmount != expected:
		mismatch = "total_amount"
	case resp.PurchaseOrderID != "" && resp.PurchaseOrderID != txn.GatewayTransactionID:
		mismatch = "purchase_order_id"
	}
	if mismatch != "" {
		proof["mismatch"] = mismatch
		logctx.FromCtx(ctx, g.log).Warnw("khalti lookup does not match transaction",
			"transaction_id", txn.GatewayTransactionID, "mismatch", mismatch,
			"total_amount", resp.TotalAmount, "expected_amount", expected)
		return &VerifyOutput{Verified: false, Proof: proof}
	}
	return &VerifyOutput{Verified: resp.Completed(), Proof: proof}
}
