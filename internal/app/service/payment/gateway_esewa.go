package payment

import (
	"context"
	"net/url"

	"github.com/schoolhub/feepay/pkg/config"
	types "github.com/schoolhub/feepay/pkg/types"
)

// EsewaGateway builds the ePay form redirect locally and verifies by matching
// the echoed order id against the correlation token.
type EsewaGateway struct {
	paymentURL   string
	merchantCode string
}

func NewEsewaGateway(cfg *config.Config) *EsewaGateway {
	return &EsewaGateway{
		paymentURL:   cfg.Payment.Esewa.PaymentURL,
		merchantCode: cfg.Payment.Esewa.MerchantCode,
	}
}

func (g *EsewaGateway) Name() types.PaymentGateway { return types.PaymentGatewayEsewa }

func (g *EsewaGateway) Initiate(_ context.Context, in *InitiateInput) (*InitiateOutput, error) {
	token := in.Transaction.GatewayTransactionID
	amount := in.Transaction.Amount.String()

	q := url.Values{}
	q.Set("amt", amount)
	q.Set("pdc", "0")
	q.Set("psc", "0")
	q.Set("txAmt", "0")
	q.Set("tAmt", amount)
	q.Set("pid", token)
	q.Set("scd", g.merchantCode)
	q.Set("su", callbackURL(in.ReturnURL,
		[2]string{"gateway", string(types.PaymentGatewayEsewa)},
		[2]string{"status", "success"},
		[2]string{"txn", token},
	))
	q.Set("fu", callbackURL(in.ReturnURL,
		[2]string{"gateway", string(types.PaymentGatewayEsewa)},
		[2]string{"status", "failure"},
		[2]string{"txn", token},
	))

	params := make(map[string]any, len(q))
	for k := range q {
		params[k] = q.Get(k)
	}
	return &InitiateOutput{
		PaymentURL: g.paymentURL + "?" + q.Encode(),
		PaymentData: map[string]any{
			"transaction_id": token,
			"params":         params,
		},
		Ack: map[string]any{"params": params},
	}, nil
}

func (g *EsewaGateway) Verify(_ context.Context, in *VerifyInput) (*VerifyOutput, error) {
	oid := stringField(in.GatewayResponse, "oid")
	verified := oid != "" && oid == in.Transaction.GatewayTransactionID
	return &VerifyOutput{
		Verified: verified,
		Proof: map[string]any{
			"oid":    oid,
			"ref_id": stringField(in.GatewayResponse, "refId"),
			"amt":    stringField(in.GatewayResponse, "amt"),
		},
	}, nil
}
