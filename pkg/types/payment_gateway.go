package types

import "github.com/samber/lo"

type PaymentGateway string

const (
	PaymentGatewayEsewa  PaymentGateway = "esewa"
	PaymentGatewayKhalti PaymentGateway = "khalti"
	PaymentGatewayImePay PaymentGateway = "imepay"
)

var PaymentGateways = []PaymentGateway{
	PaymentGatewayEsewa,
	PaymentGatewayKhalti,
	PaymentGatewayImePay,
}

func (g PaymentGateway) Valid() bool {
	return lo.Contains(PaymentGateways, g)
}

type TransactionStatus string

const (
	TransactionStatusInitiated TransactionStatus = "initiated"
	TransactionStatusSuccess   TransactionStatus = "success"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Terminal reports whether no further transition is allowed from s.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusSuccess || s == TransactionStatusFailed
}

type PaymentEventKind string

const (
	PaymentEventKindInitiate PaymentEventKind = "initiate"
	PaymentEventKindVerify   PaymentEventKind = "verify"
)
