package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/schoolhub/feepay/pkg/types"
)

// PaymentTransaction is one attempt to pay a student fee through a gateway.
// It is created as initiated and settled at most once to success or failed.
type PaymentTransaction struct {
	ID           string               `gorm:"column:id;type:uuid;primary_key" json:"id"`
	StudentFeeID string               `gorm:"column:student_fee_id;type:varchar(64);not null;index" json:"student_fee_id"`
	StudentID    string               `gorm:"column:student_id;type:varchar(64);not null;index" json:"student_id"`
	Amount       decimal.Decimal      `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Gateway      types.PaymentGateway `gorm:"column:gateway;type:varchar(32);not null" json:"gateway"`
	// GatewayTransactionID is the locally generated correlation token echoed back by gateways.
	GatewayTransactionID string `gorm:"column:gateway_transaction_id;type:varchar(64);not null;uniqueIndex" json:"gateway_transaction_id"`
	// GatewayReference is the gateway-assigned session id (khalti pidx), once acknowledged.
	GatewayReference *string                 `gorm:"column:gateway_reference;type:varchar(128)" json:"gateway_reference"`
	Status           types.TransactionStatus `gorm:"column:status;type:varchar(32);not null;index" json:"status"`
	// IsMock marks transactions that went through a simulated gateway path.
	IsMock          bool              `gorm:"column:is_mock;not null;default:false" json:"is_mock"`
	RequestPayload  datatypes.JSONMap `gorm:"column:request_payload;type:jsonb;default:'{}'" json:"request_payload"`
	ResponsePayload datatypes.JSONMap `gorm:"column:response_payload;type:jsonb" json:"response_payload"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}

func (t *PaymentTransaction) Reference() string {
	if t == nil || t.GatewayReference == nil {
		return ""
	}
	return *t.GatewayReference
}
