package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/schoolhub/feepay/pkg/types"
)

// FeePayment is the ledger entry created when a PaymentTransaction succeeds.
// TransactionID is unique, so a transaction can produce at most one payment.
type FeePayment struct {
	ID                   string               `gorm:"column:id;type:uuid;primary_key" json:"id"`
	StudentFeeID         string               `gorm:"column:student_fee_id;type:varchar(64);not null;index" json:"student_fee_id"`
	StudentID            string               `gorm:"column:student_id;type:varchar(64);not null;index" json:"student_id"`
	PaymentTransactionID string               `gorm:"column:payment_transaction_id;type:uuid;not null" json:"payment_transaction_id"`
	TransactionID        string               `gorm:"column:transaction_id;type:varchar(64);not null;uniqueIndex" json:"transaction_id"`
	Amount               decimal.Decimal      `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	PaymentMethod        types.PaymentGateway `gorm:"column:payment_method;type:varchar(32);not null" json:"payment_method"`
	ReceiptNumber        string               `gorm:"column:receipt_number;type:varchar(32);not null;uniqueIndex" json:"receipt_number"`
	VerificationPayload  datatypes.JSONMap    `gorm:"column:verification_payload;type:jsonb;default:'{}'" json:"verification_payload"`
	PaidAt               time.Time            `gorm:"column:paid_at;not null" json:"paid_at"`
	CreatedAt            time.Time            `json:"created_at"`
}

func (FeePayment) TableName() string {
	return "fee_payments"
}
