package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/schoolhub/feepay/pkg/types"
)

type PaymentGatewayEventStatus string

const (
	PaymentGatewayEventStatusReceived     PaymentGatewayEventStatus = "received"
	PaymentGatewayEventStatusHandled      PaymentGatewayEventStatus = "handled"
	PaymentGatewayEventStatusHandleFailed PaymentGatewayEventStatus = "handle_failed"
)

// PaymentGatewayEvent is the audit trail of initiate/verify requests: one row
// when a request is received and one with its outcome.
type PaymentGatewayEvent struct {
	ID            string                    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Gateway       types.PaymentGateway      `gorm:"column:gateway;type:varchar(32);not null" json:"gateway"`
	Kind          types.PaymentEventKind    `gorm:"column:kind;type:varchar(32);not null" json:"kind"`
	TraceID       string                    `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	TransactionID string                    `gorm:"column:transaction_id;type:varchar(64);index" json:"transaction_id"`
	EventTime     time.Time                 `gorm:"column:event_time" json:"event_time"`
	Data          datatypes.JSON            `gorm:"column:data;type:jsonb" json:"data"`
	Result        *datatypes.JSON           `gorm:"column:result;type:jsonb" json:"result"`
	Status        PaymentGatewayEventStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

func (PaymentGatewayEvent) TableName() string { return "payment_gateway_events" }
