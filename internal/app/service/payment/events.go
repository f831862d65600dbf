package payment

import (
	"context"
	"time"

	models "github.com/schoolhub/feepay/internal/models"
	"github.com/schoolhub/feepay/internal/platform/kafka"
	types "github.com/schoolhub/feepay/pkg/types"
)

const (
	EventPaymentInitiated = "payment.initiated"
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
)

// PaymentEvent is published for every state the coordinator reaches.
type PaymentEvent struct {
	Type          string                  `json:"type"`
	TransactionID string                  `json:"transaction_id"`
	Gateway       types.PaymentGateway    `json:"gateway"`
	StudentFeeID  string                  `json:"student_fee_id"`
	StudentID     string                  `json:"student_id"`
	Amount        string                  `json:"amount"`
	Status        types.TransactionStatus `json:"status"`
	IsMock        bool                    `json:"is_mock"`
	ReceiptNumber string                  `json:"receipt_number,omitempty"`
	OccurredAt    time.Time               `json:"occurred_at"`
}

func newPaymentEvent(typ string, txn *models.PaymentTransaction, now time.Time) *PaymentEvent {
	return &PaymentEvent{
		Type:          typ,
		TransactionID: txn.GatewayTransactionID,
		Gateway:       txn.Gateway,
		StudentFeeID:  txn.StudentFeeID,
		StudentID:     txn.StudentID,
		Amount:        txn.Amount.StringFixed(2),
		Status:        txn.Status,
		IsMock:        txn.IsMock,
		OccurredAt:    now,
	}
}

// EventPublisher delivers payment events downstream. Delivery is best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, ev *PaymentEvent) error
}

// ReceiptNotifier sends the payer a receipt for a settled payment.
type ReceiptNotifier interface {
	NotifyReceipt(ctx context.Context, to string, txn *models.PaymentTransaction, fp *models.FeePayment)
}

// AuditLog persists inbound requests and their outcomes without blocking.
type AuditLog interface {
	Save(ctx context.Context, ev *models.PaymentGatewayEvent)
}

// BrokerEventPublisher sends payment events to the broker keyed by
// transaction id, so events of one transaction stay ordered.
type BrokerEventPublisher struct {
	publisher *kafka.Publisher
}

func NewBrokerEventPublisher(p *kafka.Publisher) *BrokerEventPublisher {
	return &BrokerEventPublisher{publisher: p}
}

func (b *BrokerEventPublisher) Publish(ctx context.Context, ev *PaymentEvent) error {
	return b.publisher.PublishJSON(ctx, ev.TransactionID, ev)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, *PaymentEvent) error { return nil }

type nopNotifier struct{}

func (nopNotifier) NotifyReceipt(context.Context, string, *models.PaymentTransaction, *models.FeePayment) {
}

type nopAudit struct{}

func (nopAudit) Save(context.Context, *models.PaymentGatewayEvent) {}
