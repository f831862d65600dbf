package payment

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	models "github.com/schoolhub/feepay/internal/models"
	"github.com/schoolhub/feepay/pkg/tool"
	types "github.com/schoolhub/feepay/pkg/types"
)

// memStore is an in-memory Store with the same settle semantics as GormStore:
// compare-and-set on status and a unique fee payment per transaction.
type memStore struct {
	mu       sync.Mutex
	fees     map[string]*models.StudentFee
	txns     map[string]*models.PaymentTransaction
	payments map[string]*models.FeePayment

	createErr error
	settleErr error
	// receiptNumber replaces the random receipt generator when set.
	receiptNumber func(time.Time) string
}

func newMemStore(fees ...*models.StudentFee) *memStore {
	s := &memStore{
		fees:     map[string]*models.StudentFee{},
		txns:     map[string]*models.PaymentTransaction{},
		payments: map[string]*models.FeePayment{},
	}
	for _, f := range fees {
		s.fees[f.ID] = f
	}
	return s
}

func (s *memStore) GetStudentFee(_ context.Context, id string) (*models.StudentFee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fees[id]
	if !ok {
		return nil, fmt.Errorf("%w: student fee %s", ErrNotFound, id)
	}
	cp := *f
	return &cp, nil
}

func (s *memStore) CreateTransaction(_ context.Context, txn *models.PaymentTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	for _, t := range s.txns {
		if t.GatewayTransactionID == txn.GatewayTransactionID {
			return fmt.Errorf("duplicate gateway_transaction_id %s", txn.GatewayTransactionID)
		}
	}
	if txn.ID == "" {
		txn.ID = tool.GenerateUUIDV7()
	}
	txn.CreatedAt = time.Now()
	txn.UpdatedAt = txn.CreatedAt
	cp := *txn
	s.txns[txn.ID] = &cp
	return nil
}

func (s *memStore) RecordGatewayAck(_ context.Context, ack *GatewayAck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txns[ack.TransactionID]
	if !ok {
		return fmt.Errorf("%w: transaction %s", ErrNotFound, ack.TransactionID)
	}
	if ack.Reference != nil {
		ref := *ack.Reference
		t.GatewayReference = &ref
	}
	t.IsMock = ack.IsMock
	t.ResponsePayload = ack.Payload
	return nil
}

func (s *memStore) GetTransactionByGatewayTransactionID(_ context.Context, token string) (*models.PaymentTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.txns {
		if t.GatewayTransactionID == token {
			cp := *t
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: transaction %s", ErrNotFound, token)
}

func (s *memStore) SettleTransaction(_ context.Context, st *Settlement) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settleErr != nil {
		return false, s.settleErr
	}
	t, ok := s.txns[st.TransactionID]
	if !ok || t.Status != types.TransactionStatusInitiated {
		return false, nil
	}
	if st.Status == types.TransactionStatusSuccess && st.FeePayment != nil {
		fp := st.FeePayment
		if _, dup := s.payments[fp.TransactionID]; dup {
			return false, fmt.Errorf("duplicate fee payment for %s", fp.TransactionID)
		}
		now := time.Now()
		if fp.ID == "" {
			fp.ID = tool.GenerateUUIDV7()
		}
		if fp.PaidAt.IsZero() {
			fp.PaidAt = now
		}
		gen := s.receiptNumber
		if gen == nil {
			gen = tool.GenerateReceiptNumber
		}
		err := createFeePayment(fp, now, gen, func(fp *models.FeePayment) error {
			for _, existing := range s.payments {
				if existing.ReceiptNumber == fp.ReceiptNumber {
					return fmt.Errorf("receipt %s: %w", fp.ReceiptNumber, gorm.ErrDuplicatedKey)
				}
			}
			cp := *fp
			s.payments[fp.TransactionID] = &cp
			return nil
		})
		if err != nil {
			return false, err
		}
	}
	t.Status = st.Status
	t.IsMock = t.IsMock || st.IsMock
	t.ResponsePayload = st.ResponsePayload
	t.UpdatedAt = time.Now()
	return true, nil
}

func (s *memStore) GetFeePaymentByTransactionID(_ context.Context, token string) (*models.FeePayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fp, ok := s.payments[token]
	if !ok {
		return nil, fmt.Errorf("%w: fee payment for %s", ErrNotFound, token)
	}
	cp := *fp
	return &cp, nil
}

func (s *memStore) GetFeePaymentByReceiptNumber(_ context.Context, receiptNumber string) (*models.FeePayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fp := range s.payments {
		if fp.ReceiptNumber == receiptNumber {
			cp := *fp
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: receipt %s", ErrNotFound, receiptNumber)
}

// ScanTransactions ignores filters; it only pages by creation order.
func (s *memStore) ScanTransactions(_ context.Context, req *ScanTransactionsRequest) (*ScanTransactionsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]*models.PaymentTransaction, 0, len(s.txns))
	for _, t := range s.txns {
		cp := *t
		rows = append(rows, &cp)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	total := int64(len(rows))
	if req.From >= len(rows) {
		return &ScanTransactionsResponse{Items: []*models.PaymentTransaction{}, Total: total}, nil
	}
	rows = rows[req.From:]
	if len(rows) > req.Size {
		rows = rows[:req.Size]
	}
	return &ScanTransactionsResponse{Items: rows, Total: total}, nil
}

func (s *memStore) transactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txns)
}

func (s *memStore) paymentsFor(token string) []*models.FeePayment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.FeePayment
	for _, fp := range s.payments {
		if fp.TransactionID == token {
			out = append(out, fp)
		}
	}
	return out
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*PaymentEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev *PaymentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type sentReceipt struct {
	to            string
	receiptNumber string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentReceipt
}

func (n *recordingNotifier) NotifyReceipt(_ context.Context, to string, _ *models.PaymentTransaction, fp *models.FeePayment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentReceipt{to: to, receiptNumber: fp.ReceiptNumber})
}

type recordingAudit struct {
	mu     sync.Mutex
	events []*models.PaymentGatewayEvent
}

func (a *recordingAudit) Save(_ context.Context, ev *models.PaymentGatewayEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}

func (a *recordingAudit) statuses() []models.PaymentGatewayEventStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.PaymentGatewayEventStatus, 0, len(a.events))
	for _, ev := range a.events {
		out = append(out, ev.Status)
	}
	return out
}
