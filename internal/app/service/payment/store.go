package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	models "github.com/schoolhub/feepay/internal/models"
	"github.com/schoolhub/feepay/pkg/tool"
	types "github.com/schoolhub/feepay/pkg/types"
)

// Store is the record store the coordinator persists through. Lookups return
// ErrNotFound when the record does not exist.
type Store interface {
	GetStudentFee(ctx context.Context, id string) (*models.StudentFee, error)
	// CreateTransaction assigns txn.ID and inserts it.
	CreateTransaction(ctx context.Context, txn *models.PaymentTransaction) error
	// RecordGatewayAck stores what the gateway returned on initiation.
	RecordGatewayAck(ctx context.Context, ack *GatewayAck) error
	GetTransactionByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*models.PaymentTransaction, error)
	// SettleTransaction moves an initiated transaction to its terminal status
	// and, on success, inserts the fee payment, atomically. It reports false
	// without writing anything when the transaction was no longer initiated.
	SettleTransaction(ctx context.Context, s *Settlement) (bool, error)
	GetFeePaymentByTransactionID(ctx context.Context, gatewayTransactionID string) (*models.FeePayment, error)
	GetFeePaymentByReceiptNumber(ctx context.Context, receiptNumber string) (*models.FeePayment, error)
	ScanTransactions(ctx context.Context, req *ScanTransactionsRequest) (*ScanTransactionsResponse, error)
}

type GatewayAck struct {
	TransactionID string
	Reference     *string
	IsMock        bool
	Payload       datatypes.JSONMap
}

type Settlement struct {
	// TransactionID is the row id, not the correlation token.
	TransactionID   string
	Status          types.TransactionStatus
	IsMock          bool
	ResponsePayload datatypes.JSONMap
	// FeePayment is inserted only when Status is success. ID, ReceiptNumber
	// and PaidAt are assigned by the store when empty.
	FeePayment *models.FeePayment
}

// GormStore implements Store on postgres through gorm.
type GormStore struct {
	db            *gorm.DB
	receiptNumber func(time.Time) string
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, receiptNumber: tool.GenerateReceiptNumber}
}

// receiptAttempts bounds how many receipt numbers are drawn for one payment.
const receiptAttempts = 5

// createFeePayment inserts fp through create. When the store assigns the
// receipt number and the insert hits a unique violation, a fresh number is
// drawn and the insert retried.
func createFeePayment(fp *models.FeePayment, now time.Time, receiptNumber func(time.Time) string, create func(*models.FeePayment) error) error {
	assigned := fp.ReceiptNumber == ""
	for attempt := 1; ; attempt++ {
		if assigned {
			fp.ReceiptNumber = receiptNumber(now)
		}
		err := create(fp)
		if err == nil || !assigned || attempt == receiptAttempts || !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
}

func notFoundAs(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

func (s *GormStore) GetStudentFee(ctx context.Context, id string) (*models.StudentFee, error) {
	var fee models.StudentFee
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&fee).Error; err != nil {
		return nil, notFoundAs(err, "student fee "+id)
	}
	return &fee, nil
}

func (s *GormStore) CreateTransaction(ctx context.Context, txn *models.PaymentTransaction) error {
	if txn.ID == "" {
		txn.ID = tool.GenerateUUIDV7()
	}
	return s.db.WithContext(ctx).Create(txn).Error
}

func (s *GormStore) RecordGatewayAck(ctx context.Context, ack *GatewayAck) error {
	updates := map[string]any{
		"is_mock":          ack.IsMock,
		"response_payload": ack.Payload,
		"updated_at":       time.Now(),
	}
	if ack.Reference != nil {
		updates["gateway_reference"] = *ack.Reference
	}
	return s.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Where("id = ?", ack.TransactionID).
		Updates(updates).Error
}

func (s *GormStore) GetTransactionByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	if err := s.db.WithContext(ctx).Where("gateway_transaction_id = ?", gatewayTransactionID).First(&txn).Error; err != nil {
		return nil, notFoundAs(err, "transaction "+gatewayTransactionID)
	}
	return &txn, nil
}

func (s *GormStore) SettleTransaction(ctx context.Context, st *Settlement) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.PaymentTransaction{}).
			Where("id = ? AND status = ?", st.TransactionID, types.TransactionStatusInitiated).
			Updates(map[string]any{
				"status":           st.Status,
				"is_mock":          gorm.Expr("is_mock OR ?", st.IsMock),
				"response_payload": st.ResponsePayload,
				"updated_at":       now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update transaction status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true

		if st.Status != types.TransactionStatusSuccess || st.FeePayment == nil {
			return nil
		}
		fp := st.FeePayment
		if fp.ID == "" {
			fp.ID = tool.GenerateUUIDV7()
		}
		if fp.PaidAt.IsZero() {
			fp.PaidAt = now
		}
		// each attempt runs in a savepoint so a failed insert does not abort
		// the surrounding transaction
		err := createFeePayment(fp, now, s.receiptNumber, func(fp *models.FeePayment) error {
			return tx.Transaction(func(sp *gorm.DB) error {
				return sp.Create(fp).Error
			})
		})
		if err != nil {
			return fmt.Errorf("failed to create fee payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (s *GormStore) GetFeePaymentByTransactionID(ctx context.Context, gatewayTransactionID string) (*models.FeePayment, error) {
	var fp models.FeePayment
	if err := s.db.WithContext(ctx).Where("transaction_id = ?", gatewayTransactionID).First(&fp).Error; err != nil {
		return nil, notFoundAs(err, "fee payment for "+gatewayTransactionID)
	}
	return &fp, nil
}

func (s *GormStore) GetFeePaymentByReceiptNumber(ctx context.Context, receiptNumber string) (*models.FeePayment, error) {
	var fp models.FeePayment
	if err := s.db.WithContext(ctx).Where("receipt_number = ?", receiptNumber).First(&fp).Error; err != nil {
		return nil, notFoundAs(err, "receipt "+receiptNumber)
	}
	return &fp, nil
}

// scanOrder sorts by the requested column, newest first by default, with id
// as the tiebreaker so pages never overlap.
func scanOrder(req *ScanTransactionsRequest) clause.OrderBy {
	column, desc := "created_at", true
	if req.SortBy != "" {
		column, desc = req.SortBy, req.SortOrder != "asc"
	}
	cols := []clause.OrderByColumn{{Column: clause.Column{Name: column}, Desc: desc}}
	if column != "id" {
		cols = append(cols, clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc})
	}
	return clause.OrderBy{Columns: cols}
}

// ScanTransactions implements paginated/admin listing with filters
func (s *GormStore) ScanTransactions(ctx context.Context, req *ScanTransactionsRequest) (*ScanTransactionsResponse, error) {
	tx := s.db.WithContext(ctx).Model(&models.PaymentTransaction{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{types.FiltersAnd(req.Filters)}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	q = q.Order(scanOrder(req))

	var rows []*models.PaymentTransaction
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return &ScanTransactionsResponse{Items: rows, Total: total}, nil
}
