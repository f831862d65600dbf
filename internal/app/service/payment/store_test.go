package payment

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	models "github.com/schoolhub/feepay/internal/models"
	types "github.com/schoolhub/feepay/pkg/types"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError:       true,
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	require.NoError(t, err)
	return NewGormStore(db), mock
}

func successSettlement() *Settlement {
	return &Settlement{
		TransactionID:   "0199f0c2-0000-7000-8000-000000000001",
		Status:          types.TransactionStatusSuccess,
		ResponsePayload: datatypes.JSONMap{"refId": "R1"},
		FeePayment: &models.FeePayment{
			StudentFeeID:         testFeeID,
			StudentID:            "stu-1",
			PaymentTransactionID: "0199f0c2-0000-7000-8000-000000000001",
			TransactionID:        "TXN-1",
			Amount:               decimal.NewFromInt(500),
			PaymentMethod:        types.PaymentGatewayEsewa,
			VerificationPayload:  datatypes.JSONMap{"refId": "R1"},
		},
	}
}

var (
	settleUpdate = `UPDATE "payment_transactions" SET .* WHERE id = \$\d+ AND status = \$\d+`
	feeInsert    = regexp.QuoteMeta(`INSERT INTO "fee_payments"`)
	savepoint    = `^SAVEPOINT sp\d+$`
	rollbackTo   = `^ROLLBACK TO SAVEPOINT sp\d+$`
)

func insertReturning() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"verification_payload"}).AddRow([]byte(`{"refId":"R1"}`))
}

func TestGormStore_SettleLostCompareAndSetWritesNothing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(settleUpdate).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	applied, err := store.SettleTransaction(context.Background(), successSettlement())
	require.NoError(t, err)
	require.False(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_SettleInsertsFeePayment(t *testing.T) {
	store, mock := newMockStore(t)
	store.receiptNumber = func(time.Time) string { return "RCP-20261019-000001" }

	mock.ExpectBegin()
	mock.ExpectExec(settleUpdate).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(savepoint).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(feeInsert).WillReturnRows(insertReturning())
	mock.ExpectCommit()

	st := successSettlement()
	applied, err := store.SettleTransaction(context.Background(), st)
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, "RCP-20261019-000001", st.FeePayment.ReceiptNumber)
	require.NotEmpty(t, st.FeePayment.ID)
	require.False(t, st.FeePayment.PaidAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_SettleRetriesReceiptCollision(t *testing.T) {
	store, mock := newMockStore(t)
	numbers := []string{"RCP-20261019-000001", "RCP-20261019-000002"}
	store.receiptNumber = func(time.Time) string {
		n := numbers[0]
		numbers = numbers[1:]
		return n
	}

	mock.ExpectBegin()
	mock.ExpectExec(settleUpdate).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(savepoint).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(feeInsert).WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_fee_payments_receipt_number"})
	mock.ExpectExec(rollbackTo).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(savepoint).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(feeInsert).WillReturnRows(insertReturning())
	mock.ExpectCommit()

	st := successSettlement()
	applied, err := store.SettleTransaction(context.Background(), st)
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, "RCP-20261019-000002", st.FeePayment.ReceiptNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_SettleInsertFailureRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(settleUpdate).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(savepoint).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(feeInsert).WillReturnError(errors.New("connection reset"))
	mock.ExpectExec(rollbackTo).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	applied, err := store.SettleTransaction(context.Background(), successSettlement())
	require.Error(t, err)
	require.False(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ScanTransactionsOrder(t *testing.T) {
	tests := []struct {
		name  string
		req   *ScanTransactionsRequest
		order string
	}{
		{"default newest first", &ScanTransactionsRequest{Size: 20}, `ORDER BY "created_at" DESC,"id" DESC`},
		{"sort column ascending", &ScanTransactionsRequest{Size: 20, SortBy: "amount", SortOrder: "asc"}, `ORDER BY "amount","id"`},
		{"sort column descending", &ScanTransactionsRequest{Size: 20, SortBy: "status"}, `ORDER BY "status" DESC,"id" DESC`},
		{"sort by id only", &ScanTransactionsRequest{Size: 20, SortBy: "id", SortOrder: "asc"}, `ORDER BY "id" LIMIT`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "payment_transactions"`)).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
			mock.ExpectQuery(regexp.QuoteMeta(tt.order)).
				WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).
					AddRow("0199f0c2-0000-7000-8000-000000000002", "success").
					AddRow("0199f0c2-0000-7000-8000-000000000001", "initiated"))

			res, err := store.ScanTransactions(context.Background(), tt.req)
			require.NoError(t, err)
			require.EqualValues(t, 2, res.Total)
			require.Len(t, res.Items, 2)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateFeePayment(t *testing.T) {
	other := errors.New("value too long for type character varying(32)")
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	t.Run("preset receipt is not redrawn", func(t *testing.T) {
		calls, draws := 0, 0
		fp := &models.FeePayment{ReceiptNumber: "RCP-MANUAL"}
		err := createFeePayment(fp, now, func(time.Time) string { draws++; return "RCP-1" }, func(*models.FeePayment) error {
			calls++
			return gorm.ErrDuplicatedKey
		})
		require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
		require.Equal(t, 1, calls)
		require.Zero(t, draws)
		require.Equal(t, "RCP-MANUAL", fp.ReceiptNumber)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		calls := 0
		err := createFeePayment(&models.FeePayment{}, now, func(time.Time) string { return "RCP-1" }, func(*models.FeePayment) error {
			calls++
			return other
		})
		require.ErrorIs(t, err, other)
		require.Equal(t, 1, calls)
	})

	t.Run("gives up after bounded attempts", func(t *testing.T) {
		calls := 0
		err := createFeePayment(&models.FeePayment{}, now, func(time.Time) string { return "RCP-1" }, func(*models.FeePayment) error {
			calls++
			return gorm.ErrDuplicatedKey
		})
		require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
		require.Equal(t, receiptAttempts, calls)
	})
}
