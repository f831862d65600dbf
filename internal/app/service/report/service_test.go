package report

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/schoolhub/feepay/internal/app/service/payment"
	"github.com/schoolhub/feepay/internal/models"
	"github.com/schoolhub/feepay/pkg/types"
)

type pagedCoordinator struct {
	payment.Coordinator
	rows  []*models.PaymentTransaction
	calls int
	err   error
}

func (c *pagedCoordinator) ScanTransactions(_ context.Context, req *payment.ScanTransactionsRequest) (*payment.ScanTransactionsResponse, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	end := req.From + req.Size
	if end > len(c.rows) {
		end = len(c.rows)
	}
	return &payment.ScanTransactionsResponse{Items: c.rows[req.From:end], Total: int64(len(c.rows))}, nil
}

func txns(n int) []*models.PaymentTransaction {
	out := make([]*models.PaymentTransaction, n)
	for i := range out {
		ref := "PIDX"
		out[i] = &models.PaymentTransaction{
			GatewayTransactionID: "TXN" + string(rune('A'+i%26)),
			Gateway:              types.PaymentGatewayKhalti,
			Status:               types.TransactionStatusSuccess,
			Amount:               decimal.RequireFromString("1250.50"),
			GatewayReference:     &ref,
		}
	}
	return out
}

func TestExportTransactions_PagesThroughEverything(t *testing.T) {
	c := &pagedCoordinator{rows: txns(exportLimit + 3)}
	svc := New(c)

	out, err := svc.ExportTransactions(context.Background(), &payment.ScanTransactionsRequest{SortBy: "created_at"})
	require.NoError(t, err)
	require.Equal(t, 2, c.calls)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, exportLimit+4)
	require.Equal(t, "Transaction ID", rows[0][0])
	require.Equal(t, "khalti", rows[1][1])
	require.Equal(t, "1250.5", rows[1][4])
	require.Equal(t, "PIDX", rows[1][7])
}

func TestExportTransactions_PropagatesErrors(t *testing.T) {
	c := &pagedCoordinator{err: errors.New("boom")}
	_, err := New(c).ExportTransactions(context.Background(), nil)
	require.ErrorContains(t, err, "boom")
}
