package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/fx"

	"github.com/schoolhub/feepay/internal/app/service/payment"
	"github.com/schoolhub/feepay/internal/models"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	sheetName   = "Transactions"
	exportLimit = 500
)

var header = []any{
	"Transaction ID", "Gateway", "Status", "Mock", "Amount", "Student Fee ID",
	"Student ID", "Gateway Reference", "Created At", "Updated At",
}

// Service exports admin transaction lists as spreadsheets.
type Service struct {
	payments payment.Coordinator
}

func New(payments payment.Coordinator) *Service { return &Service{payments: payments} }

// ExportTransactions pages through every transaction matching req and writes
// them to one xlsx sheet.
func (s *Service) ExportTransactions(ctx context.Context, req *payment.ScanTransactionsRequest) ([]byte, error) {
	if req == nil {
		req = &payment.ScanTransactionsRequest{}
	}
	page := *req
	page.From = 0
	page.Size = exportLimit

	var rows []*models.PaymentTransaction
	for {
		res, err := s.payments.ScanTransactions(ctx, &page)
		if err != nil {
			return nil, err
		}
		rows = append(rows, res.Items...)
		if len(res.Items) < page.Size || int64(len(rows)) >= res.Total {
			break
		}
		page.From += len(res.Items)
	}
	return WriteTransactions(rows)
}

func WriteTransactions(rows []*models.PaymentTransaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}
	for i, t := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		amount, _ := t.Amount.Float64()
		row := []any{
			t.GatewayTransactionID,
			string(t.Gateway),
			string(t.Status),
			t.IsMock,
			amount,
			t.StudentFeeID,
			t.StudentID,
			t.Reference(),
			t.CreatedAt.Format("2006-01-02 15:04:05"),
			t.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

var Module = fx.Options(
	fx.Provide(New),
)
