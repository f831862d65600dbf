package receipt

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolhub/feepay/internal/models"
	"github.com/schoolhub/feepay/internal/platform/mailer"
	"github.com/schoolhub/feepay/pkg/config"
	"github.com/schoolhub/feepay/pkg/types"
)

func testService() *Service {
	cfg := &config.Config{}
	cfg.Payment.SchoolName = "Everest Secondary School"
	cfg.Payment.Currency = "NPR"
	return New(cfg, mailer.New(cfg), zap.NewNop().Sugar())
}

func feePayment() *models.FeePayment {
	return &models.FeePayment{
		ID:            "fp-1",
		StudentID:     "stu-1",
		TransactionID: "TXN1",
		Amount:        decimal.NewFromInt(500),
		PaymentMethod: types.PaymentGatewayEsewa,
		ReceiptNumber: "RCP-20261019-123456",
		PaidAt:        time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC),
	}
}

func TestRender_ProducesPDF(t *testing.T) {
	svc := testService()
	txn := &models.PaymentTransaction{
		IsMock:         true,
		RequestPayload: map[string]any{"student_name": "Asha Rai", "fee_type": "tuition"},
	}

	out, err := svc.Render(txn, feePayment())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	out, err = svc.Render(nil, feePayment())
	require.NoError(t, err)
	require.NotEmpty(t, out)

	_, err = svc.Render(nil, nil)
	require.Error(t, err)
}

func TestRender_NonLatinText(t *testing.T) {
	svc := testService()
	txn := &models.PaymentTransaction{
		RequestPayload: map[string]any{"student_name": "आशा राई", "fee_type": "Zoë's tuition"},
	}
	out, err := svc.Render(txn, feePayment())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestSetupFont_CoreFontTranslatesToCP1252(t *testing.T) {
	svc := testService()
	family, tr := svc.setupFont(gofpdf.New("P", "mm", "A4", ""))
	require.Equal(t, "Arial", family)
	require.Equal(t, "Zo\xeb M\xfcller", tr("Zoë Müller"))
}

func TestRender_MissingFontFile(t *testing.T) {
	svc := testService()
	svc.fontFile = filepath.Join(t.TempDir(), "missing.ttf")
	_, err := svc.Render(nil, feePayment())
	require.Error(t, err)
}

func TestNotifyReceipt_SkipsWhenMailerDisabled(t *testing.T) {
	svc := testService()
	svc.NotifyReceipt(context.Background(), "parent@example.com", nil, feePayment())
	svc.Wait()
}
