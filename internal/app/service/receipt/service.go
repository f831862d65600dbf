package receipt

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/schoolhub/feepay/internal/models"
	"github.com/schoolhub/feepay/internal/platform/mailer"
	"github.com/schoolhub/feepay/pkg/config"
	"github.com/schoolhub/feepay/pkg/logctx"
)

const ContentType = "application/pdf"

type Service struct {
	schoolName string
	currency   string
	fontFile   string
	mailer     *mailer.Mailer
	log        *zap.SugaredLogger
	wg         sync.WaitGroup
}

func New(cfg *config.Config, m *mailer.Mailer, log *zap.SugaredLogger) *Service {
	return &Service{schoolName: cfg.Payment.SchoolName, currency: cfg.Payment.Currency, fontFile: cfg.Payment.ReceiptFont, mailer: m, log: log}
}

func payloadString(txn *models.PaymentTransaction, key string) string {
	if txn == nil {
		return ""
	}
	v, _ := txn.RequestPayload[key].(string)
	return v
}

const utf8Family = "receipt"

// setupFont selects the receipt font family and the text conversion to use
// with it. Core fonts take cp1252 bytes, so UTF-8 text is translated.
func (s *Service) setupFont(pdf *gofpdf.Fpdf) (string, func(string) string) {
	if s.fontFile == "" {
		return "Arial", pdf.UnicodeTranslatorFromDescriptor("")
	}
	for _, style := range []string{"", "B", "I"} {
		pdf.AddUTF8Font(utf8Family, style, s.fontFile)
	}
	return utf8Family, func(v string) string { return v }
}

// Render draws the receipt for fp. txn may be nil; its request details are
// then left out.
func (s *Service) Render(txn *models.PaymentTransaction, fp *models.FeePayment) ([]byte, error) {
	if fp == nil {
		return nil, fmt.Errorf("nil fee payment")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt "+fp.ReceiptNumber, true)
	family, tr := s.setupFont(pdf)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to load receipt font %s: %w", s.fontFile, err)
	}
	pdf.AddPage()

	pdf.SetFont(family, "B", 18)
	pdf.CellFormat(0, 10, tr(s.schoolName), "", 1, "C", false, 0, "")
	pdf.SetFont(family, "", 13)
	pdf.CellFormat(0, 8, "Fee Payment Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	rows := [][2]string{
		{"Receipt No.", fp.ReceiptNumber},
		{"Paid At", fp.PaidAt.Format("2006-01-02 15:04:05 MST")},
		{"Student ID", fp.StudentID},
		{"Student Name", payloadString(txn, "student_name")},
		{"Fee Type", payloadString(txn, "fee_type")},
		{"Payment Method", string(fp.PaymentMethod)},
		{"Transaction ID", fp.TransactionID},
		{"Amount", fmt.Sprintf("%s %s", s.currency, fp.Amount.StringFixed(2))},
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		pdf.SetFont(family, "B", 11)
		pdf.CellFormat(50, 8, r[0], "1", 0, "L", false, 0, "")
		pdf.SetFont(family, "", 11)
		pdf.CellFormat(0, 8, tr(r[1]), "1", 1, "L", false, 0, "")
	}

	if txn != nil && txn.IsMock {
		pdf.Ln(6)
		pdf.SetFont(family, "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(0, 8, "SIMULATED PAYMENT - not settled by a live gateway", "", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.Ln(10)
	pdf.SetFont(family, "I", 9)
	pdf.CellFormat(0, 6, "This receipt was generated electronically and needs no signature.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt %s: %w", fp.ReceiptNumber, err)
	}
	return buf.Bytes(), nil
}

// NotifyReceipt mails the receipt PDF to the payer in the background.
func (s *Service) NotifyReceipt(ctx context.Context, to string, txn *models.PaymentTransaction, fp *models.FeePayment) {
	log := logctx.FromCtx(ctx, s.log)
	if !s.mailer.Enabled() {
		log.Debugw("mailer disabled, receipt not sent", "receipt_number", fp.ReceiptNumber)
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		pdf, err := s.Render(txn, fp)
		if err != nil {
			log.Errorw("failed to render receipt", "receipt_number", fp.ReceiptNumber, "error", err)
			return
		}
		err = s.mailer.Send(&mailer.Message{
			To:       to,
			Subject:  fmt.Sprintf("%s fee receipt %s", s.schoolName, fp.ReceiptNumber),
			HTMLBody: fmt.Sprintf("<p>Thank you. We received %s %s for %s.</p><p>Your receipt is attached.</p>", s.currency, fp.Amount.StringFixed(2), payloadString(txn, "fee_type")),
			Attachments: []mailer.Attachment{{
				Name:        fp.ReceiptNumber + ".pdf",
				ContentType: ContentType,
				Content:     pdf,
			}},
		})
		if err != nil {
			log.Errorw("failed to send receipt", "receipt_number", fp.ReceiptNumber, "error", err)
			return
		}
		log.Infow("receipt sent", "receipt_number", fp.ReceiptNumber)
	}()
}

// Wait blocks until pending receipt mails are done.
func (s *Service) Wait() {
	s.wg.Wait()
}

func register(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.StopHook(s.Wait))
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(register),
)
