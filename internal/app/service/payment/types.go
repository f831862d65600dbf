package payment

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	models "github.com/schoolhub/feepay/internal/models"
	types "github.com/schoolhub/feepay/pkg/types"
)

type InitiateRequest struct {
	Gateway      types.PaymentGateway `json:"gateway" binding:"required"`
	StudentFeeID string               `json:"student_fee_id" binding:"required"`
	Amount       decimal.Decimal      `json:"amount"`
	StudentName  string               `json:"student_name"`
	FeeType      string               `json:"fee_type"`
	ReturnURL    string               `json:"return_url" binding:"required"`
	// PayerEmail receives the receipt once the payment succeeds. Optional.
	PayerEmail string `json:"payer_email,omitempty" binding:"omitempty,email"`
}

func (r *InitiateRequest) validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil request", ErrInvalidArgument)
	}
	if !r.Gateway.Valid() {
		return fmt.Errorf("%w: unsupported gateway %q", ErrInvalidArgument, r.Gateway)
	}
	if strings.TrimSpace(r.StudentFeeID) == "" {
		return fmt.Errorf("%w: student_fee_id is required", ErrInvalidArgument)
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than 0", ErrInvalidArgument)
	}
	if !r.Amount.Equal(r.Amount.Round(2)) {
		return fmt.Errorf("%w: amount has more than two decimal places", ErrInvalidArgument)
	}
	u, err := url.Parse(r.ReturnURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: return_url must be an absolute url", ErrInvalidArgument)
	}
	return nil
}

// payload is the audit snapshot stored as request_payload.
func (r *InitiateRequest) payload() map[string]any {
	m := map[string]any{
		"gateway":        string(r.Gateway),
		"student_fee_id": r.StudentFeeID,
		"amount":         r.Amount.StringFixed(2),
		"student_name":   r.StudentName,
		"fee_type":       r.FeeType,
		"return_url":     r.ReturnURL,
	}
	if r.PayerEmail != "" {
		m["payer_email"] = r.PayerEmail
	}
	return m
}

type InitiateResult struct {
	TransactionID string         `json:"transaction_id"`
	PaymentURL    string         `json:"payment_url"`
	PaymentData   map[string]any `json:"payment_data"`
}

type VerifyRequest struct {
	Gateway         types.PaymentGateway `json:"gateway" binding:"required"`
	TransactionID   string               `json:"transaction_id" binding:"required"`
	GatewayResponse map[string]any       `json:"gateway_response"`
}

func (r *VerifyRequest) validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil request", ErrInvalidArgument)
	}
	if !r.Gateway.Valid() {
		return fmt.Errorf("%w: unsupported gateway %q", ErrInvalidArgument, r.Gateway)
	}
	if strings.TrimSpace(r.TransactionID) == "" {
		return fmt.Errorf("%w: transaction_id is required", ErrInvalidArgument)
	}
	return nil
}

// VerifyResult is returned for both outcomes; Verified=false is a business
// result, not an error.
type VerifyResult struct {
	Verified      bool   `json:"verified"`
	PaymentID     string `json:"payment_id,omitempty"`
	ReceiptNumber string `json:"receipt_number,omitempty"`
	Message       string `json:"message"`
}

type TransactionDetail struct {
	Transaction *models.PaymentTransaction `json:"transaction"`
	FeePayment  *models.FeePayment         `json:"fee_payment,omitempty"`
}

// ScanTransactionsRequest drives the admin transaction list and export.
type ScanTransactionsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanTransactionsResponse struct {
	Items []*models.PaymentTransaction `json:"items"`
	Total int64                        `json:"total"`
}

// ScanFields are the columns admin filters and sorting may reference.
var ScanFields = []string{
	"id", "student_fee_id", "student_id", "amount", "gateway", "gateway_transaction_id",
	"gateway_reference", "status", "is_mock", "created_at", "updated_at",
}

// Coordinator drives a fee payment from initiation to verified completion.
type Coordinator interface {
	// Initiate persists a new transaction and returns where to send the payer.
	Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResult, error)
	// Verify settles a transaction from the gateway's callback data.
	Verify(ctx context.Context, req *VerifyRequest) (*VerifyResult, error)
	// GetTransaction looks a transaction up by its correlation token.
	GetTransaction(ctx context.Context, transactionID string) (*TransactionDetail, error)
	// GetReceipt returns the fee payment with the given receipt number.
	GetReceipt(ctx context.Context, receiptNumber string) (*models.FeePayment, error)
	// ScanTransactions lists transactions for the admin pages.
	ScanTransactions(ctx context.Context, req *ScanTransactionsRequest) (*ScanTransactionsResponse, error)
}
