package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	models "github.com/schoolhub/feepay/internal/models"
	"github.com/schoolhub/feepay/pkg/logctx"
	"github.com/schoolhub/feepay/pkg/metrics"
	"github.com/schoolhub/feepay/pkg/tool"
	types "github.com/schoolhub/feepay/pkg/types"
)

const (
	defaultScanSize = 10
	maxScanSize     = 500
)

type Service struct {
	log      *zap.SugaredLogger
	store    Store
	gateways *Registry
	audit    AuditLog
	events   EventPublisher
	notifier ReceiptNotifier
	metrics  *metrics.PaymentRecorder
	now      func() time.Time
}

var _ Coordinator = (*Service)(nil)

func NewService(log *zap.SugaredLogger, store Store, gateways *Registry, audit AuditLog, events EventPublisher, notifier ReceiptNotifier, rec *metrics.PaymentRecorder) *Service {
	if audit == nil {
		audit = nopAudit{}
	}
	if events == nil {
		events = nopPublisher{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Service{
		log:      log,
		store:    store,
		gateways: gateways,
		audit:    audit,
		events:   events,
		notifier: notifier,
		metrics:  rec,
		now:      time.Now,
	}
}

// storeErr keeps ErrNotFound visible and classifies everything else as a
// persistence failure.
func storeErr(err error, op string) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// trackRequest saves the "received" audit row and returns the func that saves
// the outcome row.
func (s *Service) trackRequest(ctx context.Context, gateway types.PaymentGateway, kind types.PaymentEventKind, transactionID string, req any) func(result any, err error) {
	traceID := logctx.TraceID(ctx)
	data, _ := json.Marshal(req)
	s.audit.Save(ctx, &models.PaymentGatewayEvent{
		Gateway:       gateway,
		Kind:          kind,
		TraceID:       traceID,
		TransactionID: transactionID,
		EventTime:     s.now(),
		Data:          datatypes.JSON(data),
		Status:        models.PaymentGatewayEventStatusReceived,
	})
	return func(result any, err error) {
		resMap := map[string]any{"result": result}
		status := models.PaymentGatewayEventStatusHandled
		if err != nil {
			resMap["error"] = err.Error()
			status = models.PaymentGatewayEventStatusHandleFailed
		}
		resBytes, _ := json.Marshal(resMap)
		res := datatypes.JSON(resBytes)
		s.audit.Save(ctx, &models.PaymentGatewayEvent{
			Gateway:       gateway,
			Kind:          kind,
			TraceID:       traceID,
			TransactionID: transactionID,
			EventTime:     s.now(),
			Data:          datatypes.JSON(data),
			Result:        &res,
			Status:        status,
		})
	}
}

func (s *Service) publish(ctx context.Context, ev *PaymentEvent) {
	if err := s.events.Publish(ctx, ev); err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("failed to publish payment event", "type", ev.Type, "transaction_id", ev.TransactionID, "error", err)
	}
}

func (s *Service) Initiate(ctx context.Context, req *InitiateRequest) (result *InitiateResult, retErr error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	gw, err := s.gateways.Get(req.Gateway)
	if err != nil {
		return nil, err
	}

	token := tool.GenerateGatewayTransactionID(s.now())
	done := s.trackRequest(ctx, req.Gateway, types.PaymentEventKindInitiate, token, req)
	defer func() { done(result, retErr) }()

	fee, err := s.store.GetStudentFee(ctx, req.StudentFeeID)
	if err != nil {
		return nil, storeErr(err, "load student fee")
	}

	txn := &models.PaymentTransaction{
		StudentFeeID:         fee.ID,
		StudentID:            fee.StudentID,
		Amount:               req.Amount,
		Gateway:              req.Gateway,
		GatewayTransactionID: token,
		Status:               types.TransactionStatusInitiated,
		RequestPayload:       req.payload(),
	}
	if err := s.store.CreateTransaction(ctx, txn); err != nil {
		return nil, storeErr(err, "create transaction")
	}

	out, err := gw.Initiate(ctx, &InitiateInput{
		Transaction: txn,
		StudentName: req.StudentName,
		FeeType:     req.FeeType,
		ReturnURL:   req.ReturnURL,
		PayerEmail:  req.PayerEmail,
	})
	if err != nil {
		s.abandon(ctx, txn, err)
		return nil, err
	}

	if err := s.store.RecordGatewayAck(ctx, &GatewayAck{
		TransactionID: txn.ID,
		Reference:     out.Reference,
		IsMock:        out.Mock,
		Payload:       out.Ack,
	}); err != nil {
		return nil, storeErr(err, "record gateway ack")
	}
	txn.GatewayReference = out.Reference
	txn.IsMock = out.Mock
	txn.ResponsePayload = out.Ack

	s.metrics.Initiated(string(txn.Gateway), out.Mock)
	s.publish(ctx, newPaymentEvent(EventPaymentInitiated, txn, s.now()))
	logctx.FromCtx(ctx, s.log).Infow("payment initiated", "transaction_id", token, "gateway", txn.Gateway, "mock", out.Mock)

	return &InitiateResult{
		TransactionID: token,
		PaymentURL:    out.PaymentURL,
		PaymentData:   out.PaymentData,
	}, nil
}

// abandon records why a checkout could not be started. The transaction stays
// initiated; a later verify or an operator settles it.
func (s *Service) abandon(ctx context.Context, txn *models.PaymentTransaction, cause error) {
	logctx.FromCtx(ctx, s.log).Warnw("gateway initiation failed", "transaction_id", txn.GatewayTransactionID, "gateway", txn.Gateway, "error", cause)
	err := s.store.RecordGatewayAck(ctx, &GatewayAck{
		TransactionID: txn.ID,
		Payload:       datatypes.JSONMap{"error": cause.Error()},
	})
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to record gateway error", "transaction_id", txn.GatewayTransactionID, "error", err)
	}
}

func (s *Service) Verify(ctx context.Context, req *VerifyRequest) (result *VerifyResult, retErr error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	done := s.trackRequest(ctx, req.Gateway, types.PaymentEventKindVerify, req.TransactionID, req)
	defer func() { done(result, retErr) }()

	txn, err := s.store.GetTransactionByGatewayTransactionID(ctx, req.TransactionID)
	if err != nil {
		return nil, storeErr(err, "load transaction")
	}
	if txn.Gateway != req.Gateway {
		return nil, fmt.Errorf("%w: transaction %s belongs to gateway %s", ErrInvalidArgument, txn.GatewayTransactionID, txn.Gateway)
	}
	if txn.Status.Terminal() {
		return s.recordedOutcome(ctx, txn)
	}

	gw, err := s.gateways.Get(txn.Gateway)
	if err != nil {
		return nil, err
	}
	out, err := gw.Verify(ctx, &VerifyInput{Transaction: txn, GatewayResponse: req.GatewayResponse})
	if err != nil {
		return nil, err
	}

	st := &Settlement{
		TransactionID: txn.ID,
		Status:        types.TransactionStatusFailed,
		IsMock:        out.Mock,
		ResponsePayload: datatypes.JSONMap{
			"initiate":         map[string]any(txn.ResponsePayload),
			"gateway_response": req.GatewayResponse,
			"verification":     out.Proof,
		},
	}
	if out.Verified {
		st.Status = types.TransactionStatusSuccess
		st.FeePayment = &models.FeePayment{
			StudentFeeID:         txn.StudentFeeID,
			StudentID:            txn.StudentID,
			PaymentTransactionID: txn.ID,
			TransactionID:        txn.GatewayTransactionID,
			Amount:               txn.Amount,
			PaymentMethod:        txn.Gateway,
			VerificationPayload:  out.Proof,
		}
	}

	applied, err := s.store.SettleTransaction(ctx, st)
	if err != nil {
		return nil, storeErr(err, "settle transaction")
	}
	if !applied {
		// another verify settled it first
		current, err := s.store.GetTransactionByGatewayTransactionID(ctx, req.TransactionID)
		if err != nil {
			return nil, storeErr(err, "reload transaction")
		}
		return s.recordedOutcome(ctx, current)
	}

	txn.Status = st.Status
	txn.IsMock = txn.IsMock || out.Mock
	s.metrics.Verified(string(txn.Gateway), string(st.Status))
	log := logctx.FromCtx(ctx, s.log)

	if !out.Verified {
		s.publish(ctx, newPaymentEvent(EventPaymentFailed, txn, s.now()))
		log.Infow("payment not verified", "transaction_id", txn.GatewayTransactionID, "gateway", txn.Gateway)
		return &VerifyResult{Verified: false, Message: "payment verification failed"}, nil
	}

	fp := st.FeePayment
	ev := newPaymentEvent(EventPaymentSucceeded, txn, s.now())
	ev.ReceiptNumber = fp.ReceiptNumber
	s.publish(ctx, ev)
	if email, _ := txn.RequestPayload["payer_email"].(string); strings.TrimSpace(email) != "" {
		s.notifier.NotifyReceipt(ctx, email, txn, fp)
	}
	log.Infow("payment verified", "transaction_id", txn.GatewayTransactionID, "gateway", txn.Gateway, "receipt_number", fp.ReceiptNumber, "mock", txn.IsMock)

	return &VerifyResult{
		Verified:      true,
		PaymentID:     fp.ID,
		ReceiptNumber: fp.ReceiptNumber,
		Message:       "payment verified successfully",
	}, nil
}

// recordedOutcome answers a verify for an already settled transaction without
// writing anything.
func (s *Service) recordedOutcome(ctx context.Context, txn *models.PaymentTransaction) (*VerifyResult, error) {
	switch txn.Status {
	case types.TransactionStatusSuccess:
		fp, err := s.store.GetFeePaymentByTransactionID(ctx, txn.GatewayTransactionID)
		if err != nil {
			return nil, storeErr(err, "load fee payment")
		}
		return &VerifyResult{
			Verified:      true,
			PaymentID:     fp.ID,
			ReceiptNumber: fp.ReceiptNumber,
			Message:       "payment already verified",
		}, nil
	case types.TransactionStatusFailed:
		return &VerifyResult{Verified: false, Message: "payment already failed"}, nil
	default:
		return nil, fmt.Errorf("%w: transaction %s is still %s", ErrPersistence, txn.GatewayTransactionID, txn.Status)
	}
}

func (s *Service) GetTransaction(ctx context.Context, transactionID string) (*TransactionDetail, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, fmt.Errorf("%w: transaction_id is required", ErrInvalidArgument)
	}
	txn, err := s.store.GetTransactionByGatewayTransactionID(ctx, transactionID)
	if err != nil {
		return nil, storeErr(err, "load transaction")
	}
	detail := &TransactionDetail{Transaction: txn}
	if txn.Status == types.TransactionStatusSuccess {
		fp, err := s.store.GetFeePaymentByTransactionID(ctx, transactionID)
		if err != nil {
			return nil, storeErr(err, "load fee payment")
		}
		detail.FeePayment = fp
	}
	return detail, nil
}

func (s *Service) GetReceipt(ctx context.Context, receiptNumber string) (*models.FeePayment, error) {
	if strings.TrimSpace(receiptNumber) == "" {
		return nil, fmt.Errorf("%w: receipt_number is required", ErrInvalidArgument)
	}
	fp, err := s.store.GetFeePaymentByReceiptNumber(ctx, receiptNumber)
	if err != nil {
		return nil, storeErr(err, "load receipt")
	}
	return fp, nil
}

func (s *Service) ScanTransactions(ctx context.Context, req *ScanTransactionsRequest) (*ScanTransactionsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrInvalidArgument)
	}
	if req.Size <= 0 {
		req.Size = defaultScanSize
	}
	if req.Size > maxScanSize {
		req.Size = maxScanSize
	}
	if req.From < 0 {
		req.From = 0
	}
	if err := types.ValidateFields(req.Filters, ScanFields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if req.SortBy != "" && !lo.Contains(ScanFields, req.SortBy) {
		return nil, fmt.Errorf("%w: unsupported sort field: %s", ErrInvalidArgument, req.SortBy)
	}
	if req.SortOrder != "" && req.SortOrder != "asc" && req.SortOrder != "desc" {
		return nil, fmt.Errorf("%w: sort_order must be asc or desc", ErrInvalidArgument)
	}
	resp, err := s.store.ScanTransactions(ctx, req)
	if err != nil {
		return nil, storeErr(err, "scan transactions")
	}
	return resp, nil
}
