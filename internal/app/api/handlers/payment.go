package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/schoolhub/feepay/internal/app/service/payment"
	"github.com/schoolhub/feepay/internal/app/service/receipt"
	"github.com/schoolhub/feepay/internal/models"
	"github.com/schoolhub/feepay/pkg/logctx"
	"github.com/schoolhub/feepay/pkg/response"
)

// ReceiptRenderer draws the printable receipt of a fee payment.
type ReceiptRenderer interface {
	Render(txn *models.PaymentTransaction, fp *models.FeePayment) ([]byte, error)
}

type InitiatePaymentResponse struct {
	response.Result
	payment.InitiateResult
}

type VerifyPaymentResponse struct {
	response.Result
	payment.VerifyResult
}

type TransactionStatusResponse struct {
	response.Result
	payment.TransactionDetail
}

// paymentError maps coordinator errors onto the flat payment envelope.
// Server side failures are logged and reported without internals.
func paymentError(c *gin.Context, log *zap.SugaredLogger, err error) {
	switch {
	case errors.Is(err, payment.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, response.Failed(err.Error()))
	case errors.Is(err, payment.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Failed(err.Error()))
	case errors.Is(err, payment.ErrGatewayUnavailable):
		logctx.FromGin(c, log).Warnw("payment gateway unavailable", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusBadGateway, response.Failed("payment gateway unavailable"))
	default:
		logctx.FromGin(c, log).Errorw("payment request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, response.Failed("internal error"))
	}
}

// @Summary      Initiate payment
// @Description  Creates a payment transaction for a student fee and returns the gateway checkout URL.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body payment.InitiateRequest true "Initiate payment request"
// @Success      200  {object}  handlers.InitiatePaymentResponse
// @Failure      400  {object}  response.Result
// @Failure      404  {object}  response.Result
// @Failure      500  {object}  response.Result
// @Router       /api/v1/payment/initiate [post]
func ApiInitiatePayment(coord payment.Coordinator, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.InitiateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Failed(err.Error()))
			return
		}
		res, err := coord.Initiate(c.Request.Context(), &req)
		if err != nil {
			paymentError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, &InitiatePaymentResponse{Result: response.Succeeded(), InitiateResult: *res})
	}
}

// @Summary      Verify payment
// @Description  Verifies the gateway callback for a transaction. A payment that does not verify is reported with verified=false, not as an error.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body payment.VerifyRequest true "Verify payment request"
// @Success      200  {object}  handlers.VerifyPaymentResponse
// @Failure      400  {object}  response.Result
// @Failure      404  {object}  response.Result
// @Failure      500  {object}  response.Result
// @Router       /api/v1/payment/verify [post]
func ApiVerifyPayment(coord payment.Coordinator, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.VerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Failed(err.Error()))
			return
		}
		res, err := coord.Verify(c.Request.Context(), &req)
		if err != nil {
			paymentError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, &VerifyPaymentResponse{Result: response.Succeeded(), VerifyResult: *res})
	}
}

// @Summary      Get transaction status
// @Description  Returns a transaction by its transaction_id and, once paid, its fee payment.
// @Tags         Payment
// @Produce      json
// @Param        transaction_id path string true "Transaction ID"
// @Success      200  {object}  handlers.TransactionStatusResponse
// @Failure      404  {object}  response.Result
// @Router       /api/v1/payment/transaction/{transaction_id} [get]
func ApiGetTransaction(coord payment.Coordinator, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := coord.GetTransaction(c.Request.Context(), c.Param("transaction_id"))
		if err != nil {
			paymentError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, &TransactionStatusResponse{Result: response.Succeeded(), TransactionDetail: *res})
	}
}

// @Summary      Download receipt
// @Description  Returns the PDF receipt of a fee payment.
// @Tags         Payment
// @Produce      application/pdf
// @Param        receipt_number path string true "Receipt number"
// @Success      200  {file}    file
// @Failure      404  {object}  response.Result
// @Router       /api/v1/payment/receipt/{receipt_number} [get]
func ApiGetReceipt(coord payment.Coordinator, receipts ReceiptRenderer, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		fp, err := coord.GetReceipt(ctx, c.Param("receipt_number"))
		if err != nil {
			paymentError(c, log, err)
			return
		}
		var txn *models.PaymentTransaction
		if detail, err := coord.GetTransaction(ctx, fp.TransactionID); err == nil {
			txn = detail.Transaction
		} else {
			logctx.FromGin(c, log).Warnw("receipt without transaction details", "receipt_number", fp.ReceiptNumber, "error", err)
		}
		pdf, err := receipts.Render(txn, fp)
		if err != nil {
			paymentError(c, log, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s.pdf"`, fp.ReceiptNumber))
		c.Data(http.StatusOK, receipt.ContentType, pdf)
	}
}

func RegisterPaymentRoutes(r gin.IRouter, coord payment.Coordinator, receipts ReceiptRenderer, log *zap.SugaredLogger) {
	r.POST("/initiate", ApiInitiatePayment(coord, log))
	r.POST("/verify", ApiVerifyPayment(coord, log))
	r.GET("/transaction/:transaction_id", ApiGetTransaction(coord, log))
	r.GET("/receipt/:receipt_number", ApiGetReceipt(coord, receipts, log))
}
