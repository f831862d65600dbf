package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/schoolhub/feepay/internal/app/service/payment"
	"github.com/schoolhub/feepay/internal/app/service/report"
	"github.com/schoolhub/feepay/internal/app/service/statistics"
	models "github.com/schoolhub/feepay/internal/models"
	"github.com/schoolhub/feepay/pkg/response"
	"github.com/schoolhub/feepay/pkg/types"
)

// TransactionExporter renders a filtered transaction list as a spreadsheet.
type TransactionExporter interface {
	ExportTransactions(ctx context.Context, req *payment.ScanTransactionsRequest) ([]byte, error)
}

type ListTransactionRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

func (r *ListTransactionRequest) scan() *payment.ScanTransactionsRequest {
	return &payment.ScanTransactionsRequest{Filters: r.Filters, From: r.From, Size: r.Size, SortBy: r.SortBy, SortOrder: r.SortOrder}
}

type TransactionItem struct {
	ID               string                  `json:"id"`
	TransactionID    string                  `json:"transaction_id"`
	StudentFeeID     string                  `json:"student_fee_id"`
	StudentID        string                  `json:"student_id"`
	Amount           string                  `json:"amount"`
	Gateway          types.PaymentGateway    `json:"gateway"`
	GatewayReference *string                 `json:"gateway_reference"`
	Status           types.TransactionStatus `json:"status"`
	IsMock           bool                    `json:"is_mock"`
	StudentName      string                  `json:"student_name,omitempty"`
	FeeType          string                  `json:"fee_type,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

func toTransactionItem(m *models.PaymentTransaction) *TransactionItem {
	name, _ := m.RequestPayload["student_name"].(string)
	feeType, _ := m.RequestPayload["fee_type"].(string)
	return &TransactionItem{
		ID:               m.ID,
		TransactionID:    m.GatewayTransactionID,
		StudentFeeID:     m.StudentFeeID,
		StudentID:        m.StudentID,
		Amount:           m.Amount.StringFixed(2),
		Gateway:          m.Gateway,
		GatewayReference: m.GatewayReference,
		Status:           m.Status,
		IsMock:           m.IsMock,
		StudentName:      name,
		FeeType:          feeType,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

type ListPaymentTransactionsResponse struct {
	Items []*TransactionItem `json:"items"`
	Total int64              `json:"total"`
}

func adminErrorCode(err error) response.APIResponseCode {
	if errors.Is(err, payment.ErrInvalidArgument) {
		return response.APIResponseCodeBadRequest
	}
	return response.APIResponseCodeError
}

// @Summary      List Payment Transactions (Admin)
// @Description  Retrieves a paginated and filterable list of payment transactions.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ListTransactionRequest true "List transaction request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespListPaymentTransactions
// @Router       /api/v1/admin/list_payment_transactions [post]
func ApiListPaymentTransactions(coord payment.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := coord.ScanTransactions(c.Request.Context(), req.scan())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](adminErrorCode(err), err.Error()))
			return
		}
		items := lo.Map(res.Items, func(it *models.PaymentTransaction, _ int) *TransactionItem { return toTransactionItem(it) })
		c.JSON(http.StatusOK, response.OKT(&ListPaymentTransactionsResponse{Items: items, Total: res.Total}))
	}
}

// @Summary      Export Payment Transactions (Admin)
// @Description  Downloads every transaction matching the filters as an xlsx sheet. Pagination fields are ignored.
// @Tags         Admin
// @Accept       json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        request body ListTransactionRequest true "Filters and sorting"
// @Success      200  {file}  file
// @Router       /api/v1/admin/export_payment_transactions [post]
func ApiExportPaymentTransactions(exporter TransactionExporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		out, err := exporter.ExportTransactions(c.Request.Context(), req.scan())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](adminErrorCode(err), err.Error()))
			return
		}
		name := fmt.Sprintf("payment_transactions_%s.xlsx", time.Now().Format("20060102_150405"))
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
		c.Data(http.StatusOK, report.ContentType, out)
	}
}

// @Summary      Get Collection Statistics (Admin)
// @Description  Retrieves daily transaction counts, collected amounts and success rates per gateway.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.CollectionStatisticRequest true "Statistic request parameters"
// @Success      200  {object}  handlers.RespCollectionStatistic
// @Router       /api/v1/admin/get_collection_statistic [post]
func ApiGetCollectionStatistic(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.CollectionStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.GetCollectionStatistic(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminPaymentRoutes(r gin.IRouter, coord payment.Coordinator, exporter TransactionExporter, stats *statistics.Service) {
	r.POST("/list_payment_transactions", ApiListPaymentTransactions(coord))
	r.POST("/export_payment_transactions", ApiExportPaymentTransactions(exporter))
	r.POST("/get_collection_statistic", ApiGetCollectionStatistic(stats))
}
