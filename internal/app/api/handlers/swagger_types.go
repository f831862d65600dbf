package handlers

import (
	"github.com/schoolhub/feepay/internal/app/service/statistics"
	"github.com/schoolhub/feepay/pkg/response"
)

// RespHealth wraps HealthStatus in the standard envelope.
type RespHealth struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    HealthStatus             `json:"data"`
}

// RespListPaymentTransactions wraps ListPaymentTransactionsResponse in the standard envelope.
type RespListPaymentTransactions struct {
	Code    response.APIResponseCode        `json:"code"`
	Message string                          `json:"message"`
	Data    ListPaymentTransactionsResponse `json:"data"`
}

// RespCollectionStatistic wraps CollectionStatisticResponse in the standard envelope.
type RespCollectionStatistic struct {
	Code    response.APIResponseCode               `json:"code"`
	Message string                                 `json:"message"`
	Data    statistics.CollectionStatisticResponse `json:"data"`
}
