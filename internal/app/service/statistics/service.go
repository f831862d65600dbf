package statistics

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/schoolhub/feepay/internal/models"
	"github.com/schoolhub/feepay/pkg/types"
)

type StatisticType string

const (
	// Transactions, per gateway
	StatisticTypeDailyTransactionCount     StatisticType = "daily_transaction_count"
	StatisticTypeDailyMockTransactionCount StatisticType = "daily_mock_transaction_count"
	StatisticTypeSuccessRate               StatisticType = "success_rate"

	// Collected money, from fee payments
	StatisticTypeDailyCollectedAmount StatisticType = "daily_collected_amount"
	StatisticTypeTotalCollectedAmount StatisticType = "total_collected_amount"
)

var StatisticTypes = []StatisticType{
	StatisticTypeDailyTransactionCount,
	StatisticTypeDailyMockTransactionCount,
	StatisticTypeSuccessRate,
	StatisticTypeDailyCollectedAmount,
	StatisticTypeTotalCollectedAmount,
}

// Filter fields accepted by the statistic page. Some only make sense for a
// subset of statistic types.
type CollectionStatisticFilterType string

const (
	CollectionStatisticFilterTypeGateway   CollectionStatisticFilterType = "gateway"
	CollectionStatisticFilterTypeStatus    CollectionStatisticFilterType = "status"
	CollectionStatisticFilterTypeIsMock    CollectionStatisticFilterType = "is_mock"
	CollectionStatisticFilterTypeCreatedAt CollectionStatisticFilterType = "created_at"
)

var filterTypes = []CollectionStatisticFilterType{
	CollectionStatisticFilterTypeGateway,
	CollectionStatisticFilterTypeStatus,
	CollectionStatisticFilterTypeIsMock,
	CollectionStatisticFilterTypeCreatedAt,
}

var transactionStatistics = []StatisticType{StatisticTypeDailyTransactionCount, StatisticTypeDailyMockTransactionCount, StatisticTypeSuccessRate}

var validFilters = map[CollectionStatisticFilterType][]StatisticType{
	CollectionStatisticFilterTypeGateway:   StatisticTypes,
	CollectionStatisticFilterTypeCreatedAt: StatisticTypes,
	CollectionStatisticFilterTypeStatus:    {StatisticTypeDailyTransactionCount, StatisticTypeDailyMockTransactionCount},
	CollectionStatisticFilterTypeIsMock:    transactionStatistics,
}

type CollectionStatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type CollectionStatisticRequest struct {
	Filters   []*types.CommonFilter          `json:"filters"`
	DataItems []*CollectionStatisticDataItem `json:"data_items"`
}

func (r *CollectionStatisticRequest) Validate() error {
	if r == nil || len(r.DataItems) == 0 {
		return fmt.Errorf("data_items is required")
	}
	for _, di := range r.DataItems {
		if di == nil || !lo.Contains(StatisticTypes, di.ID) {
			return fmt.Errorf("invalid data item id")
		}
	}
	fields := lo.Map(filterTypes, func(f CollectionStatisticFilterType, _ int) string { return string(f) })
	return types.ValidateFields(r.Filters, fields)
}

// scopedFilters is the subset of filters that applies to one statistic type,
// with column names mapped onto the table that statistic reads.
type scopedFilters struct {
	filters      []*types.CommonFilter
	onFeePayment bool
}

func (r *CollectionStatisticRequest) scope(statisticType StatisticType) scopedFilters {
	s := scopedFilters{onFeePayment: !lo.Contains(transactionStatistics, statisticType)}
	for _, f := range r.Filters {
		if f == nil {
			continue
		}
		if lo.Contains(validFilters[CollectionStatisticFilterType(f.Field)], statisticType) {
			s.filters = append(s.filters, f)
		}
	}
	return s
}

// Build writes the filters as a WHERE expression. On fee_payments the
// gateway lives in payment_method and the event time in paid_at.
func (s scopedFilters) Build(builder clause.Builder) {
	if !s.onFeePayment {
		types.FiltersAnd(s.filters).Build(builder)
		return
	}
	mapped := make([]*types.CommonFilter, 0, len(s.filters))
	for _, f := range s.filters {
		cp := *f
		switch CollectionStatisticFilterType(f.Field) {
		case CollectionStatisticFilterTypeGateway:
			cp.Field = "payment_method"
		case CollectionStatisticFilterTypeCreatedAt:
			cp.Field = "paid_at"
		}
		mapped = append(mapped, &cp)
	}
	types.FiltersAnd(mapped).Build(builder)
}

type CollectionStatisticResponseDataItem struct {
	Date   string          `json:"date"`
	Label  string          `json:"label,omitempty"`
	Value  decimal.Decimal `json:"value"`
	Value2 int64           `json:"value2,omitempty"`
	Value3 int64           `json:"value3,omitempty"`
}

type CollectionStatisticResponse struct {
	DataItems map[StatisticType][]CollectionStatisticResponseDataItem `json:"data_items"`
}

// Service provides statistics operations
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) where(request *CollectionStatisticRequest, statisticType StatisticType) clause.Where {
	return clause.Where{Exprs: []clause.Expression{request.scope(statisticType)}}
}

func (s *Service) getDailyTransactionCount(ctx context.Context, request *CollectionStatisticRequest) ([]CollectionStatisticResponseDataItem, error) {
	var results []CollectionStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.PaymentTransaction{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, gateway as label, count(*) as value").
		Where(s.where(request, StatisticTypeDailyTransactionCount)).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Group("gateway").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyMockTransactionCount(ctx context.Context, request *CollectionStatisticRequest) ([]CollectionStatisticResponseDataItem, error) {
	var results []CollectionStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.PaymentTransaction{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, gateway as label, count(*) as value").
		Where("is_mock = ?", true).
		Where(s.where(request, StatisticTypeDailyMockTransactionCount)).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Group("gateway").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// getSuccessRate reports, per day and gateway, settled transactions that
// succeeded in basis points (value), settled total (value2) and successes (value3).
func (s *Service) getSuccessRate(ctx context.Context, request *CollectionStatisticRequest) ([]CollectionStatisticResponseDataItem, error) {
	var results []CollectionStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.PaymentTransaction{}).TableName()).
		Select(`TO_CHAR(created_at, 'YYYY-MM-DD') as date, gateway as label,
  CAST(ROUND(COUNT(*) FILTER (WHERE status = ?) * 10000.0 / COUNT(*)) AS INTEGER) as value,
  COUNT(*) as value2,
  COUNT(*) FILTER (WHERE status = ?) as value3`, types.TransactionStatusSuccess, types.TransactionStatusSuccess).
		Where("status IN ?", []types.TransactionStatus{types.TransactionStatusSuccess, types.TransactionStatusFailed}).
		Where(s.where(request, StatisticTypeSuccessRate)).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Group("gateway").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyCollectedAmount(ctx context.Context, request *CollectionStatisticRequest) ([]CollectionStatisticResponseDataItem, error) {
	var results []CollectionStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.FeePayment{}).TableName()).
		Select("TO_CHAR(paid_at, 'YYYY-MM-DD') as date, payment_method as label, sum(amount) as value, count(*) as value2").
		Where(s.where(request, StatisticTypeDailyCollectedAmount)).
		Group("TO_CHAR(paid_at, 'YYYY-MM-DD')").
		Group("payment_method").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// getTotalCollectedAmount is the running total per gateway for every day
// between the first and the last payment.
func (s *Service) getTotalCollectedAmount(ctx context.Context, request *CollectionStatisticRequest) ([]CollectionStatisticResponseDataItem, error) {
	var results []CollectionStatisticResponseDataItem
	filtered := s.db.WithContext(ctx).Table((models.FeePayment{}).TableName()).
		Select("paid_at, payment_method, amount").
		Where(s.where(request, StatisticTypeTotalCollectedAmount))
	err := s.db.WithContext(ctx).Raw(`
WITH payments AS (?),
min_max_dates AS (
    SELECT MIN(DATE(paid_at)) as min_date, MAX(DATE(paid_at)) as max_date FROM payments
),
distinct_dates AS (
    SELECT generate_series(min_date, max_date, '1 day'::interval) as date FROM min_max_dates
),
dates AS (
    SELECT TO_CHAR(date, 'YYYY-MM-DD') as date FROM distinct_dates
),
methods AS (
    SELECT DISTINCT payment_method as label FROM payments
),
date_method_combinations AS (
    SELECT d.date, m.label FROM dates d CROSS JOIN methods m
),
collected_date AS (
    SELECT dm.date, dm.label, COALESCE(SUM(p.amount), 0) as value
    FROM date_method_combinations dm
    LEFT JOIN payments p
      ON TO_CHAR(p.paid_at, 'YYYY-MM-DD') = dm.date
     AND p.payment_method = dm.label
    GROUP BY dm.date, dm.label
)
SELECT d.date as date, d.label as label, SUM(s.value) as value
FROM collected_date d
LEFT JOIN collected_date s ON s.date <= d.date AND s.label = d.label
GROUP BY d.date, d.label
ORDER BY d.date DESC, d.label ASC
`, filtered).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getCollectionStatistic(ctx context.Context, request *CollectionStatisticRequest, dataItem *CollectionStatisticDataItem) ([]CollectionStatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailyTransactionCount:
		return s.getDailyTransactionCount(ctx, request)
	case StatisticTypeDailyMockTransactionCount:
		return s.getDailyMockTransactionCount(ctx, request)
	case StatisticTypeSuccessRate:
		return s.getSuccessRate(ctx, request)
	case StatisticTypeDailyCollectedAmount:
		return s.getDailyCollectedAmount(ctx, request)
	case StatisticTypeTotalCollectedAmount:
		return s.getTotalCollectedAmount(ctx, request)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

// GetCollectionStatistic computes every requested data item concurrently.
func (s *Service) GetCollectionStatistic(ctx context.Context, request *CollectionStatisticRequest) (*CollectionStatisticResponse, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []CollectionStatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *CollectionStatisticDataItem) {
			defer wg.Done()
			res, err := s.getCollectionStatistic(ctx, request, di)
			if err != nil {
				errChan <- fmt.Errorf("%s: %w", di.ID, err)
				return
			}
			resChan <- &lo.Entry[StatisticType, []CollectionStatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	wg.Wait()
	close(errChan)
	close(resChan)
	for err := range errChan {
		return nil, err
	}

	results := make(map[StatisticType][]CollectionStatisticResponseDataItem, len(request.DataItems))
	for entry := range resChan {
		results[entry.Key] = entry.Value
	}
	return &CollectionStatisticResponse{DataItems: results}, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
