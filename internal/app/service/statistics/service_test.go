package statistics

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/schoolhub/feepay/internal/models"
	"github.com/schoolhub/feepay/pkg/types"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=feepay dbname=feepay sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestCollectionStatisticRequest_Validate(t *testing.T) {
	require.Error(t, (*CollectionStatisticRequest)(nil).Validate())
	require.Error(t, (&CollectionStatisticRequest{}).Validate())
	require.Error(t, (&CollectionStatisticRequest{DataItems: []*CollectionStatisticDataItem{{ID: "daily_gmv"}}}).Validate())
	require.Error(t, (&CollectionStatisticRequest{
		DataItems: []*CollectionStatisticDataItem{{ID: StatisticTypeSuccessRate}},
		Filters:   []*types.CommonFilter{{Field: "student_id", Operator: types.CommonFilterOperatorEq, Values: []any{"s1"}}},
	}).Validate())
	require.NoError(t, (&CollectionStatisticRequest{
		DataItems: []*CollectionStatisticDataItem{{ID: StatisticTypeDailyCollectedAmount}, {ID: StatisticTypeSuccessRate}},
		Filters:   []*types.CommonFilter{{Field: "gateway", Operator: types.CommonFilterOperatorEq, Values: []any{"esewa"}}},
	}).Validate())
}

func TestScope_MapsColumnsPerTable(t *testing.T) {
	db := dryRunDB(t)
	req := &CollectionStatisticRequest{
		Filters: []*types.CommonFilter{
			{Field: "gateway", Operator: types.CommonFilterOperatorEq, Values: []any{"khalti"}},
			{Field: "is_mock", Operator: types.CommonFilterOperatorEq, Values: []any{true}},
			{Field: "created_at", Operator: types.CommonFilterOperatorGte, Values: []any{"2026-01-01"}},
		},
	}

	var txns []models.PaymentTransaction
	stmt := db.Table("payment_transactions").
		Where(clause.Where{Exprs: []clause.Expression{req.scope(StatisticTypeDailyTransactionCount)}}).
		Find(&txns).Statement
	sql := stmt.SQL.String()
	require.Contains(t, sql, `"gateway" = $1`)
	require.Contains(t, sql, `"is_mock" = $2`)
	require.Contains(t, sql, `"created_at" >= $3`)

	var payments []models.FeePayment
	stmt = db.Table("fee_payments").
		Where(clause.Where{Exprs: []clause.Expression{req.scope(StatisticTypeDailyCollectedAmount)}}).
		Find(&payments).Statement
	sql = stmt.SQL.String()
	require.Contains(t, sql, `"payment_method" = $1`)
	require.Contains(t, sql, `"paid_at" >= $2`)
	require.NotContains(t, sql, "is_mock")
	require.Equal(t, "gateway", req.Filters[0].Field)
}

func TestScope_NoFiltersMatchesAll(t *testing.T) {
	db := dryRunDB(t)
	req := &CollectionStatisticRequest{}

	var payments []models.FeePayment
	stmt := db.Table("fee_payments").
		Where(clause.Where{Exprs: []clause.Expression{req.scope(StatisticTypeTotalCollectedAmount)}}).
		Find(&payments).Statement
	require.Contains(t, stmt.SQL.String(), "1=1")
}
