package payment_log

import (
	"context"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/schoolhub/feepay/internal/models"
	"github.com/schoolhub/feepay/pkg/logctx"
	"github.com/schoolhub/feepay/pkg/tool"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	wg  sync.WaitGroup
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a gateway event. Nil input is ignored.
func (s *Service) Save(ctx context.Context, ev *models.PaymentGatewayEvent) {
	if ev == nil {
		return
	}
	if ev.ID == "" {
		ev.ID = tool.GenerateUUIDV7()
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.db.WithContext(context.WithoutCancel(ctx)).Create(ev).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorw("failed to save payment gateway event", "kind", ev.Kind, "transaction_id", ev.TransactionID, "error", err)
		}
	}()
}

// Flush waits for pending writes.
func (s *Service) Flush() {
	s.wg.Wait()
}

func register(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.StopHook(s.Flush))
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(register),
)
