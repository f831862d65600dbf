package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/schoolhub/feepay/internal/app/api/server"
	"github.com/schoolhub/feepay/internal/app/service/payment"
	"github.com/schoolhub/feepay/internal/app/service/payment_log"
	"github.com/schoolhub/feepay/internal/app/service/receipt"
	"github.com/schoolhub/feepay/internal/app/service/report"
	"github.com/schoolhub/feepay/internal/app/service/statistics"
	"github.com/schoolhub/feepay/internal/platform/db"
	"github.com/schoolhub/feepay/internal/platform/kafka"
	"github.com/schoolhub/feepay/internal/platform/mailer"
	"github.com/schoolhub/feepay/pkg/config"
	"github.com/schoolhub/feepay/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

func auditLog(s *payment_log.Service) payment.AuditLog { return s }

func receiptNotifier(s *receipt.Service) payment.ReceiptNotifier { return s }

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	kafka.Module,
	mailer.Module,
	server.Module,
	payment_log.Module,
	receipt.Module,
	payment.Module,
	report.Module,
	statistics.Module,
	fx.Provide(auditLog, receiptNotifier),
)
