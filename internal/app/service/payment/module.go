package payment

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/schoolhub/feepay/internal/platform/khalti"
	"github.com/schoolhub/feepay/pkg/config"
	"github.com/schoolhub/feepay/pkg/metrics"
)

func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Payment.HTTPTimeout}
}

func newKhaltiClient(cfg *config.Config, hc *http.Client) *khalti.Client {
	return khalti.New(cfg.Payment.Khalti.BaseURL, cfg.Payment.Khalti.SecretKey, hc)
}

func newRegistry(esewa *EsewaGateway, k *KhaltiGateway, ime *ImePayGateway) *Registry {
	return NewRegistry(esewa, k, ime)
}

func newPaymentRecorder() *metrics.PaymentRecorder {
	return metrics.NewPaymentRecorder(prometheus.DefaultRegisterer)
}

// Module exposes the payment coordinator via Fx. AuditLog and ReceiptNotifier
// are bound by the app module.
var Module = fx.Options(
	fx.Provide(newHTTPClient),
	fx.Provide(newKhaltiClient),
	fx.Provide(newPaymentRecorder),
	fx.Provide(NewEsewaGateway, NewKhaltiGateway, NewImePayGateway),
	fx.Provide(newRegistry),
	fx.Provide(fx.Annotate(NewGormStore, fx.As(new(Store)))),
	fx.Provide(fx.Annotate(NewBrokerEventPublisher, fx.As(new(EventPublisher)))),
	fx.Provide(fx.Annotate(NewService, fx.As(new(Coordinator)))),
)
