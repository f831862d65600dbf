package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const paymentSubsystem = "feepay"

var paymentInitiated = &Metric{
	ID:          "paymentInitiated",
	Name:        "payment_initiated_total",
	Description: "Payment initiations partitioned by gateway and whether the mock path was used.",
	Type:        "counter_vec",
	Args:        []string{"gateway", "mock"},
}

var paymentVerified = &Metric{
	ID:          "paymentVerified",
	Name:        "payment_verified_total",
	Description: "Payment verifications partitioned by gateway and outcome.",
	Type:        "counter_vec",
	Args:        []string{"gateway", "outcome"},
}

var gatewayFallback = &Metric{
	ID:          "gatewayFallback",
	Name:        "gateway_fallback_total",
	Description: "Live gateway calls that failed and were downgraded to the mock path.",
	Type:        "counter_vec",
	Args:        []string{"gateway", "operation"},
}

// PaymentRecorder records payment lifecycle metrics. The zero value drops everything.
type PaymentRecorder struct {
	initiated *prometheus.CounterVec
	verified  *prometheus.CounterVec
	fallback  *prometheus.CounterVec
	bpDur     *prometheus.HistogramVec
}

var (
	paymentRecorderOnce sync.Once
	paymentRecorder     *PaymentRecorder
)

// NewPaymentRecorder registers the payment metrics with reg once per process.
func NewPaymentRecorder(reg prometheus.Registerer) *PaymentRecorder {
	paymentRecorderOnce.Do(func() {
		r := &PaymentRecorder{}
		for _, m := range []*Metric{paymentInitiated, paymentVerified, gatewayFallback, MetricsBusinessProcess} {
			c := NewMetric(m, paymentSubsystem)
			if err := reg.Register(c); err != nil {
				if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
					c = are.ExistingCollector
				}
			}
			m.MetricCollector = c
		}
		r.initiated = paymentInitiated.MetricCollector.(*prometheus.CounterVec)
		r.verified = paymentVerified.MetricCollector.(*prometheus.CounterVec)
		r.fallback = gatewayFallback.MetricCollector.(*prometheus.CounterVec)
		r.bpDur = MetricsBusinessProcess.MetricCollector.(*prometheus.HistogramVec)
		paymentRecorder = r
	})
	return paymentRecorder
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (r *PaymentRecorder) Initiated(gateway string, mock bool) {
	if r == nil || r.initiated == nil {
		return
	}
	r.initiated.WithLabelValues(gateway, boolLabel(mock)).Inc()
}

func (r *PaymentRecorder) Verified(gateway, outcome string) {
	if r == nil || r.verified == nil {
		return
	}
	r.verified.WithLabelValues(gateway, outcome).Inc()
}

func (r *PaymentRecorder) GatewayFallback(gateway, operation string) {
	if r == nil || r.fallback == nil {
		return
	}
	r.fallback.WithLabelValues(gateway, operation).Inc()
}

// ObserveGatewayCall records the latency of an outbound gateway call.
func (r *PaymentRecorder) ObserveGatewayCall(gateway, operation string, start time.Time) {
	if r == nil || r.bpDur == nil {
		return
	}
	r.bpDur.WithLabelValues("gateway_"+gateway, operation).Observe(MillisecondsSince(start))
}
