package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tablepos"

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// MethodUnsupported is the method label for payment types with no method
const MethodUnsupported = "unsupported"

// Metrics groups the counters of the transactional core. A nil *Metrics is
// valid and records nothing
type Metrics struct {
	Payments     *prometheus.CounterVec
	OrderOps     *prometheus.CounterVec
	StockCommits *prometheus.CounterVec
}

// New creates the counters and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_total",
		Help:      "Payment attempts by method and outcome.",
	}, []string{"method", "outcome"})
	orderOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_operations_total",
		Help:      "Order lifecycle operations by operation and outcome.",
	}, []string{"operation", "outcome"})
	stockCommits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_commits_total",
		Help:      "Stock commits performed at payment time by outcome.",
	}, []string{"outcome"})

	reg.MustRegister(payments, orderOps, stockCommits)
	return &Metrics{Payments: payments, OrderOps: orderOps, StockCommits: stockCommits}
}

func (m *Metrics) ObservePayment(method string, success bool) {
	if m == nil {
		return
	}
	m.Payments.WithLabelValues(method, outcome(success)).Inc()
}

func (m *Metrics) ObserveOrderOp(operation string, err error) {
	if m == nil {
		return
	}
	m.OrderOps.WithLabelValues(operation, outcome(err == nil)).Inc()
}

func (m *Metrics) ObserveStockCommit(err error) {
	if m == nil {
		return
	}
	m.StockCommits.WithLabelValues(outcome(err == nil)).Inc()
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func outcome(success bool) string {
	if success {
		return OutcomeSuccess
	}
	return OutcomeFailure
}
