package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

var (
	// Global logger instance
	Logger *zap.Logger

	// Metrics
	offensesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "spam_offenses_total",
			Help: "Total number of rate violations recorded in the offense ledger",
		},
	)

	escalationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spam_escalations_total",
			Help: "Total number of escalation actions taken by the spam filter",
		},
		[]string{"action"},
	)

	droppedMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "spam_dropped_messages_total",
			Help: "Total number of messages removed from filtered batches",
		},
	)

	filterBatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spam_filter_batch_duration_seconds",
			Help:    "Time spent filtering one update batch",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	apiCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "telegram_api_call_duration_seconds",
			Help:    "Time spent on remote API calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// Init registers metrics and sets up the zap logger and tracer provider.
func Init(_ context.Context) error {
	var err error
	Logger, err = zap.NewProduction()
	if err != nil {
		return err
	}

	prometheus.MustRegister(offensesTotal)
	prometheus.MustRegister(escalationsTotal)
	prometheus.MustRegister(droppedMessagesTotal)
	prometheus.MustRegister(filterBatchDuration)
	prometheus.MustRegister(apiCallDuration)

	tp := trace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	Logger.Info("observability initialized")
	return nil
}

// RecordOffense counts one rate violation.
func RecordOffense() {
	offensesTotal.Inc()
}

// RecordEscalation counts one warn/excommunicate/lift action.
func RecordEscalation(action string) {
	escalationsTotal.WithLabelValues(action).Inc()
}

// RecordDroppedMessages counts messages removed from a filtered batch.
func RecordDroppedMessages(n int) {
	droppedMessagesTotal.Add(float64(n))
}

// StartFilterBatch returns a function to record batch filtering duration.
func StartFilterBatch() func(status string) {
	start := time.Now()
	return func(status string) {
		filterBatchDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}
}

// ObserveAPICall records the duration of one remote API call.
func ObserveAPICall(method string, start time.Time) {
	apiCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

// Server exposes /metrics and /healthz. Implements lifecycle.Component.
type Server struct {
	addr string
	srv  *http.Server
}

func NewServer(addr string) *Server {
	return &Server{addr: addr}
}

func (s *Server) Start(_ context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.srv = &http.Server{Addr: s.addr, Handler: mux}
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			Logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
