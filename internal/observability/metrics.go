// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the feature pipeline.
type Metrics struct {
	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  prometheus.Histogram

	// Input metrics
	BarsRead       prometheus.Counter
	FillsRead      prometheus.Counter
	DuplicateBars  prometheus.Counter
	DroppedFills   prometheus.Counter
	CoercedCells   *prometheus.CounterVec
	FeatureRows    prometheus.Counter
	FeatureStoreOp *prometheus.CounterVec

	// Backtest metrics
	BacktestRunsTotal *prometheus.CounterVec
	BacktestDuration  prometheus.Histogram
	QuoteFills        *prometheus.CounterVec
	QuoteFillQty      *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered with reg.
// A nil registerer uses the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "bar_feature_lab"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Pipeline metrics
		PipelineRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"status"}),
		PipelineDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline execution duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),

		// Input metrics
		BarsRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "input",
			Name:      "bars_read_total",
			Help:      "Total number of bars kept after deduplication",
		}),
		FillsRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "input",
			Name:      "fills_read_total",
			Help:      "Total number of fills read",
		}),
		DuplicateBars: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "input",
			Name:      "duplicate_bars_total",
			Help:      "Total number of bars dropped for a repeated ts",
		}),
		DroppedFills: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "input",
			Name:      "dropped_fills_total",
			Help:      "Total number of fills dropped for an unparsable ts",
		}),
		CoercedCells: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "input",
			Name:      "coerced_cells_total",
			Help:      "Total number of cells replaced by a fallback value, by column",
		}, []string{"column"}),
		FeatureRows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "feature_rows_total",
			Help:      "Total number of feature rows written",
		}),
		FeatureStoreOp: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "store_operations_total",
			Help:      "Total number of feature store operations by backend and status",
		}, []string{"backend", "status"}),

		// Backtest metrics
		BacktestRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "runs_total",
			Help:      "Total number of backtest runs by status",
		}, []string{"status"}),
		BacktestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "duration_seconds",
			Help:      "Backtest execution duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}),
		QuoteFills: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "quote_fills_total",
			Help:      "Total number of simulated quote executions by side",
		}, []string{"side"}),
		QuoteFillQty: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "quote_fill_qty_total",
			Help:      "Total simulated executed quantity by side",
		}, []string{"side"}),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful pipeline run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics and /health on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordInput records read counters for one run.
func (m *Metrics) RecordInput(bars, fills, duplicateBars, droppedFills int) {
	m.BarsRead.Add(float64(bars))
	m.FillsRead.Add(float64(fills))
	m.DuplicateBars.Add(float64(duplicateBars))
	m.DroppedFills.Add(float64(droppedFills))
}

// RecordCoerced records cells replaced by a fallback value.
func (m *Metrics) RecordCoerced(column string, n int) {
	if n > 0 {
		m.CoercedCells.WithLabelValues(column).Add(float64(n))
	}
}

// RecordStoreOp records a feature store write.
func (m *Metrics) RecordStoreOp(backend string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.FeatureStoreOp.WithLabelValues(backend, status).Inc()
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, seconds float64, err error) {
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordPipelineRun records a pipeline run.
func (m *Metrics) RecordPipelineRun(status string, durationSeconds float64, rows int) {
	m.PipelineRunsTotal.WithLabelValues(status).Inc()
	m.PipelineDuration.Observe(durationSeconds)
	if status == "success" {
		m.FeatureRows.Add(float64(rows))
		m.LastSuccessfulRun.SetToCurrentTime()
	}
}

// RecordPipelineRun records a pipeline run on DefaultMetrics.
func RecordPipelineRun(status string, durationSeconds float64, rows int) {
	DefaultMetrics.RecordPipelineRun(status, durationSeconds, rows)
}

// RecordBacktest records a backtest run.
func (m *Metrics) RecordBacktest(status string, durationSeconds float64) {
	m.BacktestRunsTotal.WithLabelValues(status).Inc()
	m.BacktestDuration.Observe(durationSeconds)
}

// RecordQuoteFill records one simulated execution.
func (m *Metrics) RecordQuoteFill(side string, qty float64) {
	m.QuoteFills.WithLabelValues(side).Inc()
	m.QuoteFillQty.WithLabelValues(side).Add(qty)
}
