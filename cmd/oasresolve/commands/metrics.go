package commands

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/erraggy/oasresolve/resolver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "oasresolve"

// watchMetrics records the outcome of every resolution a watch session runs.
type watchMetrics struct {
	resolutions     *prometheus.CounterVec
	duration        prometheus.Histogram
	documentsLoaded prometheus.Gauge
	entitiesInlined prometheus.Gauge
	lastSuccess     prometheus.Gauge
}

func newWatchMetrics(reg prometheus.Registerer) *watchMetrics {
	m := &watchMetrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "watch",
			Name:      "resolutions_total",
			Help:      "Resolutions run by the watcher, by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "watch",
			Name:      "resolution_duration_seconds",
			Help:      "Time taken by successful resolutions.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		documentsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "watch",
			Name:      "documents_loaded",
			Help:      "External documents read by the last successful resolution.",
		}),
		entitiesInlined: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "watch",
			Name:      "entities_inlined",
			Help:      "Entities and subtypes copied into the root by the last successful resolution.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "watch",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful resolution.",
		}),
	}
	reg.MustRegister(m.resolutions, m.duration, m.documentsLoaded, m.entitiesInlined, m.lastSuccess)
	return m
}

func (m *watchMetrics) observe(res *resolver.Result, err error) {
	if err != nil || res == nil {
		m.resolutions.WithLabelValues("error").Inc()
		return
	}
	m.resolutions.WithLabelValues("success").Inc()
	m.duration.Observe(res.ResolveTime.Seconds())
	m.documentsLoaded.Set(float64(res.Stats.DocumentsLoaded))
	m.entitiesInlined.Set(float64(res.Stats.EntitiesInlined + res.Stats.SubtypesInlined))
	m.lastSuccess.SetToCurrentTime()
}

// serveMetrics exposes reg on addr under /metrics until ctx is cancelled.
// The listener is opened before returning so address errors surface at once.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *slog.Logger) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", ln.Addr().String())
	return ln.Addr(), nil
}
