// Package metrics holds the Prometheus metrics of the replay fetcher and the
// optional HTTP endpoint exposing them.
//
// Metrics:
//   - replayfetch_listing_pages_total{result} (Counter): listing pages by result (ok, failed)
//   - replayfetch_replays_total{outcome} (Counter): records by outcome (downloaded, existing, missing_id, failed)
//   - replayfetch_request_duration_seconds{endpoint} (Histogram): request latency (search, replay)
//   - replayfetch_fetch_errors_total{type} (Counter): errors by pkg/errors type
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Endpoint labels
const (
	EndpointSearch = "search"
	EndpointReplay = "replay"
)

// Registry is the registerer all replayfetch metrics are created on.
var Registry = prometheus.DefaultRegisterer

var (
	listingPagesTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "replayfetch_listing_pages_total",
		Help: "Listing pages fetched by result",
	}, []string{"result"})

	replaysTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "replayfetch_replays_total",
		Help: "Listed battle records by outcome",
	}, []string{"outcome"})

	requestDurationSeconds = promauto.With(Registry).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "replayfetch_request_duration_seconds",
		Help:    "Duration of requests to the replay server by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	fetchErrorsTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "replayfetch_fetch_errors_total",
		Help: "Fetch errors by type",
	}, []string{"type"})
)

// ObservePage counts a listing page fetch.
func ObservePage(ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	listingPagesTotal.WithLabelValues(result).Inc()
}

// ObserveReplay counts a record outcome.
func ObserveReplay(outcome string) {
	replaysTotal.WithLabelValues(outcome).Inc()
}

// ObserveRequest records the duration of one request.
func ObserveRequest(endpoint string, d time.Duration) {
	requestDurationSeconds.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveError counts an error by its type label.
func ObserveError(errType string) {
	fetchErrorsTotal.WithLabelValues(errType).Inc()
}

// Serve exposes /metrics on addr until ctx is done. The listener is bound
// before Serve returns so a busy port is reported to the caller.
func Serve(ctx context.Context, addr string) (<-chan error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		done <- err
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return done, nil
}
