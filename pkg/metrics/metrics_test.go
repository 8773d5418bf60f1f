package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	assert.Equal(t, prometheus.DefaultRegisterer, Registry)
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(replaysTotal.WithLabelValues("downloaded"))
	ObserveReplay("downloaded")
	ObserveReplay("downloaded")
	assert.Equal(t, before+2, testutil.ToFloat64(replaysTotal.WithLabelValues("downloaded")))

	failedBefore := testutil.ToFloat64(listingPagesTotal.WithLabelValues("failed"))
	ObservePage(false)
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(listingPagesTotal.WithLabelValues("failed")))

	errBefore := testutil.ToFloat64(fetchErrorsTotal.WithLabelValues("timeout"))
	ObserveError("timeout")
	assert.Equal(t, errBefore+1, testutil.ToFloat64(fetchErrorsTotal.WithLabelValues("timeout")))

	ObserveRequest(EndpointSearch, 120*time.Millisecond)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(requestDurationSeconds), 1)
}

func TestServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	// Reserve a free port
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	done, err := Serve(ctx, addr)
	require.NoError(t, err)

	ObserveReplay("existing")

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "replayfetch_replays_total")

	// A second server on the same port is refused
	_, err = Serve(ctx, addr)
	assert.Error(t, err)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("metrics server did not stop")
	}
}
