package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"replayfetch/pkg/config"
	"replayfetch/pkg/fetcher"
	"replayfetch/pkg/logger"
)

func newReplayServer(t *testing.T, format string, ids ...string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search.json" {
			if r.URL.Query().Get("format") != format {
				w.Write([]byte("[]"))
				return
			}
			parts := make([]string, len(ids))
			for i, id := range ids {
				parts[i] = fmt.Sprintf(`{"id":%q}`, id)
			}
			w.Write([]byte("[" + strings.Join(parts, ",") + "]"))
			return
		}
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".json")
		fmt.Fprintf(w, `{"id":%q}`, id)
	}))
	t.Cleanup(server.Close)
	return server
}

func isolateEnv(t *testing.T, baseURL string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("REPLAYFETCH_CONFIG", "")
	t.Setenv("REPLAYFETCH_BASE_URL", baseURL)
	t.Setenv("REPLAYFETCH_DELAY_MAX", "0s")
	t.Setenv("REPLAYFETCH_LOG_LEVEL", "error")
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCmd()

	var names []string
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		names = append(names, f.Name)
	})
	assert.ElementsMatch(t, []string{"format", "output"}, names)

	assert.Equal(t, config.DefaultFormat, cmd.Flags().Lookup("format").DefValue)
	assert.Equal(t, config.DefaultOutputDir, cmd.Flags().Lookup("output").DefValue)
}

func TestRootCommandRun(t *testing.T) {
	server := newReplayServer(t, "gen9ou", "gen9ou-1", "gen9ou-2")
	isolateEnv(t, server.URL)
	outDir := filepath.Join(t.TempDir(), "out")

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--format", "gen9ou", "--output", outDir})

	require.NoError(t, cmd.Execute())

	assert.FileExists(t, filepath.Join(outDir, "gen9ou-1.json"))
	assert.FileExists(t, filepath.Join(outDir, "gen9ou-2.json"))
	assert.Contains(t, stdout.String(), "Total battles processed: 2")
}

func TestRootCommandRejectsUnknownFlag(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--concurrency", "4"})

	assert.Error(t, cmd.Execute())
}

func TestRootCommandRejectsArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"gen9ou"})

	assert.Error(t, cmd.Execute())
}

func TestRootCommandRejectsEmptyFlagValues(t *testing.T) {
	server := newReplayServer(t, config.DefaultFormat, "gen9vgc2025regibo3-1")
	isolateEnv(t, server.URL)

	tests := [][]string{
		{"--format", "", "--output", t.TempDir()},
		{"--output", ""},
	}
	for _, args := range tests {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs(args)

		err := cmd.Execute()
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "failed to load configuration")
	}
}

func TestRootCommandInvalidConfig(t *testing.T) {
	isolateEnv(t, "ftp://example.com/")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--output", t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Showdown.BaseURL = baseURL + "/"
	cfg.Showdown.Format = "gen9ou"
	cfg.Download.OutputDir = filepath.Join(t.TempDir(), "replays")
	cfg.Download.DelayMax = 0
	return cfg
}

func TestFetchCanceledStillReports(t *testing.T) {
	server := newReplayServer(t, "gen9ou", "gen9ou-1")
	cfg := testConfig(t, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	summary, err := fetch(ctx, cfg, logger.NewTestLogger(), &out)
	require.NoError(t, err)
	assert.Equal(t, fetcher.StopCanceled, summary.StopReason)
	assert.Contains(t, out.String(), "Run canceled")
}

func TestFetchOutputDirError(t *testing.T) {
	server := newReplayServer(t, "gen9ou")
	cfg := testConfig(t, server.URL)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	cfg.Download.OutputDir = filepath.Join(file, "replays")

	_, err := fetch(context.Background(), cfg, logger.NewTestLogger(), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestFetchMetricsPortInUse(t *testing.T) {
	server := newReplayServer(t, "gen9ou")
	cfg := testConfig(t, server.URL)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	cfg.Metrics.Listen = ln.Addr().String()

	_, err = fetch(context.Background(), cfg, logger.NewTestLogger(), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics endpoint")
}

func TestFetchWithMetrics(t *testing.T) {
	server := newReplayServer(t, "gen9ou", "gen9ou-9")
	cfg := testConfig(t, server.URL)
	cfg.Metrics.Listen = "127.0.0.1:0"

	summary, err := fetch(context.Background(), cfg, logger.NewTestLogger(), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Downloaded)
}
