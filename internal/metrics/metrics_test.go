package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var expectedMetrics = []string{
	"iptv_checker_probes_total",
	"iptv_checker_cache_lookups_total",
	"iptv_checker_source_entries",
	"iptv_checker_source_failures_total",
	"iptv_checker_notifications_total",
	"iptv_checker_run_duration_seconds",
	"iptv_checker_last_run_timestamp_seconds",
}

func initMetrics() {
	RecordProbe("head", "live")
	RecordCacheLookup(true)
	RecordCacheLookup(false)
	SetSourceEntries("init", "parsed", 0)
	RecordSourceFailure("init", "fetch")
	RecordNotification("init", nil)
	RecordNotification("init", errors.New("boom"))
	ObserveRun(time.Now().Add(-time.Second), time.Now())
}

func TestMetricsEndpoint(t *testing.T) {
	initMetrics()

	server := httptest.NewServer(promhttp.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("Failed to get metrics: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("failed to close response body: %v", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}

	output := string(body)
	for _, metric := range expectedMetrics {
		if !strings.Contains(output, metric) {
			t.Errorf("Expected metric %s not found in output", metric)
		}
	}
}

func TestWriteTextfile(t *testing.T) {
	initMetrics()

	path := filepath.Join(t.TempDir(), "iptv_checker.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `iptv_checker_cache_lookups_total{result="hit"}`) {
		t.Errorf("textfile missing cache lookups:\n%s", data)
	}
}
