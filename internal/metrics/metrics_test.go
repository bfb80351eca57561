package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFetchSuccess()
	c.RecordFetchSuccess()
	c.RecordFetchFailure("http_status")
	c.RecordParseFailure()
	c.RecordSharedFetch()

	if got := testutil.ToFloat64(c.fetchSuccess); got != 2 {
		t.Errorf("fetch success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.fetchFail.WithLabelValues("http_status")); got != 1 {
		t.Errorf("fetch fail{http_status} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.parseFail); got != 1 {
		t.Errorf("parse fail = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.sharedFetch); got != 1 {
		t.Errorf("shared fetch = %v, want 1", got)
	}
}

func TestCollector_Latency(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFetchLatency(250 * time.Millisecond)

	if n := testutil.CollectAndCount(c.fetchLatency); n != 1 {
		t.Errorf("latency series = %d, want 1", n)
	}
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordFetchSuccess()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "wavecast_feed_fetch_success_total 1") {
		t.Errorf("metrics body missing success counter:\n%s", body)
	}
}
