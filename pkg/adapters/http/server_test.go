package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/grove"
	"github.com/aretw0/grove/internal/logging"
	"github.com/aretw0/grove/pkg/domain"
	"github.com/aretw0/grove/pkg/dsl"
	"github.com/aretw0/grove/pkg/reporter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSuite() *grove.Suite {
	suite := grove.New()
	suite.Describe("math", func(c *dsl.C) {
		c.It("adds", dsl.Noop)
		c.It("divides", func(context.Context, domain.Resolver) error {
			return errors.New("division by zero")
		})
	})
	return suite
}

func TestGetNodes(t *testing.T) {
	handler := NewHandler(newSuite())

	req := httptest.NewRequest("GET", "/nodes", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var nodes []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nodes))
	require.Len(t, nodes, 1)
	assert.Equal(t, "math", nodes[0]["description"])
	assert.Equal(t, "[0]", nodes[0]["address"])
	assert.Len(t, nodes[0]["children"], 2)
}

func TestGetNode(t *testing.T) {
	handler := NewHandler(newSuite())

	tests := []struct {
		path string
		code int
	}{
		{"/nodes/0:1", http.StatusOK},
		{"/nodes/9", http.StatusNotFound},
		{"/nodes/x", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))
		assert.Equal(t, tt.code, w.Code, tt.path)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/nodes/0:1", nil))
	assert.Contains(t, w.Body.String(), `"description":"divides"`)
}

func TestPostRun(t *testing.T) {
	handler := NewHandler(newSuite())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/runs", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var report domain.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Len(t, report.Results, 2)
	assert.Equal(t, domain.StatusFailed, report.Results[1].Status)
	assert.Equal(t, "division by zero", report.Results[1].Failure)

	body := bytes.NewBufferString(`{"select": ["[0:0]"]}`)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/runs", body))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Len(t, report.Results, 1)
	assert.Equal(t, domain.Address{0, 0}, report.Results[0].Address)
}

func TestPostRun_BadRequests(t *testing.T) {
	handler := NewHandler(newSuite())

	for _, body := range []string{`{"select": ["[5]"]}`, `{"select": ["nope"]}`, `not json`} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/runs", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestBuildErrorIsServerError(t *testing.T) {
	suite := grove.New()
	suite.Set("", 1)
	handler := NewHandler(suite)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/nodes", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Build error")
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := reporter.NewMetrics(reg)
	require.NoError(t, err)
	handler := NewHandler(newSuite(), WithMetrics(reg, m))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/runs", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `grove_examples_total{status="failed"} 1`)
	assert.Contains(t, w.Body.String(), `grove_runs_total{outcome="failed"} 1`)
}

type brokenReporter struct{}

func (brokenReporter) Hooks() domain.LifecycleHooks { return domain.LifecycleHooks{} }
func (brokenReporter) Finish(*domain.Report) error  { return errors.New("pushgateway unreachable") }

func TestPostRun_LogsMetricsFinishError(t *testing.T) {
	var logs bytes.Buffer
	server := &Server{
		Suite:   newSuite(),
		Streams: NewStreamManager(),
		logger:  logging.NewWithWriter(&logs, slog.LevelDebug),
		metrics: brokenReporter{},
	}

	w := httptest.NewRecorder()
	server.PostRun(w, httptest.NewRequest("POST", "/runs", nil))

	assert.Equal(t, http.StatusOK, w.Code, "the report is still served")
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "Metrics finish failed")
	assert.Contains(t, logs.String(), "pushgateway unreachable")
}

func TestGetGraphAndInfo(t *testing.T) {
	handler := NewHandler(newSuite())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/graph", nil))
	assert.Contains(t, w.Body.String(), "graph TD")

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/info", nil))
	assert.Contains(t, w.Body.String(), grove.Version)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("OPTIONS", "/runs", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSubscribeEvents(t *testing.T) {
	srv := httptest.NewServer(NewHandler(newSuite()))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events?type=result", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	runResp, err := http.Post(srv.URL+"/runs", "application/json", nil)
	require.NoError(t, err)
	runResp.Body.Close()

	var events []string
	for len(events) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: ") {
			events = append(events, strings.TrimSpace(strings.TrimPrefix(line, "event: ")))
		}
	}
	assert.Equal(t, []string{"result", "result"}, events)
}
