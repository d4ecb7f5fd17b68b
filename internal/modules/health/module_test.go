package health

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fivesec_bot/internal/models"
	"fivesec_bot/internal/modules/health/service"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStatus models.SessionStatus

func (f fixedStatus) Status() models.SessionStatus { return models.SessionStatus(f) }

func get(t *testing.T, srv *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestMux(t *testing.T) {
	state := service.NewState()
	reg := prometheus.NewRegistry()
	hits := prometheus.NewCounter(prometheus.CounterOpts{Name: "fivesec_test_hits_total", Help: "x"})
	reg.MustRegister(hits)
	hits.Inc()

	var candlesReady atomic.Bool
	state.SetReadyCheck(candlesReady.Load)

	srv := httptest.NewServer(NewMux(state, fixedStatus{State: "IDLE", Trades: 3}, reg))
	defer srv.Close()

	code, _ := get(t, srv, "/livez")
	assert.Equal(t, http.StatusOK, code)

	code, _ = get(t, srv, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	state.SetReady(true)
	code, _ = get(t, srv, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code, "flag alone is not enough")

	candlesReady.Store(true)
	code, _ = get(t, srv, "/readyz")
	assert.Equal(t, http.StatusOK, code)

	state.SetWSConnected(true)
	state.TouchTick(time.UnixMilli(1_700_000_000_123))
	code, body := get(t, srv, "/healthz")
	require.Equal(t, http.StatusOK, code)

	var resp struct {
		Ready          bool                 `json:"ready"`
		WSConnected    bool                 `json:"wsConnected"`
		LastTickUnixMs int64                `json:"lastTickUnixMs"`
		Session        models.SessionStatus `json:"session"`
	}
	require.NoError(t, sonic.UnmarshalString(body, &resp))
	assert.True(t, resp.Ready)
	assert.True(t, resp.WSConnected)
	assert.Equal(t, int64(1_700_000_000_123), resp.LastTickUnixMs)
	assert.Equal(t, 3, resp.Session.Trades)

	code, body = get(t, srv, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "fivesec_test_hits_total 1")
}
