package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Dicklesworthstone/pipegauge/internal/model"
	"github.com/Dicklesworthstone/pipegauge/internal/router"
	"github.com/Dicklesworthstone/pipegauge/internal/sampler"
	"github.com/Dicklesworthstone/pipegauge/internal/toast"
	"github.com/Dicklesworthstone/pipegauge/internal/widget"
)

func newTestServer(t *testing.T, leadID string) (*httptest.Server, *observer.ObservedLogs) {
	t.Helper()
	core, obs := observer.New(zap.InfoLevel)
	log := zap.New(core).Sugar()

	rt := router.New(log, router.DefaultLeads()...)
	gen := sampler.New(time.Hour, model.Seed(), sampler.NewSource(1), log)
	w := widget.New(gen, toast.New(leadID, "Acme Corp"), rt, log,
		widget.WithHostInfo(func() model.Host { return model.Host{Hostname: "h"} }))

	ts := httptest.NewServer(New(":0", w, rt, log).Handler())
	t.Cleanup(ts.Close)
	return ts, obs
}

func do(t *testing.T, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestFrame(t *testing.T) {
	ts, obs := newTestServer(t, "12345")

	for _, path := range []string{"/", "/api/frame", "/api/frame/"} {
		resp := do(t, http.MethodGet, ts.URL+path)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var f model.Frame
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&f))
		assert.Equal(t, 78.0, f.State.Pressure)
		assert.Equal(t, 12482, f.State.Metrics.Leads)
		assert.Equal(t, 75.0, f.Gauge.NeedleAngle)
		assert.True(t, f.Toast.Visible)
	}
	assert.Equal(t, 3, obs.FilterMessage("request").Len())
}

func TestViewDetailsThenLead(t *testing.T) {
	ts, _ := newTestServer(t, "12345")

	resp := do(t, http.MethodPost, ts.URL+"/api/toast/view-details")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var nav navigation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&nav))
	assert.Equal(t, "/lead/12345", nav.Location)

	resp = do(t, http.MethodGet, ts.URL+nav.Location)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lead model.Lead
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lead))
	assert.Equal(t, "Acme Corp", lead.Company)
	assert.Equal(t, "New", lead.Status)

	// details click does not bubble to the tile
	resp = do(t, http.MethodGet, ts.URL+"/api/frame")
	var f model.Frame
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&f))
	assert.False(t, f.Expanded)
	assert.True(t, f.Toast.Visible)
}

func TestDismissTwiceThenViewDetails(t *testing.T) {
	ts, _ := newTestServer(t, "12345")

	for i := 0; i < 2; i++ {
		resp := do(t, http.MethodPost, ts.URL+"/api/toast/dismiss")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var tst model.Toast
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&tst))
		assert.False(t, tst.Visible)
	}

	resp := do(t, http.MethodPost, ts.URL+"/api/toast/view-details")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestViewDetailsLeadOutsideCatalog(t *testing.T) {
	ts, _ := newTestServer(t, "99999")

	resp := do(t, http.MethodPost, ts.URL+"/api/toast/view-details")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var nav navigation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&nav))
	assert.Equal(t, "/lead/99999", nav.Location)
}

func TestTileClick(t *testing.T) {
	ts, _ := newTestServer(t, "12345")

	resp := do(t, http.MethodPost, ts.URL+"/api/tile/click")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var f model.Frame
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&f))
	assert.True(t, f.Expanded)
}

func TestAnyLeadIDRendersTemplate(t *testing.T) {
	ts, _ := newTestServer(t, "12345")
	resp := do(t, http.MethodGet, ts.URL+"/lead/404")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var lead model.Lead
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lead))
	assert.Equal(t, model.Lead{ID: "404", Company: "Acme Corp", Status: "New", PotentialValue: 125000}, lead)
}

func TestReleasePressure(t *testing.T) {
	ts, obs := newTestServer(t, "12345")

	resp := do(t, http.MethodPost, ts.URL+"/api/pressure/release")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var f model.Frame
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&f))
	assert.Equal(t, 58.0, f.State.Pressure)
	assert.Equal(t, 45.0, f.Gauge.NeedleAngle)
	assert.False(t, f.Expanded)
	assert.Equal(t, 1, obs.FilterMessage("pressure released").Len())

	for i := 0; i < 4; i++ {
		do(t, http.MethodPost, ts.URL+"/api/pressure/release")
	}
	resp = do(t, http.MethodGet, ts.URL+"/api/frame")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&f))
	assert.Equal(t, 0.0, f.State.Pressure)

	resp = do(t, http.MethodGet, ts.URL+"/api/pressure/release")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t, "12345")
	resp := do(t, http.MethodGet, ts.URL+"/api/toast/dismiss")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
