package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/pipegauge/internal/gauge"
	"github.com/Dicklesworthstone/pipegauge/internal/model"
	"github.com/Dicklesworthstone/pipegauge/internal/router"
	"github.com/Dicklesworthstone/pipegauge/internal/sampler"
	"github.com/Dicklesworthstone/pipegauge/internal/toast"
	"github.com/Dicklesworthstone/pipegauge/internal/widget"
)

func newModel(t *testing.T, interval time.Duration) (*Model, *widget.Widget, *router.Router) {
	t.Helper()
	rt := router.New(nil, router.DefaultLeads()...)
	gen := sampler.New(interval, model.Seed(), sampler.NewSource(5), nil)
	w := widget.New(gen, toast.New("12345", "Acme Corp"), rt, nil,
		widget.WithHostInfo(func() model.Host { return model.Host{Hostname: "box", Uptime: time.Hour} }))
	t.Cleanup(w.Unmount)
	return New(context.Background(), w, rt), w, rt
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestInitialView(t *testing.T) {
	m, _, _ := newModel(t, time.Hour)
	out := m.View()

	assert.Contains(t, out, "Pipeline Pressure")
	assert.Contains(t, out, "12,482")
	assert.Contains(t, out, "140ms")
	assert.Contains(t, out, "1.2/hr")
	assert.Contains(t, out, "#12345")
	assert.Contains(t, out, "Acme Corp")
	assert.NotContains(t, out, "Qualified")
}

func TestInitMountsAndTickRefreshes(t *testing.T) {
	m, w, _ := newModel(t, 2*time.Millisecond)
	require.NotNil(t, m.Init())

	require.Eventually(t, func() bool { return w.Frame().State.Seq > 0 }, time.Second, 2*time.Millisecond)
	_, cmd := m.Update(tickMsg{})
	assert.NotNil(t, cmd)
	assert.NotZero(t, m.latest.State.Seq)
	assert.Contains(t, m.View(), "box")
}

func TestViewDetailsOpensLeadPage(t *testing.T) {
	m, _, rt := newModel(t, time.Hour)

	m.Update(runes("v"))
	assert.Equal(t, "12345", rt.Current().LeadID)
	assert.False(t, m.latest.Expanded)

	out := m.View()
	assert.Contains(t, out, "Lead Details")
	assert.Contains(t, out, "$125,000")

	// dashboard keys are ignored on the detail page
	m.Update(runes("x"))
	m.Update(runes("b"))
	assert.True(t, rt.Current().IsHome())
	assert.True(t, m.latest.Toast.Visible)
}

func TestDismissHidesToast(t *testing.T) {
	m, _, rt := newModel(t, time.Hour)

	m.Update(runes("x"))
	assert.False(t, m.latest.Toast.Visible)
	assert.NotContains(t, m.View(), "#12345")

	m.Update(runes("v"))
	assert.True(t, rt.Current().IsHome())
	assert.Nil(t, m.navErr)
}

func TestEnterExpandsTile(t *testing.T) {
	m, _, _ := newModel(t, time.Hour)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	out := m.View()
	assert.Contains(t, out, "Qualified")
	assert.Contains(t, out, "3,891")
	assert.Contains(t, out, "12.4%")
}

func TestReleaseKeyVentsPressure(t *testing.T) {
	m, w, _ := newModel(t, time.Hour)
	assert.Contains(t, m.View(), "release pressure")

	m.Update(runes("r"))
	assert.Equal(t, 58.0, m.latest.State.Pressure)
	assert.Equal(t, gauge.Project(58), m.latest.Gauge)
	assert.Equal(t, m.latest, w.Frame())
	assert.Contains(t, m.View(), "58%")
	assert.False(t, m.latest.Expanded)
}

func TestQuitUnmounts(t *testing.T) {
	m, w, _ := newModel(t, 2*time.Millisecond)
	m.Init()
	require.Eventually(t, func() bool { return w.Frame().State.Seq > 0 }, time.Second, 2*time.Millisecond)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	frozen := w.Frame().State
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, frozen, w.Frame().State)
}

func TestGaugeBarKeepsGap(t *testing.T) {
	bar := gaugeBar(gauge.Project(100), 40)
	assert.Equal(t, 42, len([]rune(bar)))
	assert.Contains(t, bar, "          ]")
}

func TestNeedleGlyph(t *testing.T) {
	assert.Equal(t, "→", needleGlyph(75))
	assert.Equal(t, "↑", needleGlyph(0))
	assert.Equal(t, "↖", needleGlyph(-42))
	assert.Equal(t, "→", needleGlyph(108))
	assert.Equal(t, "↘", needleGlyph(140))
}
