package ui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Dicklesworthstone/pipegauge/internal/gauge"
	"github.com/Dicklesworthstone/pipegauge/internal/model"
	"github.com/Dicklesworthstone/pipegauge/internal/router"
	"github.com/Dicklesworthstone/pipegauge/internal/toast"
	"github.com/Dicklesworthstone/pipegauge/internal/widget"
)

// Tile is the slice of widget.Widget the terminal shell drives.
type Tile interface {
	Mount(ctx context.Context)
	Unmount()
	Frame() model.Frame
	Click(target widget.Target) error
	ReleasePressure() model.Frame
}

// Routes is the router as seen by the shell.
type Routes interface {
	Current() router.Route
	Back() router.Route
	Resolve(id string) (model.Lead, error)
}

// Model renders the tile, or a lead detail page when the router points at one.
type Model struct {
	tile   Tile
	routes Routes
	ctx    context.Context
	latest model.Frame
	navErr error
	keys   keyMap
	help   help.Model
	width  int
	height int
}

func New(ctx context.Context, tile Tile, routes Routes) *Model {
	return &Model{
		tile:   tile,
		routes: routes,
		ctx:    ctx,
		latest: tile.Frame(),
		keys:   defaultKeys(),
		help:   help.New(),
		width:  120,
		height: 40,
	}
}

type keyMap struct {
	Details key.Binding
	Dismiss key.Binding
	Tile    key.Binding
	Release key.Binding
	Back    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Details: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view details")),
		Dismiss: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
		Tile:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand")),
		Release: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "release pressure")),
		Back:    key.NewBinding(key.WithKeys("b", "esc"), key.WithHelp("b", "back")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Messages
type tickMsg struct{}

func tickCmd() tea.Cmd { return tea.Tick(time.Second/5, func(time.Time) tea.Msg { return tickMsg{} }) }

func (m *Model) Init() tea.Cmd {
	m.tile.Mount(m.ctx)
	return tickCmd()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		m.latest = m.tile.Frame()
		return m, tickCmd()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.tile.Unmount()
		return m, tea.Quit
	}
	if !m.routes.Current().IsHome() {
		if key.Matches(msg, m.keys.Back) {
			m.routes.Back()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Details):
		m.navErr = m.tile.Click(widget.TargetToastDetails)
		if errors.Is(m.navErr, toast.ErrNotVisible) {
			m.navErr = nil
		}
	case key.Matches(msg, m.keys.Dismiss):
		_ = m.tile.Click(widget.TargetToastDismiss)
	case key.Matches(msg, m.keys.Tile):
		_ = m.tile.Click(widget.TargetTile)
	case key.Matches(msg, m.keys.Release):
		m.latest = m.tile.ReleasePressure()
		return m, nil
	default:
		return m, nil
	}
	m.latest = m.tile.Frame()
	return m, nil
}

// Styles
var (
	accent      = lipgloss.Color("#3abff8")
	good        = lipgloss.Color("#34d399")
	warn        = lipgloss.Color("#fbbf24")
	hot         = lipgloss.Color("#f87171")
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	valueStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	idStyle     = lipgloss.NewStyle().Foreground(good)
	errStyle    = lipgloss.NewStyle().Foreground(hot)
	gaugeFill   = "█"
	gaugeEmpty  = "░"
	gaugeGap    = " "
	gaugeCells  = 40
	tileStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(1, 2)
	toastStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(good).
			Padding(0, 1)
)

func (m *Model) View() string {
	var body string
	if r := m.routes.Current(); !r.IsHome() {
		body = m.leadView(r.LeadID)
	} else {
		body = m.dashboardView()
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.help.ShortHelpView(m.helpKeys()))
}

func (m *Model) helpKeys() []key.Binding {
	if !m.routes.Current().IsHome() {
		return []key.Binding{m.keys.Back, m.keys.Quit}
	}
	if m.latest.Toast.Visible {
		return []key.Binding{m.keys.Details, m.keys.Dismiss, m.keys.Tile, m.keys.Release, m.keys.Quit}
	}
	return []key.Binding{m.keys.Tile, m.keys.Release, m.keys.Quit}
}

func (m *Model) dashboardView() string {
	f := m.latest
	st := f.State
	header := titleStyle.Render("Pipeline Pressure") + "  " +
		subtleStyle.Render(st.Timestamp.Format("15:04:05"))

	pressure := lipgloss.NewStyle().Bold(true).Foreground(pressureColor(st.Pressure)).
		Render(fmt.Sprintf("%3.0f%%", st.Pressure))
	gaugeLine := gaugeBar(f.Gauge, gaugeCells) + "  " + pressure
	needle := subtleStyle.Render(fmt.Sprintf("needle %s %6.1f°", needleGlyph(f.Gauge.NeedleAngle), f.Gauge.NeedleAngle))

	metrics := []string{
		row("Leads", humanize.Comma(int64(st.Metrics.Leads))),
		row("Throughput", fmt.Sprintf("%.1f/hr", st.Metrics.ThroughputPerHour)),
		row("Latency", fmt.Sprintf("%dms", st.Metrics.LatencyMs)),
	}
	if f.Expanded {
		metrics = append(metrics,
			row("Warm leads", humanize.Comma(int64(st.Metrics.WarmLeads))),
			row("Qualified", humanize.Comma(int64(st.Metrics.QualifiedLeads))),
			row("Conversion", fmt.Sprintf("%.1f%%", st.Metrics.ConversionRate)),
		)
	}

	parts := []string{header, "", gaugeLine, needle, "", strings.Join(metrics, "\n")}
	if f.Toast.Visible {
		parts = append(parts, "", toastStyle.Render(
			"New lead "+idStyle.Render("#"+f.Toast.LeadID)+" from "+valueStyle.Render(f.Toast.Company)))
	}
	if m.navErr != nil {
		parts = append(parts, errStyle.Render(m.navErr.Error()))
	}
	if foot := hostLine(f.Host); foot != "" {
		parts = append(parts, "", subtleStyle.Render(foot))
	}
	return tileStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m *Model) leadView(id string) string {
	back := titleStyle.Render("← Back to Dashboard")
	lead, err := m.routes.Resolve(id)
	if err != nil {
		return tileStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			back, "", errStyle.Render(err.Error())))
	}
	return tileStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		back,
		"",
		valueStyle.Render("Lead Details"),
		labelStyle.Render("Viewing details for Lead ID: ")+idStyle.Render(lead.ID),
		"",
		row("Company Name", lead.Company),
		row("Status", idStyle.Render(lead.Status)),
		row("Potential Value", "$"+humanize.Comma(lead.PotentialValue)),
	))
}

// Helpers
func gaugeBar(g model.Gauge, width int) string {
	filled, empty := gauge.Cells(g, width)
	gap := width - filled - empty
	return "[" + strings.Repeat(gaugeFill, filled) +
		strings.Repeat(gaugeEmpty, empty) +
		strings.Repeat(gaugeGap, gap) + "]"
}

// needleGlyph picks the arrow closest to angle, measured clockwise from up.
func needleGlyph(angle float64) string {
	glyphs := []string{"↑", "↗", "→", "↘", "↓", "↙", "←", "↖"}
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	return glyphs[int((a+22.5)/45)%len(glyphs)]
}

func pressureColor(p float64) lipgloss.Color {
	switch {
	case p >= 90:
		return hot
	case p >= 70:
		return warn
	default:
		return good
	}
}

func row(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-16s", label)) + " " + valueStyle.Render(value)
}

func hostLine(h model.Host) string {
	if h.Hostname == "" {
		return ""
	}
	s := fmt.Sprintf("%s  load %.2f", h.Hostname, h.Load1)
	if h.Uptime > 0 {
		s += "  up " + strings.TrimSuffix(humanize.RelTime(time.Now().Add(-h.Uptime), time.Now(), "", ""), " ")
	}
	return s
}

// RunTUI starts the Bubble Tea program and unmounts the tile on exit.
func RunTUI(ctx context.Context, tile Tile, routes Routes) error {
	defer tile.Unmount()
	prog := tea.NewProgram(New(ctx, tile, routes), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := prog.Run()
	return err
}
