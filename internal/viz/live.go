// Package viz renders a live terminal view of a running simulation. It is a
// pure consumer: on every refresh tick it snapshots the store's committed
// index once, reads the sample ranges bounded by that snapshot, and redraws.
package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/racesim/internal/refresh"
	"github.com/san-kum/racesim/internal/telemetry"
	"github.com/san-kum/racesim/internal/worker"
)

const (
	graphHeight = 8
	graphWidth  = 76
)

// TickMsg signals that the refresh ticker fired.
type TickMsg struct{}

// StatusMsg carries a worker status update.
type StatusMsg string

type plotDef struct {
	series telemetry.Series
	title  string
	key    string
}

var plots = []plotDef{
	{telemetry.SeriesVelocity, "velocity (m/s)", "1"},
	{telemetry.SeriesDistance, "distance (m)", "2"},
	{telemetry.SeriesAcceleration, "acceleration (m/s^2)", "3"},
	{telemetry.SeriesMotorPower, "motor power (W)", "4"},
	{telemetry.SeriesBatteryPower, "battery power (W)", "5"},
	{telemetry.SeriesTrackMaxVelocity, "track max velocity (m/s)", "6"},
}

// Model is the bubbletea model for the live view.
type Model struct {
	store  *telemetry.Store
	worker *worker.Worker
	ticker *refresh.Ticker

	trackName string
	status    string
	lastIndex int
	latest    telemetry.Record
	enabled   map[telemetry.Series]bool
	data      map[telemetry.Series][]float64
}

// NewModel wires the live view to its collaborators. The store is shared by
// reference: the worker writes it, this model only reads it.
func NewModel(ts *telemetry.Store, w *worker.Worker, t *refresh.Ticker, trackName string) Model {
	enabled := map[telemetry.Series]bool{
		telemetry.SeriesVelocity: true,
	}
	return Model{
		store:     ts,
		worker:    w,
		ticker:    t,
		trackName: trackName,
		status:    "initialized",
		lastIndex: -1,
		enabled:   enabled,
		data:      make(map[telemetry.Series][]float64),
	}
}

func waitForTick(c <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-c
		return TickMsg{}
	}
}

func waitForStatus(c <-chan string) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg(<-c)
	}
}

func (m Model) Init() tea.Cmd {
	m.worker.Start()
	return tea.Batch(waitForTick(m.ticker.C()), waitForStatus(m.worker.Status()))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.worker.Stop()
			m.ticker.Stop()
			return m, tea.Quit
		case " ":
			if m.worker.State() == worker.Paused {
				m.worker.Start()
			} else {
				m.worker.Pause()
			}
			return m, nil
		case "s":
			m.worker.Stop()
			return m, nil
		default:
			for _, p := range plots {
				if msg.String() == p.key {
					m.enabled[p.series] = !m.enabled[p.series]
				}
			}
			return m, nil
		}

	case StatusMsg:
		m.status = string(msg)
		return m, waitForStatus(m.worker.Status())

	case TickMsg:
		// One index snapshot bounds every read this cycle.
		idx := m.store.CurrentIndex()
		m.lastIndex = idx
		if idx >= 0 {
			if rec, err := m.store.ReadRecord(idx); err == nil {
				m.latest = rec
			}
			for _, p := range plots {
				if !m.enabled[p.series] {
					continue
				}
				vals, err := m.store.ReadRange(0, idx, p.series)
				if err != nil {
					continue // index raced below start; skip this refresh
				}
				m.data[p.series] = vals
			}
		}
		return m, waitForTick(m.ticker.C())
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("racesim — %s", m.trackName)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("status") + statusStyle.Render(m.status) + "\n")
	b.WriteString(labelStyle.Render("sample index") + valueStyle.Render(fmt.Sprintf("%d", m.lastIndex)) + "\n")

	if m.lastIndex >= 0 {
		b.WriteString(labelStyle.Render("time") + valueStyle.Render(fmt.Sprintf("%.2f s", m.latest.Time)) + "\n")
		b.WriteString(labelStyle.Render("distance") + valueStyle.Render(fmt.Sprintf("%.1f m", m.latest.Distance)) + "\n")
		b.WriteString(labelStyle.Render("velocity") + valueStyle.Render(fmt.Sprintf("%.2f m/s", m.latest.Velocity)) + "\n")
		b.WriteString(labelStyle.Render("motor power") + valueStyle.Render(fmt.Sprintf("%.0f W", m.latest.MotorPower)) + "\n")
		b.WriteString(labelStyle.Render("battery power") + valueStyle.Render(fmt.Sprintf("%.0f W", m.latest.BatteryPower)) + "\n")
	}

	for _, p := range plots {
		if !m.enabled[p.series] {
			continue
		}
		vals := m.data[p.series]
		if len(vals) < 2 {
			continue
		}
		graph := asciigraph.Plot(vals,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption(p.title),
		)
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	keys := make([]string, 0, len(plots))
	for _, p := range plots {
		keys = append(keys, fmt.Sprintf("%s:%s", p.key, p.series))
	}
	b.WriteString(helpStyle.Render("space pause/resume · s stop · q quit · toggle " + strings.Join(keys, " ")))
	b.WriteString("\n")

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
