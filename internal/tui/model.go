// Operator dashboard TUI rendering the state store.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"urbanpulse/internal/alerts"
	"urbanpulse/internal/control"
	"urbanpulse/internal/dashboard"
	"urbanpulse/internal/telemetry"
)

// RefreshMsg asks the model to re-read the store. The pipeline sends it
// after every state change.
type RefreshMsg struct{}

type tickMsg time.Time

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	connectedSt   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	disconnSt     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	weatherStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	feedbackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Italic(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Model renders the dashboard store and translates operator keys into
// district selection and control dispatches.
type Model struct {
	store      *dashboard.Store
	dispatcher *control.Dispatcher
	table      table.Model
	width      int
	height     int
}

// NewModel builds the dashboard model.
func NewModel(store *dashboard.Store, dispatcher *control.Dispatcher) Model {
	cols := []table.Column{
		{Title: "District", Width: 20},
		{Title: "Traffic", Width: 8},
		{Title: "+1h", Width: 8},
		{Title: "AQI", Width: 6},
		{Title: "Resp", Width: 9},
		{Title: "Inc", Width: 4},
		{Title: "Energy", Width: 9},
	}
	t := table.New(table.WithColumns(cols), table.WithFocused(true), table.WithHeight(6))
	return Model{store: store, dispatcher: dispatcher, table: t}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case RefreshMsg:
		m.syncTable()
		return m, nil

	case tickMsg:
		// Keeps the clock and feedback expiry visible between frames.
		return m, tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "o":
			return m, m.dispatch(control.OptimizeTraffic)
		case "r":
			return m, m.dispatch(control.ResolveIncident)
		case "e":
			return m, m.dispatch(control.EmergencyRoute)
		default:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			m.selectFromTable()
			return m, cmd
		}
	}
	return m, nil
}

// dispatch fires the control action for the selected district off the UI
// loop. The dispatcher handles feedback and failures itself.
func (m Model) dispatch(action control.Action) tea.Cmd {
	district := m.store.Selected()
	d := m.dispatcher
	return func() tea.Msg {
		d.Dispatch(context.Background(), district, action)
		return RefreshMsg{}
	}
}

// syncTable rebuilds table rows from the latest snapshot, keeping the
// cursor on the same district where possible.
func (m *Model) syncTable() {
	snap := m.store.Latest()
	if snap == nil {
		return
	}
	rows := make([]table.Row, 0, len(snap.Districts))
	for _, d := range snap.Districts {
		rows = append(rows, table.Row{
			d.Name,
			fmt.Sprintf("%.1f%%", d.TrafficDensity),
			fmt.Sprintf("%.1f%%", d.ForecastedTraffic),
			fmt.Sprintf("%.0f", d.AirQualityIndex),
			fmt.Sprintf("%.1f min", d.EmergencyResponseTime),
			fmt.Sprintf("%d", d.ActiveIncidents),
			fmt.Sprintf("%.0f kWh", d.EnergyDemand),
		})
	}
	m.table.SetRows(rows)
	m.selectFromTable()
}

func (m *Model) selectFromTable() {
	if row := m.table.SelectedRow(); row != nil {
		m.store.Select(row[0])
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	snap := m.store.Latest()
	if snap == nil {
		b.WriteString("Waiting for city data...\n")
		b.WriteString("\n" + m.renderHelp())
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%s %s\n\n",
		sectionStyle.Render("City Health:"), healthStyle(snap.CityHealthScore).Render(fmt.Sprintf("%.1f", snap.CityHealthScore))))

	b.WriteString(m.table.View())
	b.WriteString("\n\n")

	b.WriteString(m.renderTrend(snap))
	b.WriteString(m.renderAlerts())
	b.WriteString(m.renderFeedback())
	b.WriteString("\n" + m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("UrbanPulse Dashboard")

	clock := "--:--"
	weather := m.store.Weather()
	if snap := m.store.Latest(); snap != nil {
		clock = formatSimHour(snap.SimulatedHour)
		if snap.IsNight() {
			clock += " ☾"
		}
	}

	status := disconnSt.Render(string(dashboard.StatusDisconnected))
	if m.store.Status() == dashboard.StatusConnected {
		status = connectedSt.Render(string(dashboard.StatusConnected))
	}

	return fmt.Sprintf("%s  %s %s  %s", title, clock, weatherStyle.Render(weather), status)
}

// renderTrend draws the selected district's recent traffic as a sparkline.
func (m Model) renderTrend(snap *telemetry.Snapshot) string {
	selected := m.store.Selected()
	if selected == "" {
		return ""
	}
	points := m.store.History()[selected]
	if len(points) == 0 {
		return ""
	}
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.TrafficDensity
	}
	return fmt.Sprintf("%s %s\n\n",
		sectionStyle.Render("Traffic trend "+selected+":"), sparkline(values))
}

func (m Model) renderAlerts() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Active Alerts") + "\n")
	list := m.store.Alerts()
	if len(list) == 0 {
		b.WriteString(okStyle.Render("All Systems Normal") + "\n")
		return b.String()
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	for _, a := range list {
		style := warningStyle
		if a.Kind == alerts.KindCritical {
			style = criticalStyle
		}
		b.WriteString(style.Render("▪ "+wordwrap.String(a.Message, width-2)) + "\n")
	}
	return b.String()
}

func (m Model) renderFeedback() string {
	if fb := m.store.Feedback(); fb != "" {
		return feedbackStyle.Render(fb) + "\n"
	}
	return ""
}

func (m Model) renderHelp() string {
	return helpStyle.Render("↑/↓ select district · o optimize traffic · r resolve incident · e emergency route · q quit")
}

func healthStyle(score float64) lipgloss.Style {
	switch {
	case score > 80:
		return okStyle
	case score > 50:
		return warningStyle
	default:
		return criticalStyle
	}
}

// formatSimHour renders a fractional hour as HH:MM.
func formatSimHour(hour float64) string {
	h := int(hour)
	mins := int((hour - float64(h)) * 60)
	return fmt.Sprintf("%02d:%02d", h, mins)
}

// sparkline maps values onto block runes, scaled to the observed range.
func sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	var b strings.Builder
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int((v - min) / span * float64(len(sparkRunes)-1))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}
