package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/helios-quant/helios-trading/internal/types"
)

// monitorStatus is one refresh of the data the monitor displays.
type monitorStatus struct {
	Portfolio  types.PortfolioSnapshot
	QueueDepth int
	QueueCap   int
	FullEvents int64
	Fatal      error
}

// statusFunc supplies the current engine status on each refresh tick.
type statusFunc func() monitorStatus

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			MarginBottom(1)
	statStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)
)

type tickMsg time.Time

// monitorModel is the terminal dashboard shown while the engine runs.
type monitorModel struct {
	status    statusFunc
	current   monitorStatus
	positions table.Model
	interval  time.Duration
	quitting  bool
}

func newMonitorModel(status statusFunc, interval time.Duration) monitorModel {
	columns := []table.Column{
		{Title: "Symbol", Width: 10},
		{Title: "Qty", Width: 12},
		{Title: "Avg Entry", Width: 12},
		{Title: "Last", Width: 12},
		{Title: "Unrealized", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(8),
	)

	return monitorModel{
		status:    status,
		current:   status(),
		positions: t,
		interval:  interval,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return m.tick()
}

func (m monitorModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true

			return m, tea.Quit
		}
	case tickMsg:
		m.current = m.status()
		m.positions.SetRows(positionRows(m.current.Portfolio))

		return m, m.tick()
	}

	var cmd tea.Cmd
	m.positions, cmd = m.positions.Update(msg)

	return m, cmd
}

func positionRows(snap types.PortfolioSnapshot) []table.Row {
	positions := make([]types.Position, 0, len(snap.Positions))
	for _, pos := range snap.Positions {
		positions = append(positions, pos)
	}
	// Map iteration order would make rows jump around between refreshes.
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Symbol < positions[j].Symbol
	})

	rows := make([]table.Row, 0, len(positions))
	for _, pos := range positions {
		rows = append(rows, table.Row{
			pos.Symbol,
			fmt.Sprintf("%.4f", pos.Quantity),
			fmt.Sprintf("%.2f", pos.AvgEntryPrice),
			fmt.Sprintf("%.2f", pos.LastPrice),
			fmt.Sprintf("%+.2f", pos.UnrealizedPnL()),
		})
	}

	return rows
}

func (m monitorModel) View() string {
	if m.quitting {
		return ""
	}

	s := m.current
	view := titleStyle.Render("helios paper trading engine") + "\n"

	if s.Fatal != nil {
		view += alertStyle.Render("HALTED: "+s.Fatal.Error()) + "\n"
	}

	view += statStyle.Render(fmt.Sprintf(
		"equity %.2f   cash %.2f   realized pnl %+.2f   daily loss %.2f",
		s.Portfolio.Equity, s.Portfolio.Cash, s.Portfolio.RealizedPnL, s.Portfolio.DailyLoss)) + "\n"
	view += statStyle.Render(fmt.Sprintf(
		"queue %d/%d (full events %d)   trades %d   drawdown %.2f%%",
		s.QueueDepth, s.QueueCap, s.FullEvents, s.Portfolio.TradeCount, s.Portfolio.Drawdown*100)) + "\n\n"
	view += m.positions.View() + "\n"
	view += helpStyle.Render("q to quit")

	return view
}
