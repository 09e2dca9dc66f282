// Package tui provides an interactive terminal UI for live scan progress.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ardakoroglu/synreach/internal/orchestrate"
	"github.com/ardakoroglu/synreach/internal/scan"
)

// State represents the current state of the TUI.
type State int

const (
	StateRunning State = iota
	StateComplete
	StateError
)

// Model is the Bubble Tea model for the scan progress TUI.
type Model struct {
	// Configuration
	setting *scan.Setting
	width   int
	height  int

	// State
	state     State
	probed    int
	result    *scan.Result
	elapsed   time.Duration
	startTime time.Time

	// UI components
	spinner spinner.Model

	// Styles
	styles Styles

	// Channel for progress updates
	progressChan chan scan.Progress
}

// ProgressMsg is sent when a new probe is emitted.
type ProgressMsg struct {
	Progress scan.Progress
}

// CompleteMsg is sent when the scan is complete.
type CompleteMsg struct {
	Result *scan.Result
}

// TickMsg is sent to update elapsed time.
type TickMsg time.Time

// New creates a new TUI model for the given scan setting.
func New(setting *scan.Setting) (*Model, error) {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := &Model{
		setting:      setting,
		state:        StateRunning,
		spinner:      s,
		styles:       DefaultStyles(),
		width:        80,
		height:       24,
		startTime:    time.Now(),
		progressChan: make(chan scan.Progress, 256),
	}

	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.runScan(),
		m.tickCmd(),
		m.waitForProgress(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		m.elapsed = time.Since(m.startTime)
		if m.state == StateRunning {
			return m, m.tickCmd()
		}

	case ProgressMsg:
		m.probed++
		return m, m.waitForProgress()

	case CompleteMsg:
		m.state = StateComplete
		m.result = msg.Result
		if msg.Result != nil && msg.Result.Status == scan.StatusError {
			m.state = StateError
		}

	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderHosts())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the header section.
func (m Model) renderHeader() string {
	title := m.styles.Title.Render("synreach")

	var status string
	switch m.state {
	case StateRunning:
		status = m.spinner.View() + " scanning..."
	case StateComplete:
		status = m.styles.Success.Render("✓ complete")
	case StateError:
		status = m.styles.Error.Render("✗ error")
	}

	info := fmt.Sprintf("targets: %d | type: %s | probed: %d",
		len(m.setting.Targets), m.setting.ScanType, m.probed)

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.styles.Subtle.Render(info),
		status,
	)
}

// renderHosts renders the per-host, per-port results collected so far.
func (m Model) renderHosts() string {
	if m.result == nil || len(m.result.Hosts) == 0 {
		return m.styles.Subtle.Render("waiting for responses...")
	}

	var rows []string

	header := fmt.Sprintf("%-17s %-25s %-6s %-10s", "Host", "Hostname", "TTL", "Status")
	rows = append(rows, m.styles.Header.Render(header))
	rows = append(rows, m.styles.Subtle.Render(strings.Repeat("─", 70)))

	for _, host := range m.result.Hosts {
		rows = append(rows, m.renderHostRows(host)...)
	}

	return strings.Join(rows, "\n")
}

// renderHostRows renders one row per probed port on host, or a single
// "alive" row for hosts carrying no per-port verdicts (ping modes).
func (m Model) renderHostRows(host scan.HostInfo) []string {
	ip := truncate(host.IPAddr.String(), 17)
	hostname := truncate(host.HostName, 25)
	ttl := "-"
	if host.TTL > 0 {
		ttl = fmt.Sprintf("%d", host.TTL)
	}

	if len(host.Ports) == 0 {
		row := fmt.Sprintf("%-17s %-25s %-6s %-10s",
			m.styles.IP.Render(ip), m.styles.Hostname.Render(hostname), ttl,
			m.styles.PortOpenStyle.Render("alive"))
		return []string{row}
	}

	rows := make([]string, 0, len(host.Ports))
	for _, port := range host.Ports {
		status := fmt.Sprintf("%d/%s", port.Port, port.Status)
		rows = append(rows, fmt.Sprintf("%-17s %-25s %-6s %-10s",
			m.styles.IP.Render(ip), m.styles.Hostname.Render(hostname), ttl,
			m.colorizeStatus(status, port.Status)))
	}
	return rows
}

// colorizeStatus applies color based on port verdict.
func (m Model) colorizeStatus(s string, status scan.PortStatus) string {
	switch status {
	case scan.PortOpen:
		return m.styles.PortOpenStyle.Render(s)
	case scan.PortFiltered:
		return m.styles.PortFilteredStyle.Render(s)
	default:
		return m.styles.PortClosedStyle.Render(s)
	}
}

// renderFooter renders the footer section.
func (m Model) renderFooter() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("elapsed: %s", m.elapsed.Round(10*time.Millisecond)))
	if m.state == StateComplete && m.result != nil {
		parts = append(parts, fmt.Sprintf("hosts: %d", len(m.result.Hosts)))
	}
	parts = append(parts, "press 'q' to quit")

	return m.styles.Subtle.Render(strings.Join(parts, " | "))
}

// runScan runs the orchestrator in the background.
func (m Model) runScan() tea.Cmd {
	return func() tea.Msg {
		result := orchestrate.Run(m.setting, m.progressChan)
		close(m.progressChan)
		return CompleteMsg{Result: result}
	}
}

// waitForProgress waits for a progress event from the channel.
func (m Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		progress, ok := <-m.progressChan
		if !ok {
			return nil
		}
		return ProgressMsg{Progress: progress}
	}
}

// tickCmd returns a command that sends tick messages.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Close releases resources.
func (m *Model) Close() error {
	return nil
}

// truncate truncates a string to maxLen.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
