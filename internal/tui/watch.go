// Package tui renders installation progress in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/initializ/edgard/client"
	"github.com/initializ/edgard/installer"
)

const (
	defaultPollInterval = time.Second
	defaultVisibleLogs  = 12
	requestTimeout      = 5 * time.Second
)

// Panel is the subset of the API client the watch screen uses.
type Panel interface {
	Status(ctx context.Context) (installer.Status, error)
	Start(ctx context.Context, req client.StartRequest) error
	Pause(ctx context.Context) (bool, error)
}

// WatchModel is the bubbletea model behind `edgard watch`.
type WatchModel struct {
	styles   *StyleSet
	panel    Panel
	version  string
	interval time.Duration
	spinner  spinner.Model

	status  installer.Status
	fetched bool
	err     error
	notice  string
	width   int
	height  int
}

// NewWatchModel creates a watch screen polling panel every interval.
func NewWatchModel(theme TermTheme, panel Panel, version string, interval time.Duration) WatchModel {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	styles := NewStyleSet(theme)
	sp.Style = styles.InfoTxt
	return WatchModel{
		styles:   styles,
		panel:    panel,
		version:  version,
		interval: interval,
		spinner:  sp,
		width:    80,
		height:   24,
	}
}

// Init starts the spinner and the first poll.
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd())
}

// Update handles messages.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "s":
			if m.status.Running {
				return m, nil
			}
			return m, m.startCmd()
		case "p":
			return m, m.pauseCmd()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statusMsg:
		m.status = msg.status
		m.fetched = true
		m.err = nil
		return m, m.schedulePoll()

	case fetchErrMsg:
		m.err = msg.err
		return m, m.schedulePoll()

	case pollMsg:
		return m, m.fetchCmd()

	case actionMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
		} else {
			m.notice = msg.notice
		}
		return m, m.fetchCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the screen.
func (m WatchModel) View() string {
	var b strings.Builder
	b.WriteString(RenderBanner(m.styles, m.version, m.width))

	state := RenderState(m.styles, m.status)
	if m.status.Running && !m.status.Paused {
		state = m.spinner.View() + " " + state
	}
	fmt.Fprintf(&b, "  %s\n\n", state)

	if !m.fetched && m.err == nil {
		b.WriteString(m.styles.DimTxt.Render("  connecting...") + "\n")
	}
	if m.err != nil {
		b.WriteString("  " + m.styles.ErrorTxt.Render(m.err.Error()) + "\n\n")
	}

	if len(m.status.Steps) > 0 {
		steps := strings.TrimRight(RenderSteps(m.styles, m.status.Steps), "\n")
		b.WriteString(m.styles.BorderedBox.Render(steps) + "\n\n")
	}

	for _, e := range lastLogs(m.status.Logs, m.visibleLogs()) {
		b.WriteString("  " + RenderLogLine(m.styles, e) + "\n")
	}

	if m.notice != "" {
		b.WriteString("\n  " + m.styles.SecondaryTxt.Render(m.notice) + "\n")
	}

	hints := NewKbdHint(m.styles.KbdKey, m.styles.KbdDesc)
	hints.Bindings = WatchHints(m.status.Running)
	b.WriteString("\n" + hints.View() + "\n")
	return b.String()
}

// visibleLogs fits the log tail below the banner and step list.
func (m WatchModel) visibleLogs() int {
	n := m.height - len(m.status.Steps) - 16
	if n < 3 {
		return defaultVisibleLogs
	}
	return n
}

func lastLogs(logs []installer.LogEntry, n int) []installer.LogEntry {
	if len(logs) <= n {
		return logs
	}
	return logs[len(logs)-n:]
}

func (m WatchModel) fetchCmd() tea.Cmd {
	panel := m.panel
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		st, err := panel.Status(ctx)
		if err != nil {
			return fetchErrMsg{err: err}
		}
		return statusMsg{status: st}
	}
}

func (m WatchModel) schedulePoll() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return pollMsg{} })
}

func (m WatchModel) startCmd() tea.Cmd {
	panel := m.panel
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := panel.Start(ctx, client.StartRequest{}); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{notice: "installation started"}
	}
}

func (m WatchModel) pauseCmd() tea.Cmd {
	panel := m.panel
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		paused, err := panel.Pause(ctx)
		if err != nil {
			return actionMsg{err: err}
		}
		if paused {
			return actionMsg{notice: "installation paused"}
		}
		return actionMsg{notice: "installation resumed"}
	}
}
