// Package tui renders the twilight HUD in a terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yanqian/twilight-hud/internal/domain/media"
	"github.com/yanqian/twilight-hud/internal/domain/twilight"
)

const (
	defaultRefresh = time.Second
	minBarWidth    = 10
	maxBarWidth    = 60
)

// SnapshotSource exposes the latest twilight state.
type SnapshotSource interface {
	Snapshot() twilight.Snapshot
}

// PlayerStatus exposes the media player state.
type PlayerStatus interface {
	Status() media.Status
}

// Model is the Bubble Tea model of the HUD.
type Model struct {
	twilight SnapshotSource
	player   PlayerStatus
	refresh  time.Duration

	snap   twilight.Snapshot
	status media.Status
	bar    progress.Model
	width  int
}

// New builds the HUD model. player may be nil.
func New(source SnapshotSource, player PlayerStatus) Model {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 40
	m := Model{
		twilight: source,
		player:   player,
		refresh:  defaultRefresh,
		bar:      bar,
	}
	m.pull()
	return m
}

type tickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) pull() {
	m.snap = m.twilight.Snapshot()
	if m.player != nil {
		m.status = m.player.Status()
	}
}

// Init schedules the first refresh.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.refresh)
}

// Update handles ticks, resizes and quit keys.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.pull()
		return m, tickCmd(m.refresh)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = clampBar(msg.Width - 16)
	}
	return m, nil
}

func clampBar(w int) int {
	if w < minBarWidth {
		return minBarWidth
	}
	if w > maxBarWidth {
		return maxBarWidth
	}
	return w
}

// View renders the HUD.
func (m Model) View() string {
	var b strings.Builder
	s := m.snap

	b.WriteString(clockStyle.Render(s.Clock))
	if s.Date != "" {
		b.WriteString("  " + hintStyle.Render(s.Date))
	}
	b.WriteString("\n")
	b.WriteString(row("day", m.bar.ViewAs(float64(s.DayProgress)/100)+fmt.Sprintf(" %3d%%", s.DayProgress)))

	if s.Window == nil {
		msg := "waiting for twilight data"
		if s.Error != "" {
			msg = s.Error
		}
		b.WriteString(row("twilight", staleStyle.Render(msg)))
	} else {
		b.WriteString(row("civil", s.Civil))
		b.WriteString(row("nautical", s.Nautical))
		if s.NauticalReached {
			b.WriteString(row("countdown", reachedStyle.Render(s.Countdown)))
		} else {
			b.WriteString(row("countdown", countdownStyle.Render(s.Countdown)))
		}
		if s.Stale {
			b.WriteString(row("", staleStyle.Render(fmt.Sprintf("cached data, %d failed fetches, retry in %s", s.Failures, s.NextFetchIn))))
		}
	}

	if s.LastAlert != nil {
		b.WriteString(row("alert", alertStyle.Render(fmt.Sprintf("%d min before nautical dusk", s.LastAlert.Minutes))))
	}

	b.WriteString(row("player", playerLine(m.status)))

	body := frameStyle.Render(strings.TrimRight(b.String(), "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, body, hintStyle.Render(" q quit"))
}

func row(label, value string) string {
	return labelStyle.Render(label) + value + "\n"
}

func playerLine(st media.Status) string {
	if st.State == "" {
		return string(media.StateStopped)
	}
	if st.Video == nil {
		return string(st.State)
	}
	return fmt.Sprintf("%s  %s", st.State, st.Video.Title)
}

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, source SnapshotSource, player PlayerStatus) error {
	p := tea.NewProgram(New(source, player), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
