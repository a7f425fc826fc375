package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ulasonat/EnglishLearningApp/internal/player"
	"github.com/ulasonat/EnglishLearningApp/internal/session"
	"github.com/ulasonat/EnglishLearningApp/internal/subtitle"
)

type engineEventMsg struct {
	ev player.Event
}

type engineClosedMsg struct{}

const readyToFinishNotice = "last entry reviewed; press f to export and finish"

// Model drives the interactive review loop. It owns the keyboard, the
// session controller does everything else.
type Model struct {
	session *session.Controller
	events  <-chan player.Event
	spinner spinner.Model

	width    int
	height   int
	position time.Duration
	notice   string

	finished   bool
	aborted    bool
	exportPath string
	exportErr  error
}

func New(ctrl *session.Controller, events <-chan player.Event) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		session: ctrl,
		events:  events,
		spinner: s,
	}
}

// listenEngine waits for the next engine event. Update re-arms it after
// every delivery so the channel keeps draining.
func listenEngine(events <-chan player.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return engineClosedMsg{}
		}
		return engineEventMsg{ev: ev}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, listenEngine(m.events))
}

// Aborted reports whether the user quit without exporting.
func (m Model) Aborted() bool {
	return m.aborted
}

// ExportPath returns the file written by finish, empty if none.
func (m Model) ExportPath() string {
	return m.exportPath
}

// ExportErr returns the export failure, if finishing failed.
func (m Model) ExportErr() error {
	return m.exportErr
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case engineEventMsg:
		m.session.HandleEvent(msg.ev)
		if msg.ev.Kind == player.EventPosition {
			m.position = msg.ev.Position
		}
		return m, listenEngine(m.events)

	case engineClosedMsg:
		m.notice = "player connection closed"
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.session.Abort()
		m.aborted = true
		return m, tea.Quit

	case "y", "k":
		m.notice = ""
		m.position = 0
		if !m.session.Mark(true) {
			m.notice = readyToFinishNotice
		}

	case "n":
		m.notice = ""
		m.position = 0
		if !m.session.Mark(false) {
			m.notice = readyToFinishNotice
		}

	case "right", "l", " ":
		m.notice = ""
		m.position = 0
		if !m.session.Next() {
			m.notice = readyToFinishNotice
		}

	case "left", "h":
		m.notice = ""
		m.position = 0
		if !m.session.Previous() {
			m.notice = "already at the first entry"
		}

	case "r":
		m.notice = ""
		m.session.Replay()

	case "f":
		m.exportPath, m.exportErr = m.session.Finish()
		m.finished = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) View() string {
	if m.aborted {
		return "review aborted; nothing exported\n"
	}
	if m.finished {
		if m.exportErr != nil {
			return lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")). // Red
				Render(fmt.Sprintf("export failed: %v", m.exportErr)) + "\n"
		}
		return lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("40")). // Green
			Render("exported unknown words to "+m.exportPath) + "\n"
	}

	entry, idx, total := m.session.Current()

	var content strings.Builder

	content.WriteString(fmt.Sprintf("Word %d of %d\n\n", idx+1, total))

	content.WriteString(lipgloss.NewStyle().
		Bold(true).
		Background(lipgloss.Color("27")). // Deep blue
		Foreground(lipgloss.Color("15")). // Bright white
		Padding(0, 2).
		Render(entry.Word) + "\n\n")

	content.WriteString(lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")). // Light gray
		PaddingLeft(2).
		Render(entry.Definition) + "\n")

	if entry.Translation != "" {
		content.WriteString(lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("250")).
			PaddingLeft(2).
			Render(entry.Translation) + "\n")
	}

	if len(entry.Examples) > 0 {
		content.WriteString("\n")
		exampleStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")). // Medium gray
			PaddingLeft(4)
		for _, example := range entry.Examples {
			content.WriteString(exampleStyle.Render("- "+example) + "\n")
		}
	}
	content.WriteString("\n")

	content.WriteString(m.playbackLine() + "\n")

	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // Red
	if err := m.session.ResolveErr(); err != nil {
		content.WriteString(errStyle.Render("no playable segment: "+err.Error()) + "\n")
	}
	if err := m.session.PlaybackErr(); err != nil {
		content.WriteString(errStyle.Render(err.Error()) + "\n")
	}
	if m.notice != "" {
		content.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")). // Bright yellow
			Render(m.notice) + "\n")
	}

	content.WriteString("\n")
	content.WriteString(lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Render("y known / n unknown / h,l move / r replay / f finish / q quit") + "\n")

	status := fmt.Sprintf("reviewed %d/%d, known %d",
		m.session.Reviewed(), total, m.session.KnownCount())
	content.WriteString(lipgloss.NewStyle().
		Padding(0, 1).
		Bold(true).
		Foreground(lipgloss.Color("15")). // Bright white
		Background(lipgloss.Color("234")). // Very dark gray
		Width(m.width).
		Render(status))

	return content.String()
}

func (m Model) playbackLine() string {
	seg := m.session.Segment()
	window := ""
	if !seg.IsZero() {
		window = fmt.Sprintf("%s --> %s",
			subtitle.FormatTimestamp(seg.Start),
			subtitle.FormatTimestamp(seg.End))
	}

	switch m.session.State() {
	case player.StateSeeking:
		return m.spinner.View() + " seeking " + window
	case player.StatePlaying:
		return fmt.Sprintf("playing %s (%s)",
			subtitle.FormatTimestamp(m.position), window)
	case player.StateStopped:
		if window == "" {
			return "stopped"
		}
		return "stopped " + window
	default:
		return "idle"
	}
}
