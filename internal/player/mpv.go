package player

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/dexterlb/mpvipc"
)

const (
	propertyTimePos    = 1
	propertyEOFReached = 2

	connectTimeout = 5 * time.Second
	quitTimeout    = 3 * time.Second
)

// MPV plays video in a real mpv window, driven over its JSON IPC socket.
// The window stays open across segments; seeks retarget it.
type MPV struct {
	binary string
	socket string

	cmd    *exec.Cmd
	conn   *mpvipc.Connection
	events chan Event
	done   chan struct{}
	once   sync.Once
}

// NewMPV prepares an engine around the given mpv binary. An empty path
// resolves via $VOCAB_MPV_PATH, then $PATH.
func NewMPV(binary string) (*MPV, error) {
	if binary == "" {
		resolved, err := findMPV()
		if err != nil {
			return nil, err
		}
		binary = resolved
	}

	return &MPV{
		binary: binary,
		socket: defaultSocketPath(),
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}, nil
}

func findMPV() (string, error) {
	if path := os.Getenv("VOCAB_MPV_PATH"); path != "" {
		return path, nil
	}
	if found, err := exec.LookPath("mpv"); err == nil {
		return found, nil
	}
	return "", fmt.Errorf(
		"mpv not found: install mpv or set VOCAB_MPV_PATH",
	)
}

func defaultSocketPath() string {
	if runtime.GOOS == "windows" {
		return fmt.Sprintf(`\\.\pipe\vocab-mpv-%d`, os.Getpid())
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("vocab-mpv-%d.sock", os.Getpid()))
}

// Load spawns mpv paused on the video and connects to its IPC socket.
// Cancelling ctx kills the player process.
func (m *MPV) Load(ctx context.Context, videoPath string) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}

	m.cmd = exec.CommandContext(ctx, m.binary,
		"--input-ipc-server="+m.socket,
		"--pause",
		"--keep-open=yes",
		"--hr-seek=yes",
		"--force-window=yes",
		"--really-quiet",
		videoPath,
	)
	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start mpv: %w", err)
	}

	conn := mpvipc.NewConnection(m.socket)
	if err := m.connect(ctx, conn); err != nil {
		_ = m.cmd.Process.Kill()
		return err
	}
	m.conn = conn

	if _, err := conn.Call("observe_property", propertyTimePos, "time-pos"); err != nil {
		_ = conn.Close()
		_ = m.cmd.Process.Kill()
		return fmt.Errorf("failed to observe playback position: %w", err)
	}
	if _, err := conn.Call("observe_property", propertyEOFReached, "eof-reached"); err != nil {
		_ = conn.Close()
		_ = m.cmd.Process.Kill()
		return fmt.Errorf("failed to observe end of file: %w", err)
	}

	raw, _ := conn.NewEventListener()
	go m.pump(raw)

	return nil
}

// the IPC socket appears shortly after the process starts; poll until then
func (m *MPV) connect(ctx context.Context, conn *mpvipc.Connection) error {
	deadline := time.Now().Add(connectTimeout)
	for {
		err := conn.Open()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("failed to connect to mpv socket: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// translates raw mpv events into engine events
func (m *MPV) pump(raw chan *mpvipc.Event) {
	defer close(m.events)

	for {
		select {
		case <-m.done:
			return
		case ev, ok := <-raw:
			if !ok {
				m.deliver(Event{
					Kind: EventError,
					Err:  fmt.Errorf("mpv connection closed"),
				})
				return
			}
			m.translate(ev)
		}
	}
}

func (m *MPV) translate(ev *mpvipc.Event) {
	switch {
	case ev.Name == "property-change" && ev.ID == propertyTimePos:
		if seconds, ok := ev.Data.(float64); ok {
			// position ticks may drop when the reader stalls; the boundary
			// check just waits for the next tick
			select {
			case m.events <- Event{
				Kind:     EventPosition,
				Position: time.Duration(seconds * float64(time.Second)),
			}:
			default:
			}
		}

	case ev.Name == "property-change" && ev.ID == propertyEOFReached:
		if reached, ok := ev.Data.(bool); ok && reached {
			m.deliver(Event{Kind: EventEnded})
		}

	case ev.Name == "playback-restart":
		m.deliver(Event{Kind: EventSeeked})

	case ev.Name == "end-file":
		m.deliver(Event{Kind: EventEnded})
	}
}

// blocking send for events that must not be dropped
func (m *MPV) deliver(ev Event) {
	select {
	case m.events <- ev:
	case <-m.done:
	}
}

func (m *MPV) Seek(pos time.Duration) error {
	if m.conn == nil {
		return fmt.Errorf("mpv not loaded")
	}
	if _, err := m.conn.Call("seek", pos.Seconds(), "absolute+exact"); err != nil {
		return fmt.Errorf("mpv seek failed: %w", err)
	}
	return nil
}

func (m *MPV) Pause() error {
	return m.setPause(true)
}

func (m *MPV) Resume() error {
	return m.setPause(false)
}

func (m *MPV) setPause(paused bool) error {
	if m.conn == nil {
		return fmt.Errorf("mpv not loaded")
	}
	if err := m.conn.Set("pause", paused); err != nil {
		return fmt.Errorf("mpv pause toggle failed: %w", err)
	}
	return nil
}

func (m *MPV) Events() <-chan Event {
	return m.events
}

// Close asks mpv to quit and reaps the process, killing it if it lingers.
func (m *MPV) Close() error {
	m.once.Do(func() {
		close(m.done)
	})

	if m.conn != nil {
		_, _ = m.conn.Call("quit")
		_ = m.conn.Close()
	}

	if m.cmd == nil || m.cmd.Process == nil {
		return nil
	}

	waited := make(chan error, 1)
	go func() { waited <- m.cmd.Wait() }()
	select {
	case <-waited:
	case <-time.After(quitTimeout):
		_ = m.cmd.Process.Kill()
		<-waited
	}

	return nil
}
