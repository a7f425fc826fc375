package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ulasonat/EnglishLearningApp/internal/player"
	"github.com/ulasonat/EnglishLearningApp/internal/segment"
	"github.com/ulasonat/EnglishLearningApp/internal/session"
	"github.com/ulasonat/EnglishLearningApp/internal/subtitle"
	"github.com/ulasonat/EnglishLearningApp/internal/vocab"
)

type fakeEngine struct {
	events  chan player.Event
	seeks   []time.Duration
	pauses  int
	resumes int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{events: make(chan player.Event, 16)}
}

func (f *fakeEngine) Load(ctx context.Context, videoPath string) error { return nil }

func (f *fakeEngine) Seek(pos time.Duration) error {
	f.seeks = append(f.seeks, pos)
	return nil
}

func (f *fakeEngine) Pause() error {
	f.pauses++
	return nil
}

func (f *fakeEngine) Resume() error {
	f.resumes++
	return nil
}

func (f *fakeEngine) Events() <-chan player.Event { return f.events }

func (f *fakeEngine) Close() error { return nil }

func testCues() []subtitle.Cue {
	return []subtitle.Cue{
		{Index: 1, Start: 10 * time.Second, End: 12 * time.Second, Text: "What a serendipity!"},
		{Index: 2, Start: 20 * time.Second, End: 22 * time.Second, Text: "It was all so ephemeral."},
	}
}

func ref(indices ...int) *vocab.CueRef {
	return &vocab.CueRef{Indices: indices}
}

func newModel(t *testing.T) (Model, *fakeEngine, string) {
	t.Helper()

	engine := newFakeEngine()
	list := &vocab.List{Entries: []vocab.Entry{
		{Word: "serendipity", Definition: "a happy accident", Ref: ref(1)},
		{Word: "ephemeral", Definition: "lasting a very short time", Ref: ref(2)},
	}}

	strategy, err := segment.New(segment.StrategyAuto, segment.Options{
		VideoDuration: time.Minute,
	})
	if err != nil {
		t.Fatalf("New() strategy error: %v", err)
	}

	source := filepath.Join(t.TempDir(), "words.json")
	ctrl, err := session.New(session.Config{
		List:     list,
		Cues:     testCues(),
		Strategy: strategy,
		Player:   player.New(engine),
		Source:   source,
	})
	if err != nil {
		t.Fatalf("New() session error: %v", err)
	}
	ctrl.Start()

	return New(ctrl, engine.Events()), engine, source
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()

	updated, cmd := m.Update(msg)
	model, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update() returned %T, expected Model", updated)
	}
	return model, cmd
}

func TestMarkKnownAdvances(t *testing.T) {
	m, _, _ := newModel(t)

	m, _ = update(t, m, keyMsg("y"))

	entry, idx, _ := m.session.Current()
	if idx != 1 || entry.Word != "ephemeral" {
		t.Errorf("after marking known, current is %q at %d, expected ephemeral at 1", entry.Word, idx)
	}
	if m.session.KnownCount() != 1 {
		t.Errorf("KnownCount() = %d, expected 1", m.session.KnownCount())
	}
	if m.notice != "" {
		t.Errorf("notice = %q, expected none", m.notice)
	}
}

func TestMarkAtLastEntrySignalsFinish(t *testing.T) {
	m, _, _ := newModel(t)

	m, _ = update(t, m, keyMsg("y"))
	m, _ = update(t, m, keyMsg("n"))

	if m.notice != readyToFinishNotice {
		t.Errorf("notice = %q, expected %q", m.notice, readyToFinishNotice)
	}
	if _, idx, _ := m.session.Current(); idx != 1 {
		t.Errorf("current index = %d, expected to stay at 1", idx)
	}
}

func TestNavigationKeys(t *testing.T) {
	m, _, _ := newModel(t)

	m, _ = update(t, m, keyMsg("l"))
	if _, idx, _ := m.session.Current(); idx != 1 {
		t.Fatalf("after l, index = %d, expected 1", idx)
	}

	m, _ = update(t, m, keyMsg("h"))
	if _, idx, _ := m.session.Current(); idx != 0 {
		t.Fatalf("after h, index = %d, expected 0", idx)
	}

	m, _ = update(t, m, keyMsg("h"))
	if m.notice == "" {
		t.Error("expected a notice when moving before the first entry")
	}
}

func TestQuitKeyAborts(t *testing.T) {
	m, _, _ := newModel(t)

	m, cmd := update(t, m, keyMsg("q"))

	if !m.aborted {
		t.Error("expected aborted after q")
	}
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.Quit after q")
	}
	if !strings.Contains(m.View(), "nothing exported") {
		t.Errorf("aborted view = %q, expected export disclaimer", m.View())
	}
}

func TestFinishKeyExports(t *testing.T) {
	m, _, source := newModel(t)

	m, _ = update(t, m, keyMsg("y"))
	m, cmd := update(t, m, keyMsg("f"))

	if !m.finished {
		t.Fatal("expected finished after f")
	}
	if m.exportErr != nil {
		t.Fatalf("export error: %v", m.exportErr)
	}
	if cmd == nil {
		t.Fatal("expected a quit command")
	}

	expected := strings.TrimSuffix(source, ".json") + "_filtered.json"
	if m.exportPath != expected {
		t.Errorf("export path = %q, expected %q", m.exportPath, expected)
	}
	if _, err := os.Stat(m.exportPath); err != nil {
		t.Fatalf("exported file missing: %v", err)
	}

	list, err := vocab.Load(m.exportPath)
	if err != nil {
		t.Fatalf("Load() exported file error: %v", err)
	}
	if list.Len() != 1 || list.Entries[0].Word != "ephemeral" {
		t.Errorf("exported %d entries, expected only ephemeral", list.Len())
	}
	if !strings.Contains(m.View(), m.exportPath) {
		t.Errorf("finished view = %q, expected export path", m.View())
	}
}

func TestListenEngineDeliversEvents(t *testing.T) {
	events := make(chan player.Event, 1)
	events <- player.Event{Kind: player.EventSeeked}

	msg := listenEngine(events)()
	ev, ok := msg.(engineEventMsg)
	if !ok {
		t.Fatalf("listenEngine() returned %T, expected engineEventMsg", msg)
	}
	if ev.ev.Kind != player.EventSeeked {
		t.Errorf("event kind = %v, expected seeked", ev.ev.Kind)
	}

	close(events)
	if _, ok := listenEngine(events)().(engineClosedMsg); !ok {
		t.Error("expected engineClosedMsg after channel close")
	}
}

func TestEngineEventsDrivePlayback(t *testing.T) {
	m, engine, _ := newModel(t)

	if m.session.State() != player.StateSeeking {
		t.Fatalf("state = %v, expected seeking after start", m.session.State())
	}

	m, cmd := update(t, m, engineEventMsg{ev: player.Event{Kind: player.EventSeeked}})
	if m.session.State() != player.StatePlaying {
		t.Fatalf("state = %v, expected playing after seek completion", m.session.State())
	}
	if cmd == nil {
		t.Error("expected the engine listener to re-arm")
	}
	if engine.resumes != 1 {
		t.Errorf("resumes = %d, expected 1", engine.resumes)
	}

	m, _ = update(t, m, engineEventMsg{ev: player.Event{
		Kind:     player.EventPosition,
		Position: 13 * time.Second,
	}})
	if m.session.State() != player.StateStopped {
		t.Errorf("state = %v, expected stopped past the segment end", m.session.State())
	}
	if m.position != 13*time.Second {
		t.Errorf("position = %v, expected 13s", m.position)
	}
	if engine.pauses == 0 {
		t.Error("expected the engine to pause at the boundary")
	}
}

func TestWindowSizeStored(t *testing.T) {
	m, _, _ := newModel(t)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	if m.width != 100 || m.height != 40 {
		t.Errorf("size = %dx%d, expected 100x40", m.width, m.height)
	}
}

func TestViewShowsEntry(t *testing.T) {
	m, _, _ := newModel(t)

	view := m.View()
	for _, want := range []string{"Word 1 of 2", "serendipity", "a happy accident", "seeking", "f finish"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
