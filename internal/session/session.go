package session

import (
	"errors"
	"fmt"

	"github.com/ulasonat/EnglishLearningApp/internal/export"
	"github.com/ulasonat/EnglishLearningApp/internal/logging"
	"github.com/ulasonat/EnglishLearningApp/internal/player"
	"github.com/ulasonat/EnglishLearningApp/internal/segment"
	"github.com/ulasonat/EnglishLearningApp/internal/subtitle"
	"github.com/ulasonat/EnglishLearningApp/internal/vocab"
)

// Config carries everything one review session needs.
type Config struct {
	List     *vocab.List
	Cues     []subtitle.Cue
	Strategy segment.Strategy
	Player   *player.Player
	Exporter export.Exporter
	// Source is the vocabulary file path; the export lands next to it.
	Source string
	Logger *logging.Logger
}

// Controller walks the vocabulary list and plays the segment each entry
// resolves to. Like the player it owns, it expects to be driven from a
// single goroutine.
type Controller struct {
	list     *vocab.List
	cues     []subtitle.Cue
	strategy segment.Strategy
	player   *player.Player
	exporter export.Exporter
	source   string
	logger   *logging.Logger

	idx        int
	seg        segment.Segment
	resolveErr error
	marked     []bool
}

func New(cfg Config) (*Controller, error) {
	if cfg.List == nil || cfg.List.Len() == 0 {
		return nil, errors.New("vocabulary list is empty")
	}
	if cfg.Strategy == nil {
		return nil, errors.New("matching strategy is required")
	}
	if cfg.Player == nil {
		return nil, errors.New("player is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Controller{
		list:     cfg.List,
		cues:     cfg.Cues,
		strategy: cfg.Strategy,
		player:   cfg.Player,
		exporter: cfg.Exporter,
		source:   cfg.Source,
		logger:   logger,
		marked:   make([]bool, cfg.List.Len()),
	}, nil
}

// Start shows the first entry.
func (c *Controller) Start() {
	c.show()
}

// Current returns the entry under review, its index, and the list length.
func (c *Controller) Current() (vocab.Entry, int, int) {
	return c.list.Entries[c.idx], c.idx, c.list.Len()
}

// Segment returns the resolved window for the current entry. It is zero
// when resolution failed.
func (c *Controller) Segment() segment.Segment {
	return c.seg
}

// ResolveErr reports why the current entry has no playable segment.
func (c *Controller) ResolveErr() error {
	return c.resolveErr
}

// PlaybackErr reports the last engine failure, if any.
func (c *Controller) PlaybackErr() error {
	return c.player.Err()
}

func (c *Controller) State() player.State {
	return c.player.State()
}

// Next moves to the following entry. It reports false at the end of the
// list, which leaves the session ready to finish.
func (c *Controller) Next() bool {
	if c.idx >= c.list.Len()-1 {
		return false
	}
	c.idx++
	c.show()
	return true
}

// Previous moves back one entry, reporting false at the start of the list.
func (c *Controller) Previous() bool {
	if c.idx == 0 {
		return false
	}
	c.idx--
	c.show()
	return true
}

// Mark records the verdict for the current entry and advances. It reports
// false when there is nothing left to advance to.
func (c *Controller) Mark(known bool) bool {
	if err := c.list.Mark(c.idx, known); err != nil {
		c.logger.Errorw("failed to mark entry", "index", c.idx, "error", err)
		return false
	}
	c.marked[c.idx] = true
	return c.Next()
}

// Replay plays the current segment again.
func (c *Controller) Replay() {
	if c.resolveErr != nil || c.seg.IsZero() {
		return
	}
	entry := c.list.Entries[c.idx]
	if err := c.player.Play(c.seg); err != nil {
		c.logger.Warnw("replay failed", "word", entry.Word, "error", err)
	}
}

// AtEnd reports whether the last entry is under review.
func (c *Controller) AtEnd() bool {
	return c.idx == c.list.Len()-1
}

// Reviewed counts the entries the user has marked so far.
func (c *Controller) Reviewed() int {
	n := 0
	for _, m := range c.marked {
		if m {
			n++
		}
	}
	return n
}

// KnownCount counts the entries marked known so far.
func (c *Controller) KnownCount() int {
	n := 0
	for _, entry := range c.list.Entries {
		if entry.Known {
			n++
		}
	}
	return n
}

// Finish stops playback and exports the entries still unknown. It returns
// the path of the written file.
func (c *Controller) Finish() (string, error) {
	c.player.Stop()

	path, err := c.exporter.Export(c.list.Filtered(), c.source)
	if err != nil {
		return "", fmt.Errorf("failed to export results: %w", err)
	}
	c.logger.Infow("exported unknown words",
		"path", path,
		"unknown", c.list.Len()-c.KnownCount(),
		"total", c.list.Len(),
	)
	return path, nil
}

// Abort stops playback without exporting anything.
func (c *Controller) Abort() {
	c.player.Stop()
}

// HandleEvent forwards an engine event to the player state machine.
func (c *Controller) HandleEvent(ev player.Event) {
	c.player.HandleEvent(ev)
}

// show resolves the current entry and starts playback. A failed lookup
// leaves the entry visible with no segment; a failed playback start is
// recorded by the player. Neither stops the review.
func (c *Controller) show() {
	entry := c.list.Entries[c.idx]
	c.resolveErr = nil
	c.seg = segment.Segment{}

	seg, err := c.strategy.Resolve(entry, c.cues)
	if err != nil {
		c.resolveErr = err
		c.player.Stop()
		c.logger.Warnw("no playable segment", "word", entry.Word, "error", err)
		return
	}

	c.seg = seg
	if err := c.player.Play(seg); err != nil {
		c.logger.Warnw("playback failed", "word", entry.Word, "error", err)
	}
}
