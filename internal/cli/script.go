package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mgpai22/subtitler/internal/editor"
	"github.com/mgpai22/subtitler/internal/logging"
	"github.com/mgpai22/subtitler/internal/waveform"
)

// Script is a recorded editing session replayed against a headless media
// clock.
type Script struct {
	Duration time.Duration `yaml:"duration"`
	Looping  bool          `yaml:"looping"`
	Width    int           `yaml:"width"`
	Events   []ScriptEvent `yaml:"events"`
}

// ScriptEvent is one step of a session. Pos is a timeline position; pointer
// events are stamped with the session clock, which only moves on advance.
type ScriptEvent struct {
	Op    string        `yaml:"op"`
	Pos   time.Duration `yaml:"pos"`
	By    time.Duration `yaml:"by"`
	Text  string        `yaml:"text"`
	Delta int           `yaml:"delta"`
	Px    int           `yaml:"px"`
	// Clip is the 1-based position of a clip ordered by start. Zero means
	// the selected clip.
	Clip int `yaml:"clip"`
}

const (
	opDown    = "down"
	opMove    = "move"
	opUp      = "up"
	opCancel  = "cancel"
	opPlay    = "play"
	opPause   = "pause"
	opAdvance = "advance"
	opTick    = "tick"
	opSeek    = "seek"
	opText    = "text"
	opDelete  = "delete"
	opZoom    = "zoom"
	opWidth   = "width"
)

var errNoClip = errors.New("no clip to edit")

func LoadScript(path string) (*Script, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()
	return ParseScript(file)
}

func ParseScript(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	for i, ev := range s.Events {
		if err := ev.validate(); err != nil {
			return nil, fmt.Errorf("event %d: %w", i+1, err)
		}
	}
	return &s, nil
}

func (ev ScriptEvent) validate() error {
	switch ev.Op {
	case opDown, opMove, opUp, opSeek:
		if ev.Pos < 0 {
			return fmt.Errorf("%s: negative position %v", ev.Op, ev.Pos)
		}
	case opAdvance:
		if ev.By <= 0 {
			return fmt.Errorf("advance: duration must be positive, got %v", ev.By)
		}
	case opText, opDelete:
		if ev.Clip < 0 {
			return fmt.Errorf("%s: invalid clip %d", ev.Op, ev.Clip)
		}
	case opCancel, opPlay, opPause, opTick, opZoom, opWidth:
	default:
		return fmt.Errorf("unknown op %q", ev.Op)
	}
	return nil
}

// Session replays a Script through an editor.
type Session struct {
	Editor *editor.Editor
	Media  *editor.FakeMedia

	log     *logging.Logger
	looping bool
	clock   time.Duration
}

func NewSession(e *editor.Editor, media *editor.FakeMedia, s *Script, log *logging.Logger) *Session {
	if s.Width > 0 {
		e.SetWidth(s.Width)
	}
	return &Session{Editor: e, Media: media, log: log, looping: s.Looping}
}

// Run applies every event in order and stops at the first failure.
func (s *Session) Run(events []ScriptEvent) error {
	for i, ev := range events {
		if err := s.apply(ev); err != nil {
			return fmt.Errorf("event %d (%s): %w", i+1, ev.Op, err)
		}
	}
	return nil
}

func (s *Session) apply(ev ScriptEvent) error {
	e := s.Editor
	switch ev.Op {
	case opDown:
		e.PointerDown(s.clock, ev.Pos.Milliseconds())
	case opMove:
		e.PointerMove(ev.Pos.Milliseconds())
	case opUp:
		c, err := e.PointerUp(s.clock, ev.Pos.Milliseconds())
		if err != nil {
			return err
		}
		if c != nil {
			s.log.Debugw("Gesture committed",
				"kind", c.Kind.String(),
				"clip", c.ClipID,
				"start", c.Start,
				"end", c.End,
			)
		}
	case opCancel:
		e.CancelGesture()
	case opPlay:
		s.Media.Play()
	case opPause:
		s.Media.Pause()
	case opAdvance:
		s.clock += ev.By
		s.Media.Advance(ev.By)
		s.tick()
	case opTick:
		s.tick()
	case opSeek:
		e.Seek(ev.Pos.Milliseconds())
		s.tick()
	case opText:
		id, err := s.target(ev.Clip)
		if err != nil {
			return err
		}
		return e.SetCaptionText(id, ev.Text)
	case opDelete:
		id, err := s.target(ev.Clip)
		if err != nil {
			return err
		}
		return e.DeleteItem(id)
	case opZoom:
		e.Zoom(ev.Delta)
	case opWidth:
		e.SetWidth(ev.Px)
	}
	return nil
}

func (s *Session) tick() {
	u := s.Editor.TimeUpdate(s.looping)
	if u.Looped {
		s.log.Debugw("Looped selection", "ms", u.Ms)
	}
}

// target resolves a 1-based clip position, or the selection when n is zero.
func (s *Session) target(n int) (string, error) {
	if n == 0 {
		sel := s.Editor.Selection()
		if sel == nil {
			return "", errNoClip
		}
		return sel.Item.ID, nil
	}

	var clips []waveform.Item
	for _, it := range s.Editor.Items() {
		if it.Kind == waveform.KindPrimary {
			clips = append(clips, it)
		}
	}
	if n > len(clips) {
		return "", fmt.Errorf("%w: clip %d of %d", errNoClip, n, len(clips))
	}
	return clips[n-1].ID, nil
}
