// Package gesture turns pointer down/drag/up sequences on the waveform
// timeline into create, move, stretch and select edits.
//
// Step is a pure function. Callers feed it one event at a time and apply the
// Commit it returns, if any.
package gesture

import (
	"time"

	"github.com/mgpai22/subtitler/internal/waveform"
)

// Config holds the fixed thresholds used to classify gestures.
type Config struct {
	// DragThreshold separates a tap on a clip from a move or stretch. A
	// pointer held for longer than this commits the structural edit.
	DragThreshold time.Duration
	// MinClipDuration is the shortest interval, in ms, a create may commit
	// and a stretch may leave behind.
	MinClipDuration int64
	// EdgeTolerance is how close, in ms, a press must be to a clip edge to
	// grab that edge instead of the body.
	EdgeTolerance int64
}

func DefaultConfig() Config {
	return Config{
		DragThreshold:   400 * time.Millisecond,
		MinClipDuration: 250,
		EdgeTolerance:   100,
	}
}

type Phase int

const (
	PhaseIdle Phase = iota
	PhasePointerDown
	PhaseDragging
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePointerDown:
		return "pointer-down"
	case PhaseDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

type ActionKind int

const (
	ActionCreate ActionKind = iota
	ActionMove
	ActionStretch
)

func (k ActionKind) String() string {
	switch k {
	case ActionCreate:
		return "create"
	case ActionMove:
		return "move"
	case ActionStretch:
		return "stretch"
	default:
		return "unknown"
	}
}

// Edge names the clip edge grabbed by a stretch.
type Edge int

const (
	EdgeStart Edge = iota
	EdgeEnd
)

func (e Edge) String() string {
	if e == EdgeStart {
		return "start"
	}
	return "end"
}

// Hit is the clip found under the pointer at press time.
type Hit struct {
	Clip        waveform.Item
	RegionIndex int
}

// Snapshot captures the waveform state when a gesture starts.
type Snapshot struct {
	DurationMs int64
	// SelectedID is the clip selected at press time, if any.
	SelectedID string
}

// Action is the gesture pending between press and release. Start is the
// press position and End follows the pointer.
type Action struct {
	Kind        ActionKind
	Start       int64
	End         int64
	Clip        waveform.Item
	RegionIndex int
	Origin      Edge
	DownAt      time.Duration
	View        Snapshot
}

// Preview returns the interval the pending action would commit if released
// now, for drawing its shape.
func (a Action) Preview(cfg Config) (start, end int64) {
	switch a.Kind {
	case ActionMove:
		return ClampMove(a.Clip, a.End-a.Start, a.View.DurationMs)
	case ActionStretch:
		return ClampStretch(a.Clip, a.Origin, a.End, cfg.MinClipDuration, a.View.DurationMs)
	default:
		return min(a.Start, a.End), max(a.Start, a.End)
	}
}

// State is the gesture machine state. Action is only meaningful outside
// PhaseIdle.
type State struct {
	Phase  Phase
	Action Action
}

func (s State) Pending() bool {
	return s.Phase != PhaseIdle
}

// Event is one of Down, Drag, Up or Cancel.
type Event interface {
	event()
}

// Down is a pointer press at Ms. Hit is nil when the press lands on empty
// timeline space. At is a monotonic timestamp.
type Down struct {
	At   time.Duration
	Ms   int64
	Hit  *Hit
	View Snapshot
}

// Drag is a pointer move while pressed.
type Drag struct {
	Ms int64
}

// Up is a pointer release.
type Up struct {
	At time.Duration
	Ms int64
}

// Cancel drops any pending gesture without committing it.
type Cancel struct{}

func (Down) event()   {}
func (Drag) event()   {}
func (Up) event()     {}
func (Cancel) event() {}

type CommitKind int

const (
	CommitCreate CommitKind = iota
	CommitMove
	CommitStretch
	CommitSelect
	CommitSeek
)

func (k CommitKind) String() string {
	switch k {
	case CommitCreate:
		return "create"
	case CommitMove:
		return "move"
	case CommitStretch:
		return "stretch"
	case CommitSelect:
		return "select"
	case CommitSeek:
		return "seek"
	default:
		return "unknown"
	}
}

// Commit is the outcome of a finished gesture. Start and End hold the new
// interval for create, move and stretch. SeekMs is the release position for
// select, and the press position for a discarded create.
type Commit struct {
	Kind        CommitKind
	Action      Action
	ClipID      string
	RegionIndex int
	Start       int64
	End         int64
	SeekMs      int64
}

// WasSelected reports whether the committed clip was already selected when
// the gesture started.
func (c *Commit) WasSelected() bool {
	return c.ClipID != "" && c.Action.View.SelectedID == c.ClipID
}

// Step advances the machine by one event. A Down while a gesture is pending
// starts over from the new press.
func Step(cfg Config, s State, ev Event) (State, *Commit) {
	switch ev := ev.(type) {
	case Down:
		return State{Phase: PhasePointerDown, Action: press(cfg, ev)}, nil

	case Drag:
		if !s.Pending() {
			return s, nil
		}
		s.Phase = PhaseDragging
		s.Action.End = clamp(ev.Ms, 0, s.Action.View.DurationMs)
		return s, nil

	case Up:
		if !s.Pending() {
			return s, nil
		}
		a := s.Action
		a.End = clamp(ev.Ms, 0, a.View.DurationMs)
		return State{}, release(cfg, a, ev.At-a.DownAt)

	case Cancel:
		return State{}, nil
	}
	return s, nil
}

func press(cfg Config, ev Down) Action {
	ms := clamp(ev.Ms, 0, ev.View.DurationMs)
	a := Action{
		Kind:   ActionCreate,
		Start:  ms,
		End:    ms,
		DownAt: ev.At,
		View:   ev.View,
	}
	if ev.Hit == nil {
		return a
	}

	clip := ev.Hit.Clip
	a.Clip = clip
	a.RegionIndex = ev.Hit.RegionIndex

	toStart := abs(ms - clip.Start)
	toEnd := abs(ms - clip.End)
	if toStart > cfg.EdgeTolerance && toEnd > cfg.EdgeTolerance {
		a.Kind = ActionMove
		return a
	}

	a.Kind = ActionStretch
	a.Origin = EdgeEnd
	if toStart < toEnd {
		a.Origin = EdgeStart
	}
	return a
}

func release(cfg Config, a Action, held time.Duration) *Commit {
	c := &Commit{
		Action:      a,
		ClipID:      a.Clip.ID,
		RegionIndex: a.RegionIndex,
	}

	if a.Kind == ActionCreate {
		c.Start, c.End = a.Preview(cfg)
		if c.End-c.Start < cfg.MinClipDuration {
			c.Kind = CommitSeek
			c.SeekMs = a.Start
			c.Start, c.End = 0, 0
			return c
		}
		c.Kind = CommitCreate
		return c
	}

	if held <= cfg.DragThreshold {
		c.Kind = CommitSelect
		c.SeekMs = a.End
		return c
	}

	c.Start, c.End = a.Preview(cfg)
	if a.Kind == ActionMove {
		c.Kind = CommitMove
	} else {
		c.Kind = CommitStretch
	}
	return c
}

// ClampMove shifts clip by delta while keeping its width and staying inside
// [0, durationMs].
func ClampMove(clip waveform.Item, delta, durationMs int64) (start, end int64) {
	width := clip.Duration()
	start = clamp(clip.Start+delta, 0, max(0, durationMs-width))
	return start, start + width
}

// ClampStretch moves the origin edge of clip to ms. The edge cannot cross
// the opposite edge minus minDuration, nor the timeline bounds.
func ClampStretch(
	clip waveform.Item,
	origin Edge,
	ms, minDuration, durationMs int64,
) (start, end int64) {
	if origin == EdgeStart {
		hi := clip.End - minDuration
		if hi < 0 {
			hi = 0
		}
		return clamp(ms, 0, hi), clip.End
	}

	lo := clip.Start + minDuration
	if lo > durationMs {
		lo = durationMs
	}
	return clip.Start, clamp(ms, lo, durationMs)
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
