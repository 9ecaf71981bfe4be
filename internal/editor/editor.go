// Package editor is the single owner of a caption editing session. It keeps
// the item store, the region partition and the captions side map in step,
// and drives gestures and playback sync against a Media element.
package editor

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/mgpai22/subtitler/internal/gesture"
	"github.com/mgpai22/subtitler/internal/logging"
	"github.com/mgpai22/subtitler/internal/playback"
	"github.com/mgpai22/subtitler/internal/subtitle"
	"github.com/mgpai22/subtitler/internal/waveform"
)

// Caption is the text attached to a clip.
type Caption struct {
	UUID string
	Text string
}

// editor options
type Options struct {
	Gesture         gesture.Config
	PixelsPerSecond int
	// ViewportWidth caps the rendered width, in pixels, used for culling.
	ViewportWidth int
	Logger        *logging.Logger
	// NewID generates clip ids. Defaults to random UUIDs.
	NewID func() string
}

func DefaultOptions() Options {
	return Options{
		Gesture:         gesture.DefaultConfig(),
		PixelsPerSecond: playback.DefaultPixelsPerSecond,
		ViewportWidth:   3000,
	}
}

type Editor struct {
	opts     Options
	log      *logging.Logger
	media    Media
	duration int64

	store    *waveform.Store
	regions  waveform.Partition
	captions map[string]Caption

	gesture  gesture.State
	playback *playback.Controller
	// set after a programmatic seek, cleared by the next time update
	seeking bool
	widthPx int
}

func New(media Media, opts Options) (*Editor, error) {
	duration := secondsToMs(media.Duration())
	if duration <= 0 {
		return nil, fmt.Errorf("media has no duration")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.ViewportWidth <= 0 {
		opts.ViewportWidth = DefaultOptions().ViewportWidth
	}

	e := &Editor{
		opts:     opts,
		log:      opts.Logger,
		media:    media,
		duration: duration,
		playback: playback.NewController(duration, opts.PixelsPerSecond),
	}
	e.reset(nil)
	return e, nil
}

func (e *Editor) DurationMs() int64 {
	return e.duration
}

// Load replaces every clip with cues. Cues are sorted by start ascending,
// end descending before indexing. Cues running past the media end are cut
// there; cues starting at or after it are skipped.
func (e *Editor) Load(cues []subtitle.Cue) int {
	sorted := append([]subtitle.Cue(nil), cues...)
	subtitle.SortCues(sorted)

	items := make([]waveform.Item, 0, len(sorted))
	captions := make(map[string]Caption, len(sorted))
	for _, cue := range sorted {
		end := min(cue.End, e.duration)
		if cue.Start < 0 || end <= cue.Start {
			e.log.Warnw("Skipping cue outside media",
				"start", cue.Start,
				"end", cue.End,
				"duration", e.duration,
			)
			continue
		}
		id := e.opts.NewID()
		items = append(items, waveform.Item{ID: id, Start: cue.Start, End: end})
		captions[id] = Caption{UUID: id, Text: cue.Text}
	}

	e.reset(items)
	e.captions = captions
	e.log.Debugw("Loaded cues",
		"cues", len(items),
		"regions", e.regions.Len(),
	)
	return len(items)
}

func (e *Editor) reset(items []waveform.Item) {
	e.regions, e.store = waveform.Build(items, e.duration)
	e.captions = make(map[string]Caption)
	e.gesture = gesture.State{}
	e.seeking = false
	e.playback.Reset(e.duration)
}

// Cues exports primary clips ordered by start with their caption text.
func (e *Editor) Cues() []subtitle.Cue {
	var cues []subtitle.Cue
	for _, it := range e.store.Sorted() {
		if it.Kind != waveform.KindPrimary {
			continue
		}
		cues = append(cues, subtitle.Cue{
			Start: it.Start,
			End:   it.End,
			Text:  e.captions[it.ID].Text,
		})
	}
	return cues
}

func (e *Editor) Item(id string) (waveform.Item, bool) {
	return e.store.Item(id)
}

// Items returns every clip ordered by start.
func (e *Editor) Items() []waveform.Item {
	return e.store.Sorted()
}

func (e *Editor) Partition() waveform.Partition {
	return e.regions
}

func (e *Editor) Caption(id string) (Caption, bool) {
	c, ok := e.captions[id]
	return c, ok
}

func (e *Editor) SetCaptionText(id, text string) error {
	c, ok := e.captions[id]
	if !ok {
		return fmt.Errorf("caption %q: %w", id, waveform.ErrUnknownItem)
	}
	c.Text = text
	e.captions[id] = c
	return nil
}

func (e *Editor) Selection() *playback.Selection {
	return e.playback.State().Selection
}

func (e *Editor) PlaybackState() playback.State {
	return e.playback.State()
}

// AddItem creates a clip with an empty caption.
func (e *Editor) AddItem(start, end int64) (waveform.Item, error) {
	it := waveform.Item{ID: e.opts.NewID(), Start: start, End: end}
	next, err := waveform.InsertOrUpdate(e.regions, e.store, it)
	if err != nil {
		return waveform.Item{}, fmt.Errorf("failed to add clip: %w", err)
	}
	e.regions = next
	e.captions[it.ID] = Caption{UUID: it.ID}

	e.log.Debugw("Clip created",
		"clip", it.ID,
		"start", it.Start,
		"end", it.End,
		"regions", e.regions.Len(),
	)
	return it, nil
}

// UpdateItem moves or stretches an existing clip to [start, end).
func (e *Editor) UpdateItem(id string, start, end int64) error {
	old, ok := e.store.Item(id)
	if !ok {
		return fmt.Errorf("update clip %q: %w", id, waveform.ErrUnknownItem)
	}
	it := old
	it.Start, it.End = start, end

	next, err := waveform.InsertOrUpdate(e.regions, e.store, it)
	if err != nil {
		return fmt.Errorf("failed to update clip: %w", err)
	}
	e.regions = next

	e.log.Debugw("Clip updated",
		"clip", id,
		"start", start,
		"end", end,
		"regions", e.regions.Len(),
	)
	return nil
}

// DeleteItem removes a clip and its caption, clearing the selection if it
// pointed at the clip.
func (e *Editor) DeleteItem(id string) error {
	next, err := waveform.Remove(e.regions, e.store, id)
	if err != nil {
		return fmt.Errorf("failed to delete clip: %w", err)
	}
	e.regions = next
	delete(e.captions, id)
	if e.Selection().Is(id) {
		e.playback.Clear()
	}

	e.log.Debugw("Clip deleted",
		"clip", id,
		"regions", e.regions.Len(),
	)
	return nil
}

// HitTest returns the clip under ms. The selected clip wins when several
// overlap there, then the one stacked on top.
func (e *Editor) HitTest(ms int64) *gesture.Hit {
	i, ok := e.regions.At(ms)
	if !ok {
		return nil
	}
	ids := e.regions.Regions[i].ItemIDs
	if len(ids) == 0 {
		return nil
	}

	id := ids[len(ids)-1]
	if sel := e.Selection(); sel != nil && e.regions.Regions[i].Has(sel.Item.ID) {
		id = sel.Item.ID
	}
	it, ok := e.store.Item(id)
	if !ok {
		return nil
	}
	return &gesture.Hit{Clip: it, RegionIndex: i}
}

func (e *Editor) PointerDown(at time.Duration, ms int64) {
	down := gesture.Down{
		At:   at,
		Ms:   ms,
		Hit:  e.HitTest(ms),
		View: gesture.Snapshot{DurationMs: e.duration},
	}
	if sel := e.Selection(); sel != nil {
		down.View.SelectedID = sel.Item.ID
	}
	e.gesture, _ = gesture.Step(e.opts.Gesture, e.gesture, down)
}

func (e *Editor) PointerMove(ms int64) {
	e.gesture, _ = gesture.Step(e.opts.Gesture, e.gesture, gesture.Drag{Ms: ms})
}

// PointerUp finishes the pending gesture and applies its outcome. It returns
// nil when no gesture was pending.
func (e *Editor) PointerUp(at time.Duration, ms int64) (*gesture.Commit, error) {
	var c *gesture.Commit
	e.gesture, c = gesture.Step(e.opts.Gesture, e.gesture, gesture.Up{At: at, Ms: ms})
	if c == nil {
		return nil, nil
	}
	if err := e.apply(c); err != nil {
		return c, err
	}
	return c, nil
}

// CancelGesture drops a pending gesture without applying it.
func (e *Editor) CancelGesture() {
	e.gesture, _ = gesture.Step(e.opts.Gesture, e.gesture, gesture.Cancel{})
}

// PendingAction returns the gesture in progress, if any.
func (e *Editor) PendingAction() (gesture.Action, bool) {
	return e.gesture.Action, e.gesture.Pending()
}

// apply performs a commit and seeks. Whether the clip counts as already
// selected is decided at press time, so playback moving the selection during
// the gesture does not change where it seeks.
func (e *Editor) apply(c *gesture.Commit) error {
	wasSelected := c.WasSelected()

	switch c.Kind {
	case gesture.CommitSeek:
		e.seek(c.SeekMs)

	case gesture.CommitCreate:
		it, err := e.AddItem(c.Start, c.End)
		if err != nil {
			return err
		}
		e.selectItem(it.ID)
		e.seek(it.Start)

	case gesture.CommitMove:
		if err := e.UpdateItem(c.ClipID, c.Start, c.End); err != nil {
			return err
		}
		e.selectItem(c.ClipID)
		e.seek(c.Start)

	case gesture.CommitStretch:
		if err := e.UpdateItem(c.ClipID, c.Start, c.End); err != nil {
			return err
		}
		e.selectItem(c.ClipID)
		// a newly selected clip seeks to its new start whichever edge moved
		if wasSelected {
			e.seek(e.currentMs())
		} else {
			e.seek(c.Start)
		}

	case gesture.CommitSelect:
		if _, ok := e.store.Item(c.ClipID); !ok {
			return fmt.Errorf("select clip %q: %w", c.ClipID, waveform.ErrUnknownItem)
		}
		e.selectItem(c.ClipID)
		if wasSelected {
			e.seek(c.SeekMs)
		} else {
			e.seek(c.Action.Clip.Start)
		}

	default:
		return errors.New("unknown gesture commit")
	}
	return nil
}

func (e *Editor) selectItem(id string) {
	it, ok := e.store.Item(id)
	if !ok {
		return
	}
	i, ok := e.regions.At(it.Start)
	if !ok {
		return
	}
	e.playback.Select(playback.Selection{
		RegionIndex: i,
		Region:      e.regions.Regions[i],
		Item:        it,
	})
}

// Seek moves playback to ms, clamped to the media.
func (e *Editor) Seek(ms int64) {
	e.seek(ms)
}

func (e *Editor) seek(ms int64) {
	ms = min(max(ms, 0), e.duration)
	e.media.SetCurrentTime(msToSeconds(ms))
	e.playback.Seek(ms)
	e.seeking = true
}

func (e *Editor) currentMs() int64 {
	return secondsToMs(e.media.CurrentTime())
}

// TimeUpdate syncs the cursor, selection and viewport with the media
// position. Call it whenever the media reports a new time.
func (e *Editor) TimeUpdate(looping bool) playback.Update {
	tick := playback.Tick{
		Ms:          min(e.currentMs(), e.duration),
		Paused:      e.media.Paused(),
		Seeking:     e.seeking,
		Looping:     looping,
		WidthPx:     e.widthPx,
		DragPending: e.gesture.Pending(),
	}
	e.seeking = false

	u := e.playback.OnTimeUpdate(e.regions, e.store, tick)
	if u.Looped {
		e.media.SetCurrentTime(msToSeconds(u.Ms))
		e.seeking = true
	}
	return u
}

// SetWidth records the rendered waveform width in pixels.
func (e *Editor) SetWidth(px int) {
	e.widthPx = min(max(px, 0), e.opts.ViewportWidth)
}

// Zoom changes the scale by delta pixels per second around the cursor.
func (e *Editor) Zoom(delta int) {
	e.playback.Zoom(delta, e.widthPx)
}

func secondsToMs(s float64) int64 {
	return int64(math.Round(s * 1000))
}

func msToSeconds(ms int64) float64 {
	return float64(ms) / 1000
}
