// Package playback keeps the waveform cursor, viewport and current selection
// in step with the media element's play position.
package playback

import (
	"math"

	"github.com/mgpai22/subtitler/internal/waveform"
)

const (
	MinPixelsPerSecond     = 10
	MaxPixelsPerSecond     = 200
	DefaultPixelsPerSecond = 50

	// share of the visible span kept between the cursor and a viewport edge
	scrollBufferRatio = 0.1
)

// Selection is the item currently highlighted, along with the region it was
// found in. Two selections are the same when their item ids match.
type Selection struct {
	RegionIndex int
	Region      waveform.Region
	Item        waveform.Item
}

func (s *Selection) Is(id string) bool {
	return s != nil && s.Item.ID == id
}

// SelectionAt returns the first item of the region containing ms whose
// interval spans ms, or nil.
func SelectionAt(p waveform.Partition, items waveform.Lookup, ms int64) *Selection {
	i, ok := p.At(ms)
	if !ok {
		return nil
	}
	region := p.Regions[i]
	for _, id := range region.ItemIDs {
		it, ok := items.Item(id)
		if ok && it.Contains(ms) {
			return &Selection{RegionIndex: i, Region: region, Item: it}
		}
	}
	return nil
}

// State is the view state owned by a Controller.
type State struct {
	DurationMs      int64
	CursorMs        int64
	ViewBoxStartMs  int64
	PixelsPerSecond int
	Selection       *Selection
}

// Tick is one playback time update from the media element.
type Tick struct {
	Ms      int64
	Paused  bool
	Seeking bool
	Looping bool
	// WidthPx is the rendered width of the waveform.
	WidthPx int
	// DragPending freezes the viewport while a gesture is in progress.
	DragPending bool
}

// Update reports what a Tick changed. When Looped is set the caller must seek
// the media element back to Ms.
type Update struct {
	Ms             int64
	Looped         bool
	Selection      *Selection
	ViewBoxStartMs int64
}

type Controller struct {
	state      State
	defaultPPS int
	// set by Select, consumed by the next time update
	explicit bool
}

func NewController(durationMs int64, pixelsPerSecond int) *Controller {
	pps := clampInt(pixelsPerSecond, MinPixelsPerSecond, MaxPixelsPerSecond)
	c := &Controller{defaultPPS: pps}
	c.Reset(durationMs)
	return c
}

func (c *Controller) State() State {
	return c.state
}

// Reset drops the selection and returns the view to the start of a timeline
// of the given duration.
func (c *Controller) Reset(durationMs int64) {
	c.state = State{DurationMs: durationMs, PixelsPerSecond: c.defaultPPS}
	c.explicit = false
}

// Select makes sel the current selection. It takes priority over the
// selection derived from the next time update.
func (c *Controller) Select(sel Selection) {
	c.state.Selection = &sel
	c.explicit = true
}

func (c *Controller) Clear() {
	c.state.Selection = nil
	c.explicit = false
}

// Seek moves the cursor without touching the selection.
func (c *Controller) Seek(ms int64) {
	c.state.CursorMs = clamp(ms, 0, c.state.DurationMs)
}

// Zoom changes the scale by delta pixels per second, keeping the cursor at
// the same relative screen position.
func (c *Controller) Zoom(delta, widthPx int) {
	s := &c.state
	pps := clampInt(s.PixelsPerSecond+delta, MinPixelsPerSecond, MaxPixelsPerSecond)
	if widthPx <= 0 {
		s.PixelsPerSecond = pps
		return
	}

	oldSpan := PixelsToMs(float64(widthPx), s.PixelsPerSecond)
	newSpan := PixelsToMs(float64(widthPx), pps)
	ratio := float64(s.CursorMs-s.ViewBoxStartMs) / float64(oldSpan)
	offset := int64(math.Round(ratio * float64(newSpan)))

	s.PixelsPerSecond = pps
	s.ViewBoxStartMs = clamp(s.CursorMs-offset, 0, max(0, s.DurationMs-newSpan))
}

// OnTimeUpdate re-derives the cursor, selection and viewport for a new play
// position.
//
// A selection that still spans the position is kept even when another item
// also does. Without a seek, leaving every item keeps the last selection.
// While looping and playing, reaching the selection end loops back to its
// start and skips the lookup.
func (c *Controller) OnTimeUpdate(
	p waveform.Partition,
	items waveform.Lookup,
	t Tick,
) Update {
	cur := refresh(items, c.state.Selection)
	explicit := c.explicit
	c.explicit = false

	if cur != nil && !t.Seeking && t.Looping && !t.Paused && t.Ms >= cur.Item.End {
		c.state.CursorMs = cur.Item.Start
		c.state.Selection = cur
		return Update{
			Ms:             cur.Item.Start,
			Looped:         true,
			Selection:      cur,
			ViewBoxStartMs: c.state.ViewBoxStartMs,
		}
	}

	var next *Selection
	switch {
	case cur != nil && (explicit || cur.Item.Contains(t.Ms)):
		next = relocate(p, cur, t.Ms)
	default:
		next = SelectionAt(p, items, t.Ms)
		if next == nil && !t.Seeking && cur != nil {
			next = relocate(p, cur, t.Ms)
		}
	}

	c.state.CursorMs = clamp(t.Ms, 0, c.state.DurationMs)
	c.state.Selection = next
	c.state.ViewBoxStartMs = AutoScroll(c.state, t.Ms, t.WidthPx, next, t.Seeking, t.DragPending)

	return Update{
		Ms:             c.state.CursorMs,
		Selection:      next,
		ViewBoxStartMs: c.state.ViewBoxStartMs,
	}
}

// AutoScroll returns the viewport start that keeps ms on screen. After a
// seek onto a selection the whole selection is brought into view.
func AutoScroll(
	s State,
	ms int64,
	widthPx int,
	sel *Selection,
	seeking, dragPending bool,
) int64 {
	if dragPending || widthPx <= 0 {
		return s.ViewBoxStartMs
	}

	span := PixelsToMs(float64(widthPx), s.PixelsPerSecond)
	buffer := int64(math.Round(float64(span) * scrollBufferRatio))
	maxStart := max(0, s.DurationMs-span)
	left := s.ViewBoxStartMs
	right := left + span

	if seeking && sel != nil {
		if sel.Item.End+buffer >= right {
			return clamp(sel.Item.End+buffer-span, 0, maxStart)
		}
		if sel.Item.Start-buffer <= left {
			return max(0, sel.Item.Start-buffer)
		}
	}

	switch {
	case ms < left:
		return max(0, ms-buffer)
	case ms >= right:
		return clamp(ms-buffer, 0, maxStart)
	}
	return left
}

func MsToPixels(ms int64, pixelsPerSecond int) float64 {
	return float64(ms) / 1000 * float64(pixelsPerSecond)
}

func PixelsToMs(px float64, pixelsPerSecond int) int64 {
	return int64(math.Round(px / float64(pixelsPerSecond) * 1000))
}

// refresh reloads the selected item from the store, dropping the selection
// if the item is gone.
func refresh(items waveform.Lookup, sel *Selection) *Selection {
	if sel == nil {
		return nil
	}
	it, ok := items.Item(sel.Item.ID)
	if !ok {
		return nil
	}
	out := *sel
	out.Item = it
	return &out
}

// relocate points sel at the region holding its item at ms, or at the item
// start when ms lies outside it.
func relocate(p waveform.Partition, sel *Selection, ms int64) *Selection {
	at := ms
	if !sel.Item.Contains(ms) {
		at = sel.Item.Start
	}
	i, ok := p.At(at)
	if !ok || !p.Regions[i].Has(sel.Item.ID) {
		return sel
	}
	out := *sel
	out.RegionIndex = i
	out.Region = p.Regions[i]
	return &out
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

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
