package editor

import (
	"github.com/mgpai22/subtitler/internal/gesture"
	"github.com/mgpai22/subtitler/internal/playback"
	"github.com/mgpai22/subtitler/internal/waveform"
)

// Clip is one clip laid out for drawing.
type Clip struct {
	Item     waveform.Item
	Level    int
	X        float64
	Width    float64
	Text     string
	Selected bool
}

// View is what a renderer needs to draw the visible part of the waveform.
// X positions are relative to StartMs.
type View struct {
	StartMs         int64
	EndMs           int64
	PixelsPerSecond int
	CursorMs        int64
	// FirstRegion is the partition index of Regions[0].
	FirstRegion int
	Regions     []waveform.Region
	Clips       []Clip
	SelectedID  string
	// Pending is the shape of the gesture in progress, if any.
	Pending *Clip
}

// View culls the partition to the visible window and lays out its clips.
func (e *Editor) View() View {
	s := e.playback.State()
	width := e.widthPx
	if width <= 0 {
		width = e.opts.ViewportWidth
	}
	span := playback.PixelsToMs(float64(width), s.PixelsPerSecond)
	v := View{
		StartMs:         s.ViewBoxStartMs,
		EndMs:           min(s.ViewBoxStartMs+span, e.duration),
		PixelsPerSecond: s.PixelsPerSecond,
		CursorMs:        s.CursorMs,
	}
	if s.Selection != nil {
		v.SelectedID = s.Selection.Item.ID
	}

	from, to := e.regions.Window(v.StartMs, v.EndMs)
	v.FirstRegion = from
	v.Regions = e.regions.Regions[from:to]

	levels := e.regions.Levels()
	for _, it := range e.regions.VisibleItems(e.store, v.StartMs, v.EndMs) {
		c := e.layout(it, v)
		c.Level = levels[it.ID]
		c.Text = e.captions[it.ID].Text
		c.Selected = it.ID == v.SelectedID
		v.Clips = append(v.Clips, c)
	}

	if a, ok := e.PendingAction(); ok && e.gesture.Phase == gesture.PhaseDragging {
		start, end := a.Preview(e.opts.Gesture)
		preview := waveform.Item{ID: a.Clip.ID, Start: start, End: end, Kind: waveform.KindPreview}
		c := e.layout(preview, v)
		c.Level = levels[a.Clip.ID]
		v.Pending = &c
	}
	return v
}

func (e *Editor) layout(it waveform.Item, v View) Clip {
	return Clip{
		Item:  it,
		X:     playback.MsToPixels(it.Start-v.StartMs, v.PixelsPerSecond),
		Width: playback.MsToPixels(it.Duration(), v.PixelsPerSecond),
	}
}
