package playback

import (
	"testing"

	"github.com/mgpai22/subtitler/internal/waveform"
)

const testDuration = 10000

func fixture() (waveform.Partition, *waveform.Store) {
	return waveform.Build([]waveform.Item{
		{ID: "a", Start: 1000, End: 3000},
		{ID: "b", Start: 2000, End: 4000},
		{ID: "c", Start: 6000, End: 7000},
	}, testDuration)
}

func selectedID(sel *Selection) string {
	if sel == nil {
		return ""
	}
	return sel.Item.ID
}

func TestSelectionAt(t *testing.T) {
	p, store := fixture()

	tests := []struct {
		ms         int64
		want       string
		wantRegion int
	}{
		{500, "", 0},
		{1000, "a", 1},
		{2500, "a", 2},
		{3000, "b", 3},
		{5000, "", 0},
		{6999, "c", 5},
		{testDuration, "", 0},
	}

	for _, tt := range tests {
		sel := SelectionAt(p, store, tt.ms)
		if got := selectedID(sel); got != tt.want {
			t.Errorf("SelectionAt(%d) = %q, want %q", tt.ms, got, tt.want)
			continue
		}
		if sel != nil && sel.RegionIndex != tt.wantRegion {
			t.Errorf("SelectionAt(%d) region = %d, want %d", tt.ms, sel.RegionIndex, tt.wantRegion)
		}
	}
}

func TestOnTimeUpdateSelection(t *testing.T) {
	p, store := fixture()
	c := NewController(testDuration, DefaultPixelsPerSecond)

	steps := []struct {
		name       string
		tick       Tick
		want       string
		wantRegion int
	}{
		{"enter a", Tick{Ms: 1500}, "a", 1},
		{"a still spans overlap", Tick{Ms: 2500}, "a", 2},
		{"a ends, b is next", Tick{Ms: 3500}, "b", 3},
		{"seek back into overlap keeps b", Tick{Ms: 2500, Seeking: true}, "b", 2},
		{"playing into a gap keeps b", Tick{Ms: 5000}, "b", 2},
		{"seeking into a gap clears", Tick{Ms: 5000, Seeking: true}, "", 0},
		{"enter c", Tick{Ms: 6500}, "c", 5},
	}

	for _, step := range steps {
		u := c.OnTimeUpdate(p, store, step.tick)
		if got := selectedID(u.Selection); got != step.want {
			t.Errorf("%s: selection = %q, want %q", step.name, got, step.want)
			continue
		}
		if u.Selection != nil && u.Selection.RegionIndex != step.wantRegion {
			t.Errorf("%s: region = %d, want %d", step.name, u.Selection.RegionIndex, step.wantRegion)
		}
		if u.Looped {
			t.Errorf("%s: unexpected loop", step.name)
		}
		if c.State().CursorMs != step.tick.Ms {
			t.Errorf("%s: cursor = %d, want %d", step.name, c.State().CursorMs, step.tick.Ms)
		}
	}
}

func TestExplicitSelectWinsForOneUpdate(t *testing.T) {
	p, store := fixture()
	c := NewController(testDuration, DefaultPixelsPerSecond)
	c.OnTimeUpdate(p, store, Tick{Ms: 1500})

	cItem, _ := store.Item("c")
	c.Select(Selection{RegionIndex: 5, Region: p.Regions[5], Item: cItem})

	u := c.OnTimeUpdate(p, store, Tick{Ms: 1600})
	if got := selectedID(u.Selection); got != "c" {
		t.Fatalf("first update after select = %q, want c", got)
	}
	u = c.OnTimeUpdate(p, store, Tick{Ms: 1700})
	if got := selectedID(u.Selection); got != "a" {
		t.Errorf("second update after select = %q, want a", got)
	}
}

func TestLoop(t *testing.T) {
	p, store := fixture()

	tests := []struct {
		name       string
		tick       Tick
		wantLooped bool
		wantMs     int64
		wantSel    string
	}{
		{
			name:       "loops at end",
			tick:       Tick{Ms: 3000, Looping: true},
			wantLooped: true,
			wantMs:     1000,
			wantSel:    "a",
		},
		{
			name:       "loops past end",
			tick:       Tick{Ms: 3200, Looping: true},
			wantLooped: true,
			wantMs:     1000,
			wantSel:    "a",
		},
		{
			name:    "no loop when paused",
			tick:    Tick{Ms: 3000, Looping: true, Paused: true},
			wantMs:  3000,
			wantSel: "b",
		},
		{
			name:    "no loop while seeking",
			tick:    Tick{Ms: 3000, Looping: true, Seeking: true},
			wantMs:  3000,
			wantSel: "b",
		},
		{
			name:    "no loop when disabled",
			tick:    Tick{Ms: 3000},
			wantMs:  3000,
			wantSel: "b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(testDuration, DefaultPixelsPerSecond)
			c.OnTimeUpdate(p, store, Tick{Ms: 1500})

			u := c.OnTimeUpdate(p, store, tt.tick)
			if u.Looped != tt.wantLooped {
				t.Errorf("Looped = %v, want %v", u.Looped, tt.wantLooped)
			}
			if u.Ms != tt.wantMs {
				t.Errorf("Ms = %d, want %d", u.Ms, tt.wantMs)
			}
			if got := selectedID(u.Selection); got != tt.wantSel {
				t.Errorf("selection = %q, want %q", got, tt.wantSel)
			}
		})
	}
}

func TestSelectionDroppedWithItem(t *testing.T) {
	p, store := fixture()
	c := NewController(testDuration, DefaultPixelsPerSecond)
	c.OnTimeUpdate(p, store, Tick{Ms: 1500})

	p, err := waveform.Remove(p, store, "a")
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	u := c.OnTimeUpdate(p, store, Tick{Ms: 1600})
	if u.Selection != nil {
		t.Errorf("selection = %q after delete, want none", u.Selection.Item.ID)
	}
}

func TestAutoScroll(t *testing.T) {
	// 1000px at 50px/s shows 20s with a 2s buffer
	base := State{DurationMs: 60000, PixelsPerSecond: 50}
	sel := func(start, end int64) *Selection {
		return &Selection{Item: waveform.Item{ID: "x", Start: start, End: end}}
	}

	tests := []struct {
		name    string
		viewBox int64
		ms      int64
		sel     *Selection
		seeking bool
		drag    bool
		want    int64
	}{
		{name: "inside view", viewBox: 0, ms: 5000, want: 0},
		{name: "past right edge", viewBox: 0, ms: 25000, want: 23000},
		{name: "before left edge", viewBox: 30000, ms: 10000, want: 8000},
		{name: "left shift stops at zero", viewBox: 30000, ms: 1000, want: 0},
		{name: "right shift stops at last page", viewBox: 0, ms: 59000, want: 40000},
		{name: "frozen while dragging", viewBox: 0, ms: 25000, drag: true, want: 0},
		{
			name:    "seek reveals selection end",
			viewBox: 0, ms: 19000, sel: sel(18000, 21000), seeking: true,
			want: 3000,
		},
		{
			name:    "seek reveals selection start",
			viewBox: 30000, ms: 31500, sel: sel(31000, 33000), seeking: true,
			want: 29000,
		},
		{
			name:    "selection ignored without seek",
			viewBox: 0, ms: 19000, sel: sel(18000, 21000),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			s.ViewBoxStartMs = tt.viewBox
			got := AutoScroll(s, tt.ms, 1000, tt.sel, tt.seeking, tt.drag)
			if got != tt.want {
				t.Errorf("AutoScroll() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestZoom(t *testing.T) {
	c := NewController(60000, DefaultPixelsPerSecond)
	c.Seek(10000)

	c.Zoom(50, 1000)
	s := c.State()
	if s.PixelsPerSecond != 100 || s.ViewBoxStartMs != 5000 {
		t.Errorf("zoom in = %d px/s at %d, want 100 px/s at 5000", s.PixelsPerSecond, s.ViewBoxStartMs)
	}

	c.Zoom(1000, 1000)
	s = c.State()
	if s.PixelsPerSecond != MaxPixelsPerSecond || s.ViewBoxStartMs != 7500 {
		t.Errorf("zoom to max = %d px/s at %d, want 200 px/s at 7500", s.PixelsPerSecond, s.ViewBoxStartMs)
	}

	c.Zoom(-1000, 1000)
	s = c.State()
	if s.PixelsPerSecond != MinPixelsPerSecond || s.ViewBoxStartMs != 0 {
		t.Errorf("zoom to min = %d px/s at %d, want 10 px/s at 0", s.PixelsPerSecond, s.ViewBoxStartMs)
	}
}

func TestPixelConversions(t *testing.T) {
	if got := MsToPixels(1500, 50); got != 75 {
		t.Errorf("MsToPixels(1500, 50) = %v, want 75", got)
	}
	if got := PixelsToMs(75, 50); got != 1500 {
		t.Errorf("PixelsToMs(75, 50) = %d, want 1500", got)
	}
}
