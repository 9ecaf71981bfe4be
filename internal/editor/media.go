package editor

import (
	"time"
)

// Media is the playback element the editor drives. Times are in seconds, as
// on an HTML media element.
type Media interface {
	CurrentTime() float64
	SetCurrentTime(seconds float64)
	Paused() bool
	Duration() float64
}

// FakeMedia is a headless Media whose clock only moves through Advance. It
// backs scripted sessions and tests.
type FakeMedia struct {
	current  float64
	duration float64
	paused   bool
}

func NewFakeMedia(duration time.Duration) *FakeMedia {
	return &FakeMedia{duration: duration.Seconds(), paused: true}
}

func (m *FakeMedia) CurrentTime() float64 {
	return m.current
}

func (m *FakeMedia) SetCurrentTime(seconds float64) {
	m.current = min(max(seconds, 0), m.duration)
}

func (m *FakeMedia) Paused() bool {
	return m.paused
}

func (m *FakeMedia) Duration() float64 {
	return m.duration
}

func (m *FakeMedia) Play() {
	m.paused = false
}

func (m *FakeMedia) Pause() {
	m.paused = true
}

// Advance moves the clock forward by d unless paused. Playback stops at the
// end of the media.
func (m *FakeMedia) Advance(d time.Duration) {
	if m.paused {
		return
	}
	m.SetCurrentTime(m.current + d.Seconds())
	if m.current >= m.duration {
		m.paused = true
	}
}
