package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mgpai22/subtitler/internal/audio"
	"github.com/mgpai22/subtitler/internal/gesture"
	"github.com/mgpai22/subtitler/internal/logging"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".subtitler.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// chdir changes the working directory for the duration of the test, like
// testing.T.Chdir in Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("failed to restore working directory: %v", err)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.File != "" {
		t.Errorf("expected no config file, got %q", cfg.File)
	}
	if diff := cmp.Diff(gesture.DefaultConfig(), cfg.Gesture()); diff != "" {
		t.Errorf("Gesture() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(audio.DefaultWaveformOptions(), cfg.Waveform()); diff != "" {
		t.Errorf("Waveform() mismatch (-want +got):\n%s", diff)
	}
	if cfg.PixelsPerSecond != 50 || cfg.ViewportWidth != 3000 {
		t.Errorf("unexpected view defaults: %d px/s, %d px", cfg.PixelsPerSecond, cfg.ViewportWidth)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected log level info, got %q", cfg.LogLevel)
	}
}

func TestLoadFromWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeConfig(t, dir, "pixels_per_second: 80\nlog_level: debug\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PixelsPerSecond != 80 {
		t.Errorf("expected 80 px/s, got %d", cfg.PixelsPerSecond)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug, got %q", cfg.LogLevel)
	}
	if cfg.File == "" {
		t.Error("expected config file to be reported")
	}
}

func TestLoadExplicitFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
drag_threshold: 600ms
min_clip_duration: 500ms
edge_tolerance: 50ms
segment_duration: 2m
waveform_height: 90
concurrency: 5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := gesture.Config{
		DragThreshold:   600 * time.Millisecond,
		MinClipDuration: 500,
		EdgeTolerance:   50,
	}
	if diff := cmp.Diff(want, cfg.Gesture()); diff != "" {
		t.Errorf("Gesture() mismatch (-want +got):\n%s", diff)
	}

	w := cfg.Waveform()
	if w.SegmentDuration != 2*time.Minute || w.Height != 90 || w.Concurrency != 5 {
		t.Errorf("unexpected waveform options: %+v", w)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeConfig(t, dir, "drag_threshold: 600ms\n")
	t.Setenv("SUBTITLER_DRAG_THRESHOLD", "300ms")
	t.Setenv("SUBTITLER_VIEWPORT_WIDTH", "1200")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DragThreshold != 300*time.Millisecond {
		t.Errorf("expected env to win, got %v", cfg.DragThreshold)
	}
	if cfg.ViewportWidth != 1200 {
		t.Errorf("expected viewport 1200, got %d", cfg.ViewportWidth)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero concurrency", "concurrency: 0\n"},
		{"negative tolerance", "edge_tolerance: -5ms\n"},
		{"zero pixels per second", "pixels_per_second: 0\n"},
		{"bad yaml", "pixels_per_second: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	t.Run("missing explicit file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error")
		}
	})
}

func TestEditorOptions(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SUBTITLER_PIXELS_PER_SECOND", "120")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	log := logging.Nop()
	opts := cfg.Editor(log)
	if opts.PixelsPerSecond != 120 {
		t.Errorf("expected 120 px/s, got %d", opts.PixelsPerSecond)
	}
	if opts.Logger != log {
		t.Error("logger not passed through")
	}
	if diff := cmp.Diff(gesture.DefaultConfig(), opts.Gesture); diff != "" {
		t.Errorf("Gesture mismatch (-want +got):\n%s", diff)
	}
}
