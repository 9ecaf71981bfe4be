// Package config loads editor and waveform settings from defaults, an
// optional .subtitler.yaml file and SUBTITLER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mgpai22/subtitler/internal/audio"
	"github.com/mgpai22/subtitler/internal/editor"
	"github.com/mgpai22/subtitler/internal/gesture"
	"github.com/mgpai22/subtitler/internal/logging"
)

const (
	keyPixelsPerSecond         = "pixels_per_second"
	keyDragThreshold           = "drag_threshold"
	keyMinClipDuration         = "min_clip_duration"
	keyEdgeTolerance           = "edge_tolerance"
	keyViewportWidth           = "viewport_width"
	keySegmentDuration         = "segment_duration"
	keyWaveformPixelsPerSecond = "waveform_pixels_per_second"
	keyWaveformHeight          = "waveform_height"
	keyWaveformColor           = "waveform_color"
	keyWaveformBackground      = "waveform_background"
	keyConcurrency             = "concurrency"
	keyLogLevel                = "log_level"
)

type Config struct {
	PixelsPerSecond int
	DragThreshold   time.Duration
	MinClipDuration time.Duration
	EdgeTolerance   time.Duration
	ViewportWidth   int

	SegmentDuration         time.Duration
	WaveformPixelsPerSecond int
	WaveformHeight          int
	WaveformColor           string
	WaveformBackground      string
	Concurrency             int

	LogLevel string
	// File is the config file that was read, empty when none was found.
	File string
}

func setDefaults(v *viper.Viper) {
	g := gesture.DefaultConfig()
	w := audio.DefaultWaveformOptions()
	e := editor.DefaultOptions()

	v.SetDefault(keyPixelsPerSecond, e.PixelsPerSecond)
	v.SetDefault(keyDragThreshold, g.DragThreshold)
	v.SetDefault(keyMinClipDuration, time.Duration(g.MinClipDuration)*time.Millisecond)
	v.SetDefault(keyEdgeTolerance, time.Duration(g.EdgeTolerance)*time.Millisecond)
	v.SetDefault(keyViewportWidth, e.ViewportWidth)
	v.SetDefault(keySegmentDuration, w.SegmentDuration)
	v.SetDefault(keyWaveformPixelsPerSecond, w.PixelsPerSecond)
	v.SetDefault(keyWaveformHeight, w.Height)
	v.SetDefault(keyWaveformColor, w.Color)
	v.SetDefault(keyWaveformBackground, w.Background)
	v.SetDefault(keyConcurrency, w.Concurrency)
	v.SetDefault(keyLogLevel, "info")
}

// Load reads the configuration. With an empty path it looks for a
// .subtitler.yaml in the working directory and is fine without one; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SUBTITLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".subtitler")
		v.SetConfigType("yaml")
		v.AddConfigPath("./")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		PixelsPerSecond:         v.GetInt(keyPixelsPerSecond),
		DragThreshold:           v.GetDuration(keyDragThreshold),
		MinClipDuration:         v.GetDuration(keyMinClipDuration),
		EdgeTolerance:           v.GetDuration(keyEdgeTolerance),
		ViewportWidth:           v.GetInt(keyViewportWidth),
		SegmentDuration:         v.GetDuration(keySegmentDuration),
		WaveformPixelsPerSecond: v.GetInt(keyWaveformPixelsPerSecond),
		WaveformHeight:          v.GetInt(keyWaveformHeight),
		WaveformColor:           v.GetString(keyWaveformColor),
		WaveformBackground:      v.GetString(keyWaveformBackground),
		Concurrency:             v.GetInt(keyConcurrency),
		LogLevel:                v.GetString(keyLogLevel),
		File:                    v.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every setting that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if c.PixelsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", keyPixelsPerSecond, c.PixelsPerSecond))
	}
	if c.DragThreshold < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %v", keyDragThreshold, c.DragThreshold))
	}
	if c.MinClipDuration <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", keyMinClipDuration, c.MinClipDuration))
	}
	if c.EdgeTolerance < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %v", keyEdgeTolerance, c.EdgeTolerance))
	}
	if c.ViewportWidth <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", keyViewportWidth, c.ViewportWidth))
	}
	if c.SegmentDuration <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", keySegmentDuration, c.SegmentDuration))
	}
	if c.WaveformPixelsPerSecond <= 0 || c.WaveformHeight <= 0 {
		errs = append(errs, fmt.Errorf("invalid waveform size %d px/s x %d px", c.WaveformPixelsPerSecond, c.WaveformHeight))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", keyConcurrency, c.Concurrency))
	}
	return errors.Join(errs...)
}

func (c *Config) Gesture() gesture.Config {
	return gesture.Config{
		DragThreshold:   c.DragThreshold,
		MinClipDuration: c.MinClipDuration.Milliseconds(),
		EdgeTolerance:   c.EdgeTolerance.Milliseconds(),
	}
}

// Editor returns editor options logging to log.
func (c *Config) Editor(log *logging.Logger) editor.Options {
	opts := editor.DefaultOptions()
	opts.Gesture = c.Gesture()
	opts.PixelsPerSecond = c.PixelsPerSecond
	opts.ViewportWidth = c.ViewportWidth
	opts.Logger = log
	return opts
}

func (c *Config) Waveform() audio.WaveformOptions {
	return audio.WaveformOptions{
		SegmentDuration: c.SegmentDuration,
		PixelsPerSecond: c.WaveformPixelsPerSecond,
		Height:          c.WaveformHeight,
		Color:           c.WaveformColor,
		Background:      c.WaveformBackground,
		Concurrency:     c.Concurrency,
	}
}
