// Package subtitle reads and writes caption cue files. Cue times are
// integer milliseconds, matching the waveform timeline.
package subtitle

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// represents single caption cue
type Cue struct {
	Start int64
	End   int64
	Text  string
}

func (c Cue) Duration() time.Duration {
	return time.Duration(c.End-c.Start) * time.Millisecond
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// SortCues orders cues by start ascending, then end descending.
func SortCues(cues []Cue) {
	sort.SliceStable(cues, func(i, j int) bool {
		if cues[i].Start != cues[j].Start {
			return cues[i].Start < cues[j].Start
		}
		return cues[i].End > cues[j].End
	})
}

// subtitle format based on file extension
func FormatFromExtension(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".srt":
		return FormatSRT, nil
	case ".vtt":
		return FormatVTT, nil
	case ".ass", ".ssa":
		return FormatASS, nil
	default:
		return "", fmt.Errorf("unsupported subtitle format: %q", ext)
	}
}

// file extension for a format
func ExtensionForFormat(format Format) string {
	switch format {
	case FormatVTT:
		return ".vtt"
	case FormatASS:
		return ".ass"
	default:
		return ".srt"
	}
}
