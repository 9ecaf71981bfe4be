package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Advanced SubStation Alpha style settings
type ASSStyle struct {
	Title    string
	FontName string
	FontSize int
}

func DefaultASSStyle() ASSStyle {
	return ASSStyle{
		Title:    "Subtitler Export",
		FontName: "Arial",
		FontSize: 20,
	}
}

// WriteFile writes cues to path in the format implied by its extension,
// creating parent directories as needed.
func WriteFile(path string, cues []Cue) error {
	format, err := FormatFromExtension(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create subtitle file: %w", err)
	}
	if err := Write(file, format, cues); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Write encodes cues in the given format. Cue indexes are renumbered from 1.
func Write(w io.Writer, format Format, cues []Cue) error {
	bw := bufio.NewWriter(w)
	switch format {
	case FormatSRT:
		writeSRT(bw, cues)
	case FormatVTT:
		writeVTT(bw, cues)
	case FormatASS:
		writeASS(bw, cues, DefaultASSStyle())
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", format, err)
	}
	return nil
}

func writeSRT(w *bufio.Writer, cues []Cue) {
	for i, cue := range cues {
		fmt.Fprintf(w, "%d\n", i+1)
		fmt.Fprintf(w, "%s --> %s\n", formatTimestamp(cue.Start, ','), formatTimestamp(cue.End, ','))
		w.WriteString(cue.Text)
		w.WriteString("\n\n")
	}
}

func writeVTT(w *bufio.Writer, cues []Cue) {
	w.WriteString("WEBVTT\n\n")
	for i, cue := range cues {
		fmt.Fprintf(w, "%d\n", i+1)
		fmt.Fprintf(w, "%s --> %s\n", formatTimestamp(cue.Start, '.'), formatTimestamp(cue.End, '.'))
		w.WriteString(cue.Text)
		w.WriteString("\n\n")
	}
}

func writeASS(w *bufio.Writer, cues []Cue, style ASSStyle) {
	w.WriteString("[Script Info]\n")
	fmt.Fprintf(w, "Title: %s\n", style.Title)
	w.WriteString("ScriptType: v4.00+\n")
	w.WriteString("Collisions: Normal\n")
	w.WriteString("PlayDepth: 0\n\n")

	w.WriteString("[V4+ Styles]\n")
	w.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(w, "Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n",
		style.FontName, style.FontSize)

	w.WriteString("[Events]\n")
	w.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, cue := range cues {
		fmt.Fprintf(w, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTime(cue.Start),
			formatASSTime(cue.End),
			strings.ReplaceAll(cue.Text, "\n", `\N`))
	}
}

// formatTimestamp renders ms as HH:MM:SS,mmm (or with "." for WebVTT)
func formatTimestamp(ms int64, sep byte) string {
	h, m, s, rest := splitMs(ms)
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, rest)
}

func formatASSTime(ms int64) string {
	h, m, s, rest := splitMs(ms)
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, rest/10)
}

func splitMs(ms int64) (h, m, s, rest int64) {
	if ms < 0 {
		ms = 0
	}
	return ms / 3600000, ms / 60000 % 60, ms / 1000 % 60, ms % 1000
}
