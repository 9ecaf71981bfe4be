package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/mgpai22/subtitler/internal/editor"
	"github.com/mgpai22/subtitler/internal/subtitle"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
	hi    = color.New(color.FgHiYellow).SprintFunc()
)

// formatMs renders a timeline position as H:MM:SS.mmm
func formatMs(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	h := d / time.Hour
	m := d % time.Hour / time.Minute
	s := d % time.Minute / time.Second
	rest := d % time.Second / time.Millisecond
	return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, rest)
}

// firstLine shortens caption text for table cells.
func firstLine(text string, width int) string {
	line, _, more := strings.Cut(text, "\n")
	if len(line) > width {
		return line[:width-1] + "…"
	}
	if more {
		return line + " …"
	}
	return line
}

func newTable() *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	return tbl
}

// cueTable lists the clips of e ordered by start, marking the selection.
func cueTable(e *editor.Editor) *uitable.Table {
	tbl := newTable()
	tbl.AddRow(bold("#"), bold("Start"), bold("End"), bold("Length"), bold("Text"))

	sel := e.Selection()
	for i, it := range e.Items() {
		caption, _ := e.Caption(it.ID)
		index := fmt.Sprint(i + 1)
		if sel.Is(it.ID) {
			index = hi("*" + index)
		}
		tbl.AddRow(
			index,
			formatMs(it.Start),
			formatMs(it.End),
			(time.Duration(it.Duration()) * time.Millisecond).String(),
			firstLine(caption.Text, 50),
		)
	}
	return tbl
}

func parseFormat(name string) (subtitle.Format, error) {
	switch f := subtitle.Format(strings.ToLower(name)); f {
	case subtitle.FormatSRT, subtitle.FormatVTT, subtitle.FormatASS:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q: use srt, vtt, or ass", name)
}
