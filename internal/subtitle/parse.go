package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// hours are optional in WebVTT; SRT uses "," before the millis, WebVTT "."
var timingRegex = regexp.MustCompile(
	`^\s*(?:(\d+):)?(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(?:(\d+):)?(\d{2}):(\d{2})[,.](\d{3})`,
)

// Open reads a cue file, picking the parser from its extension.
func Open(path string) ([]Cue, Format, error) {
	format, err := FormatFromExtension(path)
	if err != nil {
		return nil, "", err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	cues, err := Parse(file, format)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return cues, format, nil
}

// Parse reads cues in the given format. Cues are returned in file order.
func Parse(r io.Reader, format Format) ([]Cue, error) {
	switch format {
	case FormatSRT, FormatVTT:
		return parseBlocks(r, format)
	case FormatASS:
		return parseASS(r)
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %q", format)
	}
}

// parseBlocks reads SRT and WebVTT. Both are blank-line separated blocks of
// an optional identifier, a timing line and text lines.
func parseBlocks(r io.Reader, format Format) ([]Cue, error) {
	scanner := bufio.NewScanner(r)

	var (
		cues    []Cue
		current *Cue
		text    []string
		lineNum int
		// set while inside a WebVTT NOTE, STYLE or REGION block
		skipping bool
	)

	// a timing line with no text still makes a cue
	flush := func() {
		if current != nil {
			current.Text = strings.Join(text, "\n")
			cues = append(cues, *current)
		}
		current = nil
		text = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
			if format == FormatVTT {
				if !strings.HasPrefix(line, "WEBVTT") {
					return nil, fmt.Errorf("missing WEBVTT header")
				}
				continue
			}
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			skipping = false
			continue
		}
		if skipping {
			continue
		}
		if format == FormatVTT && current == nil && isVTTMetaBlock(trimmed) {
			skipping = true
			continue
		}

		if m := timingRegex.FindStringSubmatch(line); m != nil {
			flush()
			start, end := timestampMs(m[1:5]), timestampMs(m[5:9])
			if end <= start {
				return nil, fmt.Errorf(
					"invalid cue timing at line %d: end %d ms not after start %d ms",
					lineNum,
					end,
					start,
				)
			}
			current = &Cue{Start: start, End: end}
			continue
		}

		// identifiers sit before the timing line and are dropped
		if current != nil {
			text = append(text, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s file: %w", format, err)
	}
	return cues, nil
}

func isVTTMetaBlock(line string) bool {
	for _, prefix := range []string{"NOTE", "STYLE", "REGION"} {
		if line == prefix || strings.HasPrefix(line, prefix+" ") {
			return true
		}
	}
	return false
}

// timestampMs converts hours, minutes, seconds and millis captures. The
// regex guarantees digits; an empty hours capture counts as zero.
func timestampMs(parts []string) int64 {
	var ms int64
	for i, unit := range []int64{3600000, 60000, 1000, 1} {
		if parts[i] == "" {
			continue
		}
		n, _ := strconv.ParseInt(parts[i], 10, 64)
		ms += n * unit
	}
	return ms
}
