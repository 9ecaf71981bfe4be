package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var (
	assTimeRegex     = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})\.(\d{2})$`)
	assOverrideRegex = regexp.MustCompile(`\{[^}]*\}`)
)

// default [Events] columns, used when a file has no Format line
var assDefaultColumns = []string{
	"layer", "start", "end", "style", "name",
	"marginl", "marginr", "marginv", "effect", "text",
}

// parseASS reads the Dialogue lines of an ASS/SSA script. Styling and
// override tags are dropped; only timing and plain text are kept.
func parseASS(r io.Reader) ([]Cue, error) {
	scanner := bufio.NewScanner(r)

	var (
		cues     []Cue
		columns  = assDefaultColumns
		inEvents bool
		lineNum  int
	)

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			inEvents = strings.EqualFold(trimmed, "[events]")
			continue
		}
		if !inEvents {
			continue
		}

		key, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "format":
			columns = nil
			for _, col := range strings.Split(value, ",") {
				columns = append(columns, strings.ToLower(strings.TrimSpace(col)))
			}
		case "dialogue":
			cue, err := parseASSDialogue(value, columns)
			if err != nil {
				return nil, fmt.Errorf("invalid dialogue at line %d: %w", lineNum, err)
			}
			cues = append(cues, cue)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASS file: %w", err)
	}
	return cues, nil
}

func parseASSDialogue(value string, columns []string) (Cue, error) {
	// text is always last and may itself contain commas
	fields := strings.SplitN(strings.TrimSpace(value), ",", len(columns))
	if len(fields) != len(columns) {
		return Cue{}, fmt.Errorf("expected %d fields, got %d", len(columns), len(fields))
	}

	var cue Cue
	for i, col := range columns {
		field := strings.TrimSpace(fields[i])
		var err error
		switch col {
		case "start":
			cue.Start, err = parseASSTime(field)
		case "end":
			cue.End, err = parseASSTime(field)
		case "text":
			cue.Text = assPlainText(fields[i])
		}
		if err != nil {
			return Cue{}, err
		}
	}

	if cue.End <= cue.Start {
		return Cue{}, fmt.Errorf("end %d ms not after start %d ms", cue.End, cue.Start)
	}
	return cue, nil
}

func parseASSTime(s string) (int64, error) {
	m := assTimeRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	h, _ := strconv.ParseInt(m[1], 10, 64)
	mins, _ := strconv.ParseInt(m[2], 10, 64)
	sec, _ := strconv.ParseInt(m[3], 10, 64)
	cs, _ := strconv.ParseInt(m[4], 10, 64)
	return h*3600000 + mins*60000 + sec*1000 + cs*10, nil
}

func assPlainText(text string) string {
	text = assOverrideRegex.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, `\N`, "\n")
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = strings.ReplaceAll(text, `\h`, " ")
	return text
}
