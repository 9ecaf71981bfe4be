package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subtitler/internal/editor"
	"github.com/mgpai22/subtitler/internal/subtitle"
)

var regionsCmd = &cobra.Command{
	Use:   "regions [cue_file]",
	Short: "Show the overlap regions of a cue file",
	Long: `Import a cue file onto a timeline of the given duration and print the region
partition: each row is a stretch of time over which the same clips are active.

Examples:
  subtitler regions captions.srt --duration 10m
  subtitler regions captions.vtt -d 90s --empty=false`,
	Args: cobra.ExactArgs(1),
	RunE: runRegions,
}

func init() {
	rootCmd.AddCommand(regionsCmd)

	regionsCmd.Flags().
		DurationP("duration", "d", 0, "Media duration (defaults to the last cue end)")
	regionsCmd.Flags().
		Bool("empty", true, "Include regions without clips")
	regionsCmd.Flags().
		Bool("clips", false, "Also list the imported clips")
}

func runRegions(cmd *cobra.Command, args []string) error {
	cuePath := args[0]
	duration, _ := cmd.Flags().GetDuration("duration")
	showEmpty, _ := cmd.Flags().GetBool("empty")
	showClips, _ := cmd.Flags().GetBool("clips")

	cues, format, err := subtitle.Open(cuePath)
	if err != nil {
		return err
	}
	if duration <= 0 {
		duration = lastCueEnd(cues)
	}

	e, err := editor.New(editor.NewFakeMedia(duration), cfg.Editor(logger))
	if err != nil {
		return fmt.Errorf("failed to start editor: %w", err)
	}
	loaded := e.Load(cues)

	logger.Infow("Cues imported",
		"input", cuePath,
		"format", format,
		"cues", len(cues),
		"indexed", loaded,
		"duration", duration.String(),
	)

	p := e.Partition()
	tbl := newTable()
	tbl.AddRow(bold("Region"), bold("Start"), bold("End"), bold("Depth"), bold("Captions"))
	for i, r := range p.Regions {
		if len(r.ItemIDs) == 0 && !showEmpty {
			continue
		}
		texts := make([]string, 0, len(r.ItemIDs))
		for _, id := range r.ItemIDs {
			caption, _ := e.Caption(id)
			texts = append(texts, firstLine(caption.Text, 24))
		}
		row := []interface{}{
			i,
			formatMs(r.Start),
			formatMs(p.RegionEnd(i)),
			len(r.ItemIDs),
			strings.Join(texts, " | "),
		}
		if len(r.ItemIDs) == 0 {
			for j := range row {
				row[j] = faint(row[j])
			}
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(color.Output, tbl)

	if showClips {
		_, _ = fmt.Fprintln(color.Output)
		_, _ = fmt.Fprintln(color.Output, cueTable(e))
	}

	_, _ = fmt.Fprintf(color.Output, "\n%d clips, %d regions, max overlap %d\n",
		loaded, p.Len(), p.Depth())
	return nil
}

func lastCueEnd(cues []subtitle.Cue) time.Duration {
	var end int64
	for _, c := range cues {
		end = max(end, c.End)
	}
	return time.Duration(end) * time.Millisecond
}
