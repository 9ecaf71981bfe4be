package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subtitler/internal/editor"
	"github.com/mgpai22/subtitler/internal/subtitle"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Replay a scripted editing session",
	Long: `Replay a YAML script of pointer, playback and caption events through the
editor against a headless media clock, then export the resulting cues.

A script looks like:

  duration: 2m
  looping: true
  width: 1000
  events:
    - {op: down, pos: 10s}
    - {op: move, pos: 12s}
    - {op: advance, by: 500ms}
    - {op: up, pos: 12s}
    - {op: text, text: "Hello"}

Examples:
  subtitler edit --script session.yaml -o out.srt
  subtitler edit --cues in.vtt --script session.yaml -o out.ass
  subtitler edit --cues in.srt --script session.yaml --format vtt`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().
		StringP("script", "s", "", "Session script (YAML)")
	editCmd.Flags().
		String("cues", "", "Cue file to load before the session")
	editCmd.Flags().
		DurationP("duration", "d", 0, "Media duration (overrides the script)")
	editCmd.Flags().
		StringP("format", "f", "srt", "Format when writing to stdout (srt, vtt, ass)")
	_ = editCmd.MarkFlagRequired("script")
}

func runEdit(cmd *cobra.Command, args []string) error {
	scriptPath, _ := cmd.Flags().GetString("script")
	cuePath, _ := cmd.Flags().GetString("cues")
	duration, _ := cmd.Flags().GetDuration("duration")
	formatStr, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	script, err := LoadScript(scriptPath)
	if err != nil {
		return err
	}
	if duration <= 0 {
		duration = script.Duration
	}

	var cues []subtitle.Cue
	if cuePath != "" {
		cues, _, err = subtitle.Open(cuePath)
		if err != nil {
			return err
		}
		if duration <= 0 {
			duration = lastCueEnd(cues)
		}
	}
	if duration <= 0 {
		return fmt.Errorf("media duration is required: use --duration or set duration in the script")
	}

	media := editor.NewFakeMedia(duration)
	e, err := editor.New(media, cfg.Editor(logger))
	if err != nil {
		return fmt.Errorf("failed to start editor: %w", err)
	}
	if len(cues) > 0 {
		e.Load(cues)
	}

	logger.Infow("Replaying session",
		"script", scriptPath,
		"events", len(script.Events),
		"clips", len(e.Items()),
		"duration", duration.String(),
	)

	session := NewSession(e, media, script, logger)
	if err := session.Run(script.Events); err != nil {
		return err
	}

	result := e.Cues()
	if outputPath == "" {
		format, err := parseFormat(formatStr)
		if err != nil {
			return err
		}
		return subtitle.Write(os.Stdout, format, result)
	}

	if err := subtitle.WriteFile(outputPath, result); err != nil {
		return fmt.Errorf("failed to write cues: %w", err)
	}

	_, _ = fmt.Fprintln(color.Output, cueTable(e))
	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("\nCues written: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", len(result))
	return nil
}
