package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subtitler/internal/audio"
)

var waveformCmd = &cobra.Command{
	Use:   "waveform [media_file]",
	Short: "Render waveform images for an audio or video file",
	Long: `Probe the media duration and render the waveform as a series of PNG
segments, one per segment duration, for display under the caption timeline.

Examples:
  subtitler waveform talk.mp3
  subtitler waveform movie.mkv --out-dir waves --segment 2m --height 90`,
	Args: cobra.ExactArgs(1),
	RunE: runWaveform,
}

func init() {
	rootCmd.AddCommand(waveformCmd)

	waveformCmd.Flags().
		String("out-dir", "", "Output directory (default <media>_waveform)")
	waveformCmd.Flags().
		Duration("segment", 0, "Segment duration (default from config, 5m)")
	waveformCmd.Flags().
		Int("pps", 0, "Pixels per second (default from config, 50)")
	waveformCmd.Flags().
		Int("height", 0, "Image height in pixels (default from config, 70)")
	waveformCmd.Flags().
		Int("concurrency", 0, "Number of parallel render workers (default from config, 3)")
}

func runWaveform(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := context.Background()

	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", mediaPath)
	}
	if !audio.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(mediaPath))
	}

	outDir, _ := cmd.Flags().GetString("out-dir")
	if outDir == "" {
		outDir = strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath)) + "_waveform"
	}

	opts := cfg.Waveform()
	if v, _ := cmd.Flags().GetDuration("segment"); v > 0 {
		opts.SegmentDuration = v
	}
	if v, _ := cmd.Flags().GetInt("pps"); v > 0 {
		opts.PixelsPerSecond = v
	}
	if v, _ := cmd.Flags().GetInt("height"); v > 0 {
		opts.Height = v
	}
	if v, _ := cmd.Flags().GetInt("concurrency"); v > 0 {
		opts.Concurrency = v
	}

	logger.Infow("Rendering waveform",
		"input", mediaPath,
		"out_dir", outDir,
		"segment", opts.SegmentDuration.String(),
		"pixels_per_second", opts.PixelsPerSecond,
		"concurrency", opts.Concurrency,
	)

	result, err := audio.RenderWaveform(ctx, mediaPath, outDir, opts)
	if err != nil {
		return err
	}

	tbl := newTable()
	tbl.AddRow(bold("#"), bold("Start"), bold("End"), bold("Width"), bold("File"))
	for _, seg := range result.Segments {
		tbl.AddRow(
			seg.Index,
			formatMs(seg.Start.Milliseconds()),
			formatMs(seg.End.Milliseconds()),
			fmt.Sprintf("%dpx", seg.Width),
			filepath.Base(seg.Path),
		)
	}
	_, _ = fmt.Fprintln(color.Output, tbl)

	absDir, _ := filepath.Abs(outDir)
	fmt.Printf("\nWaveform rendered: %s\n", absDir)
	fmt.Printf("  Segments: %d\n", len(result.Segments))
	fmt.Printf("  Duration: %s\n", result.Duration.String())
	return nil
}
