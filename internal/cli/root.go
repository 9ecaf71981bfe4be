package cli

import (
	"github.com/spf13/cobra"

	"github.com/mgpai22/subtitler/internal/config"
	"github.com/mgpai22/subtitler/internal/logging"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "subtitler",
	Short: "Caption timing editor for audio and video",
	Long: `Subtitler edits caption timing on a waveform timeline.

Clips are indexed into regions of equal overlap so drag gestures can create,
move and stretch them without re-indexing the whole timeline. It imports and
exports SRT, VTT and ASS and renders waveform images with ffmpeg.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		if verbose {
			logger = logging.NewLogger(true)
		} else {
			logger = logging.NewLoggerAt(logging.ParseLevel(cfg.LogLevel))
		}
		if cfg.File != "" {
			logger.Debugw("Using config file", "path", cfg.File)
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file (default ./.subtitler.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}
