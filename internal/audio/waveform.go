package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/sync/errgroup"

	ffmpegbin "github.com/mgpai22/subtitler/internal/ffmpeg"
)

// settings for waveform image rendering
type WaveformOptions struct {
	SegmentDuration time.Duration
	PixelsPerSecond int
	Height          int
	Color           string
	Background      string
	Concurrency     int
}

func DefaultWaveformOptions() WaveformOptions {
	return WaveformOptions{
		SegmentDuration: 5 * time.Minute,
		PixelsPerSecond: 50,
		Height:          70,
		Color:           "#b7cee0",
		Background:      "#00000000",
		Concurrency:     3,
	}
}

// one rendered waveform image
type Segment struct {
	Index int
	Start time.Duration
	End   time.Duration
	Width int
	Path  string
}

// WaveformResult carries the probed duration alongside the images so callers
// never have to ask for it separately.
type WaveformResult struct {
	Duration time.Duration
	Segments []Segment
}

// PlanSegments splits duration into consecutive segments of at most
// opts.SegmentDuration. The last segment may be shorter.
func PlanSegments(duration time.Duration, opts WaveformOptions) []Segment {
	if duration <= 0 || opts.SegmentDuration <= 0 {
		return nil
	}

	var segments []Segment
	for i := 0; ; i++ {
		start := time.Duration(i) * opts.SegmentDuration
		if start >= duration {
			break
		}
		end := min(start+opts.SegmentDuration, duration)
		segments = append(segments, Segment{
			Index: i,
			Start: start,
			End:   end,
			Width: int(float64(opts.PixelsPerSecond) * (end - start).Seconds()),
		})
	}
	return segments
}

// WaveformFilter builds the filter graph that draws a mono waveform of the
// given size over a transparent background, with a centre line.
func WaveformFilter(width, height int, color, background string) string {
	size := fmt.Sprintf("%dx%d", width, height)
	return "[0:a]aformat=channel_layouts=mono," +
		"compand=gain=-6," +
		"showwavespic=s=" + size + ":colors=" + color + ",setpts=0[fg];" +
		"color=s=" + size + ":color=" + background + "[bg];" +
		"[bg][fg]overlay=format=rgb," +
		"drawbox=x=(iw-w)/2:y=(ih-h)/2:w=iw:h=2:color=" + color
}

// RenderWaveform probes mediaPath and renders one PNG per segment into
// outDir, at most opts.Concurrency at a time. Segments are returned in
// timeline order.
func RenderWaveform(
	ctx context.Context,
	mediaPath, outDir string,
	opts WaveformOptions,
) (*WaveformResult, error) {
	if opts.SegmentDuration <= 0 {
		return nil, fmt.Errorf(
			"segment duration must be positive, got %v",
			opts.SegmentDuration,
		)
	}
	if opts.PixelsPerSecond <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf(
			"invalid waveform size %d px/s x %d px",
			opts.PixelsPerSecond,
			opts.Height,
		)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	duration, err := Probe(ctx, mediaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get media duration: %w", err)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	segments := PlanSegments(duration, opts)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i := range segments {
		seg := &segments[i]
		seg.Path = filepath.Join(outDir, fmt.Sprintf("waveform_%03d.png", seg.Index))
		g.Go(func() error {
			args := segmentArgs(mediaPath, *seg, opts)
			if _, err := run(ctx, ffmpegPath, args...); err != nil {
				return fmt.Errorf("failed to render segment %d: %w", seg.Index, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &WaveformResult{Duration: duration, Segments: segments}, nil
}

func segmentArgs(mediaPath string, seg Segment, opts WaveformOptions) []string {
	return ffmpeg.Input(mediaPath, ffmpeg.KwArgs{
		"ss": formatSeconds(seg.Start),
		"to": formatSeconds(seg.End),
	}).
		Output(seg.Path, ffmpeg.KwArgs{
			"filter_complex": WaveformFilter(seg.Width, opts.Height, opts.Color, opts.Background),
			"frames:v":       1,
		}).
		OverWriteOutput().
		GetArgs()
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

func command(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}
