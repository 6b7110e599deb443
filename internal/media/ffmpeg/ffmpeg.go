package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"clipflow/internal/config"
	"clipflow/internal/export"
	"clipflow/internal/services"
)

// Encoder defaults match the [render] config section defaults.
const (
	DefaultBinary     = "ffmpeg"
	DefaultVideoCodec = "libx264"
	DefaultPreset     = "fast"
	DefaultAudioCodec = "aac"

	// SampleRate and Channels describe the extracted speech track.
	SampleRate = 16000
	Channels   = 1
)

// RenderOptions selects the encoders for the cut video.
type RenderOptions struct {
	VideoCodec string
	Preset     string
	AudioCodec string
}

// RenderOptionsFromConfig copies the [render] section.
func RenderOptionsFromConfig(cfg config.Render) RenderOptions {
	return RenderOptions{VideoCodec: cfg.VideoCodec, Preset: cfg.Preset, AudioCodec: cfg.AudioCodec}
}

func (o RenderOptions) withDefaults() RenderOptions {
	if strings.TrimSpace(o.VideoCodec) == "" {
		o.VideoCodec = DefaultVideoCodec
	}
	if strings.TrimSpace(o.Preset) == "" {
		o.Preset = DefaultPreset
	}
	if strings.TrimSpace(o.AudioCodec) == "" {
		o.AudioCodec = DefaultAudioCodec
	}
	return o
}

// Runner executes a command to completion.
type Runner func(ctx context.Context, name string, args ...string) error

// Tool wraps the ffmpeg binary.
type Tool struct {
	binary string
	render RenderOptions
	run    Runner
}

// New creates a Tool for binary with the given render settings.
func New(binary string, render RenderOptions) *Tool {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	return &Tool{binary: binary, render: render.withDefaults(), run: execRunner}
}

// WithCommandRunner sets a custom command runner (for testing).
func (t *Tool) WithCommandRunner(runner Runner) {
	if runner == nil {
		runner = execRunner
	}
	t.run = runner
}

// ExtractAudioArgs returns the arguments that convert source into 16 kHz
// mono 16-bit PCM WAV at dest.
func ExtractAudioArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-ac", fmt.Sprintf("%d", Channels),
		dest,
	}
}

// ExtractAudio writes the speech track of source to dest.
func (t *Tool) ExtractAudio(ctx context.Context, source, dest string) error {
	if _, err := os.Stat(source); err != nil {
		return services.Wrap(services.ErrPrecondition, "extract", "stat source", "source video is missing", err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("extract audio: ensure output dir: %w", err)
	}
	if err := t.run(ctx, t.binary, ExtractAudioArgs(source, dest)...); err != nil {
		return services.Wrap(services.ErrExternalTool, "extract", "ffmpeg", "audio extraction failed", err)
	}
	return nil
}

// FilterGraph builds the trim/atrim + concat graph for ranges. Each range
// becomes one video and one audio input of the concat filter, in order.
func FilterGraph(ranges []export.Range) string {
	var b strings.Builder
	for i, r := range ranges {
		fmt.Fprintf(&b, "[0:v]trim=start=%.3f:duration=%.3f,setpts=PTS-STARTPTS[v%d];", r.Start, r.Duration(), i)
		fmt.Fprintf(&b, "[0:a]atrim=start=%.3f:duration=%.3f,asetpts=PTS-STARTPTS[a%d];", r.Start, r.Duration(), i)
	}
	for i := range ranges {
		fmt.Fprintf(&b, "[v%d][a%d]", i, i)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=1:a=1[outv][outa]", len(ranges))
	return b.String()
}

// ConcatArgs returns the arguments that render ranges of source into dest.
func ConcatArgs(source string, ranges []export.Range, dest string, opts RenderOptions) []string {
	opts = opts.withDefaults()
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-filter_complex", FilterGraph(ranges),
		"-map", "[outv]",
		"-map", "[outa]",
		"-c:v", opts.VideoCodec,
		"-preset", opts.Preset,
		"-c:a", opts.AudioCodec,
		dest,
	}
}

// Concat renders the given source ranges, in order, into a single video.
func (t *Tool) Concat(ctx context.Context, source string, ranges []export.Range, dest string) error {
	if len(ranges) == 0 {
		return services.Wrap(services.ErrPrecondition, "render", "concat", "no keep segments to export", nil)
	}
	for i, r := range ranges {
		if r.Start < 0 || r.End <= r.Start {
			return services.Wrap(services.ErrValidation, "render", "concat",
				fmt.Sprintf("range %d is empty or inverted (%.3f-%.3f)", i, r.Start, r.End), nil)
		}
	}
	if _, err := os.Stat(source); err != nil {
		return services.Wrap(services.ErrPrecondition, "render", "stat source", "source video is missing", err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("render: ensure output dir: %w", err)
	}
	if err := t.run(ctx, t.binary, ConcatArgs(source, ranges, dest, t.render)...); err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "ffmpeg", "concatenation failed", err)
	}
	return nil
}

func execRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, tail(strings.TrimSpace(string(output)), 500))
	}
	return nil
}

func tail(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[len(value)-limit:]
}
