package whisperx

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"clipflow/internal/services"
	"clipflow/internal/transcript"
)

// CommandRunner executes a command, passing every output line to onLine.
type CommandRunner func(ctx context.Context, name string, args []string, onLine func(string)) error

// ProgressFunc receives transcription progress in [0,1].
type ProgressFunc func(fraction float64)

// Model runs WhisperX with one model size.
type Model struct {
	size   string
	cfg    Config
	run    CommandRunner
	logger *slog.Logger

	loadMu sync.Mutex
	loaded bool
}

// Size returns the model size, e.g. "base".
func (m *Model) Size() string {
	return m.size
}

// Loaded reports whether the model has completed at least one run.
func (m *Model) Loaded() bool {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()
	return m.loaded
}

// Args constructs the launcher arguments for transcribing audio into outputDir.
func (m *Model) Args(audio, outputDir, language string) []string {
	args := make([]string, 0, 32)

	if m.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		audio,
		"--model", m.size,
		"--batch_size", BatchSize,
		"--chunk_size", ChunkSize,
		"--beam_size", BeamSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--segment_resolution", SegmentResolution,
		"--print_progress", "True",
	)

	args = append(args, "--vad_method", m.cfg.VADMethod)
	if m.cfg.VADMethod == VADMethodPyannote && m.cfg.HFToken != "" {
		args = append(args, "--hf_token", m.cfg.HFToken)
	}

	if lang := normalizeLanguage(language, m.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}

	device := CPUDevice
	if m.cfg.CUDAEnabled {
		device = CUDADevice
	}
	args = append(args, "--device", device, "--compute_type", m.cfg.ComputeType)
	return args
}

// Transcribe recognizes speech in audio (a 16 kHz mono WAV) and returns the
// normalized transcript. WhisperX output files are written to outputDir.
func (m *Model) Transcribe(ctx context.Context, audio, outputDir, language string, progress ProgressFunc) (transcript.Transcript, error) {
	if strings.TrimSpace(audio) == "" {
		return transcript.Transcript{}, services.Wrap(services.ErrValidation, "transcribe", "whisperx", "audio path required", nil)
	}
	if _, err := os.Stat(audio); err != nil {
		return transcript.Transcript{}, services.Wrap(services.ErrPrecondition, "transcribe", "stat audio", "audio file is missing", err)
	}
	if outputDir == "" {
		outputDir = filepath.Dir(audio)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return transcript.Transcript{}, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	m.loadMu.Lock()
	first := !m.loaded
	if !first {
		m.loadMu.Unlock()
	} else {
		m.logger.Info("loading whisperx model", "first_run", true)
	}

	report := func(fraction float64) {
		if progress != nil {
			progress(clamp01(fraction))
		}
	}
	report(0)
	err := m.run(ctx, m.cfg.Launcher, m.Args(audio, outputDir, language), func(line string) {
		if fraction, ok := ParseProgressLine(line); ok {
			report(fraction)
		}
	})
	if first {
		if err == nil {
			m.loaded = true
		}
		m.loadMu.Unlock()
	}
	if err != nil {
		return transcript.Transcript{}, services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "recognition failed", err)
	}

	jsonPath := OutputPath(audio, outputDir)
	tr, err := LoadTranscript(jsonPath)
	if err != nil {
		return transcript.Transcript{}, services.Wrap(services.ErrExternalTool, "transcribe", "load output", jsonPath, err)
	}
	if tr.Language == "" {
		tr.Language = normalizeLanguage(language, m.cfg.Language)
	}
	report(1)
	m.logger.Info("transcription complete",
		"segments", len(tr.Segments),
		"words", tr.WordCount(),
		"language", tr.Language,
	)
	return tr, nil
}

// OutputPath returns where WhisperX writes the JSON result for audio.
func OutputPath(audio, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(audio), filepath.Ext(audio))
	return filepath.Join(outputDir, base+".json")
}

var progressPattern = regexp.MustCompile(`(?i)progress:\s*([0-9]+(?:\.[0-9]+)?)\s*%`)

// ParseProgressLine extracts a fraction from a "Progress: 42.00%..." line.
func ParseProgressLine(line string) (float64, bool) {
	match := progressPattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	pct, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return clamp01(pct / 100), true
}

func normalizeLanguage(language, fallback string) string {
	lang := strings.ToLower(strings.TrimSpace(language))
	if lang == "" {
		lang = strings.ToLower(strings.TrimSpace(fallback))
	}
	if lang == "auto" {
		return ""
	}
	return lang
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func execRunner(ctx context.Context, name string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	var (
		tailMu sync.Mutex
		tail   []string
		done   = make(chan struct{})
	)
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			tailMu.Lock()
			tail = append(tail, line)
			if len(tail) > 20 {
				tail = tail[1:]
			}
			tailMu.Unlock()
			if onLine != nil {
				onLine(line)
			}
		}
		_, _ = io.Copy(io.Discard, pr)
	}()

	err := cmd.Run()
	_ = pw.Close()
	<-done
	if err != nil {
		tailMu.Lock()
		defer tailMu.Unlock()
		return fmt.Errorf("%s: %w: %s", name, err, strings.Join(tail, "\n"))
	}
	return nil
}
