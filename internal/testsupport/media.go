package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"clipflow/internal/export"
	"clipflow/internal/transcript"
	"clipflow/internal/whisperx"
)

// WriteFile creates path (and its parents) holding size bytes of filler.
// A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	payload := make([]byte, size)
	for i := range payload {
		payload[i] = 0x42
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// FakeProber reports a fixed source duration.
type FakeProber struct {
	Seconds float64
	Err     error
}

// Duration implements workflow.Prober.
func (f *FakeProber) Duration(context.Context, string) (float64, error) {
	return f.Seconds, f.Err
}

// FakeMedia writes placeholder files instead of running ffmpeg and records
// the ranges of every render.
type FakeMedia struct {
	mu       sync.Mutex
	extracts int
	renders  [][]export.Range
}

// ExtractAudio implements workflow.MediaTool.
func (f *FakeMedia) ExtractAudio(_ context.Context, _ string, dest string) error {
	f.mu.Lock()
	f.extracts++
	f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte("RIFF"), 0o644)
}

// Concat implements workflow.MediaTool.
func (f *FakeMedia) Concat(_ context.Context, _ string, ranges []export.Range, dest string) error {
	f.mu.Lock()
	f.renders = append(f.renders, append([]export.Range(nil), ranges...))
	f.mu.Unlock()
	return os.WriteFile(dest, []byte("mp4"), 0o644)
}

// Extracts returns how many audio extractions ran.
func (f *FakeMedia) Extracts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.extracts
}

// Renders returns the ranges passed to each Concat call.
func (f *FakeMedia) Renders() [][]export.Range {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]export.Range(nil), f.renders...)
}

// FakeTranscriber returns a canned transcript. It reports progress 0.5 then
// 0.2 so callers can check that progress never moves backwards.
type FakeTranscriber struct {
	Transcript transcript.Transcript
	Err        error

	mu        sync.Mutex
	calls     int
	lastModel string
	lastLang  string
}

// Transcribe implements workflow.Transcriber.
func (f *FakeTranscriber) Transcribe(_ context.Context, _ string, _ string, model, language string, progress whisperx.ProgressFunc) (transcript.Transcript, error) {
	f.mu.Lock()
	f.calls++
	f.lastModel = model
	f.lastLang = language
	f.mu.Unlock()
	if f.Err != nil {
		return transcript.Transcript{}, f.Err
	}
	if progress != nil {
		progress(0.5)
		progress(0.2)
	}
	return f.Transcript, nil
}

// Calls returns how many transcriptions ran.
func (f *FakeTranscriber) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Last returns the model and language of the latest call.
func (f *FakeTranscriber) Last() (model, language string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastModel, f.lastLang
}

// TakeTranscript has one failed take closed by NG followed by a good take
// approved with OK. With default keywords and buffers (pre 0.5, post 0.3)
// backtrack slicing keeps [2.3, 5.3].
func TakeTranscript() transcript.Transcript {
	return transcript.Transcript{
		Language: "en",
		Segments: []transcript.Segment{
			{Text: "hello there", Start: 0, End: 2, Words: []transcript.Word{
				{Word: "hello", Start: 0, End: 1, Confidence: 0.9},
				{Word: "there", Start: 1, End: 2, Confidence: 0.9},
			}},
			{Text: "NG", Start: 2, End: 2.5, Words: []transcript.Word{
				{Word: "NG", Start: 2, End: 2.5, Confidence: 0.95},
			}},
			{Text: "good take", Start: 3, End: 5, Words: []transcript.Word{
				{Word: "good", Start: 3, End: 4, Confidence: 0.9},
				{Word: "take", Start: 4, End: 5, Confidence: 0.9},
			}},
			{Text: "OK", Start: 5.5, End: 6, Words: []transcript.Word{
				{Word: "OK", Start: 5.5, End: 6, Confidence: 0.99},
			}},
		},
	}
}
