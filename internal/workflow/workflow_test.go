package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"clipflow/internal/config"
	"clipflow/internal/export"
	"clipflow/internal/marker"
	"clipflow/internal/project"
	"clipflow/internal/services"
	"clipflow/internal/slicer"
	"clipflow/internal/testsupport"
	"clipflow/internal/workflow"
)

type harness struct {
	cfg         *config.Config
	store       *project.Store
	svc         *workflow.Service
	prober      *testsupport.FakeProber
	media       *testsupport.FakeMedia
	transcriber *testsupport.FakeTranscriber
	project     *project.Project
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	h := &harness{
		cfg:         cfg,
		store:       store,
		prober:      &testsupport.FakeProber{Seconds: 20},
		media:       &testsupport.FakeMedia{},
		transcriber: &testsupport.FakeTranscriber{Transcript: testsupport.TakeTranscript()},
	}
	h.svc = workflow.NewService(cfg, store, h.transcriber, nil,
		workflow.WithProber(h.prober),
		workflow.WithMediaTool(h.media),
	)
	p, err := h.svc.CreateProject(context.Background(), "Demo", nil)
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	h.project = p
	return h
}

func (h *harness) importSource(t *testing.T) {
	t.Helper()
	source := filepath.Join(testsupport.BaseDir(h.cfg), "take one.mp4")
	testsupport.WriteFile(t, source, 1024)
	p, err := h.svc.ImportSource(context.Background(), h.project.ID, source, workflow.ImportOptions{})
	if err != nil {
		t.Fatalf("ImportSource failed: %v", err)
	}
	h.project = p
}

func (h *harness) analyze(t *testing.T) *workflow.AnalysisResult {
	t.Helper()
	result, err := h.svc.Analyze(context.Background(), h.project.ID, nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	return result
}

func TestAnalyzeRunsPipeline(t *testing.T) {
	h := newHarness(t)
	h.importSource(t)

	var fractions []float64
	var stages []string
	result, err := h.svc.Analyze(context.Background(), h.project.ID, func(stage string, fraction float64) {
		stages = append(stages, stage)
		fractions = append(fractions, fraction)
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if !slices.IsSorted(fractions) {
		t.Fatalf("progress must be monotonic, got %v", fractions)
	}
	wantFractions := []float64{0.05, 0.10, 0.20, 0.45, 0.45, 0.75, 0.85, 1.0}
	if !slices.Equal(fractions, wantFractions) {
		t.Fatalf("unexpected progress %v, want %v", fractions, wantFractions)
	}
	if stages[0] != "probe" || stages[len(stages)-1] != "done" {
		t.Fatalf("unexpected stages %v", stages)
	}

	if model, lang := h.transcriber.Last(); model != h.cfg.WhisperX.Model || lang != h.cfg.WhisperX.Language {
		t.Fatalf("transcriber got model=%q language=%q", model, lang)
	}
	if h.media.Extracts() != 1 {
		t.Fatalf("expected one audio extraction, got %d", h.media.Extracts())
	}
	if len(result.Markers) != 2 || result.Markers[0].Type != marker.NG || result.Markers[1].Type != marker.OK {
		t.Fatalf("unexpected markers %#v", result.Markers)
	}
	if len(result.Segments) != 1 {
		t.Fatalf("expected one keep segment, got %#v", result.Segments)
	}
	seg := result.Segments[0]
	if seg.Start != 2.3 || seg.End != 5.3 || !seg.Enabled || seg.Kind != slicer.KindKeep {
		t.Fatalf("unexpected segment %#v", seg)
	}

	stored, err := h.store.Get(context.Background(), h.project.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Status != project.StatusAnalyzed || stored.Progress != 1 || stored.DurationSeconds != 20 {
		t.Fatalf("unexpected project state %#v", stored)
	}
	segments, _ := h.store.Segments(context.Background(), h.project.ID)
	if len(segments) != 1 || segments[0].ID != seg.ID {
		t.Fatalf("segments not persisted: %#v", segments)
	}
	if tr, _ := h.store.Transcript(context.Background(), h.project.ID); tr == nil || tr.WordCount() != 6 {
		t.Fatalf("transcript not persisted: %#v", tr)
	}
}

func TestAnalyzeFailureSetsErrorStatus(t *testing.T) {
	h := newHarness(t)
	h.importSource(t)
	h.prober.Err = services.Wrap(services.ErrExternalTool, "probe", "ffprobe", "boom", errors.New("exit 1"))

	_, err := h.svc.Analyze(context.Background(), h.project.ID, nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	stored, _ := h.store.Get(context.Background(), h.project.ID)
	if stored.Status != project.StatusError {
		t.Fatalf("expected error status, got %s", stored.Status)
	}
	if !strings.Contains(stored.ErrorMessage, "boom") {
		t.Fatalf("expected error message recorded, got %q", stored.ErrorMessage)
	}
	if h.transcriber.Calls() != 0 {
		t.Fatal("pipeline must stop at the failing step")
	}
}

func TestAnalyzeRequiresSource(t *testing.T) {
	h := newHarness(t)
	if _, err := h.svc.Analyze(context.Background(), h.project.ID, nil); !errors.Is(err, services.ErrPrecondition) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if _, err := h.svc.Analyze(context.Background(), "proj_missing", nil); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAnalyzeConflictsWithHeldLock(t *testing.T) {
	h := newHarness(t)
	h.importSource(t)

	dir := h.cfg.ProjectDir(h.project.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	held := flock.New(filepath.Join(dir, "analysis.lock"))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("failed to take lock: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() { _ = held.Unlock() })

	if _, err := h.svc.Analyze(context.Background(), h.project.ID, nil); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	// No transcript is stored yet; the lock is checked before it is read.
	if _, err := h.svc.Reslice(context.Background(), h.project.ID, nil); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected reslice conflict before reading stored state, got %v", err)
	}
	running, err := h.svc.AnalysisRunning(h.project.ID)
	if err != nil || !running {
		t.Fatalf("expected running=true, got %v err=%v", running, err)
	}
	if _, err := h.svc.ToggleSegment(context.Background(), h.project.ID, "seg_x"); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected edits refused during analysis, got %v", err)
	}
	if _, err := h.svc.UpdateSettings(context.Background(), h.project.ID, h.project.Settings); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected settings change refused during analysis, got %v", err)
	}
}

func TestStaleAnalyzingStatusIsRerun(t *testing.T) {
	h := newHarness(t)
	h.importSource(t)
	h.project.Status = project.StatusAnalyzing
	if err := h.store.Update(context.Background(), h.project); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	result := h.analyze(t)
	if result.Project.Status != project.StatusAnalyzed {
		t.Fatalf("expected analyzed, got %s", result.Project.Status)
	}
}

func TestResliceReusesTranscript(t *testing.T) {
	h := newHarness(t)
	h.importSource(t)
	ctx := context.Background()

	if _, err := h.svc.Reslice(ctx, h.project.ID, nil); !errors.Is(err, services.ErrPrecondition) {
		t.Fatalf("expected precondition before transcription, got %v", err)
	}
	h.analyze(t)

	settings := h.project.Settings
	settings.Mode = "interval"
	settings.OKKeywords = []string{"收"}
	settings.StartKeywords = []string{"good"}
	settings.EndKeywords = []string{"OK"}
	if _, err := h.svc.UpdateSettings(ctx, h.project.ID, settings); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	result, err := h.svc.Reslice(ctx, h.project.ID, nil)
	if err != nil {
		t.Fatalf("Reslice failed: %v", err)
	}
	if h.transcriber.Calls() != 1 {
		t.Fatalf("expected transcription to be reused, got %d calls", h.transcriber.Calls())
	}
	if len(result.Segments) != 1 {
		t.Fatalf("expected one interval segment, got %#v", result.Segments)
	}
	// START "good" ends at 4; 4 + 0.3 - 0.5 = 3.8. END "OK" starts at 5.5.
	if seg := result.Segments[0]; seg.Start != 3.8 || seg.End != 5.5 {
		t.Fatalf("unexpected interval segment %#v", seg)
	}

	bad := settings
	bad.Mode = "sideways"
	if _, err := h.svc.UpdateSettings(ctx, h.project.ID, bad); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSegmentEdits(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.svc.ToggleSegment(ctx, h.project.ID, "seg_x"); !errors.Is(err, services.ErrPrecondition) {
		t.Fatalf("expected precondition without segments, got %v", err)
	}

	h.importSource(t)
	segID := h.analyze(t).Segments[0].ID

	toggled, err := h.svc.ToggleSegment(ctx, h.project.ID, segID)
	if err != nil {
		t.Fatalf("ToggleSegment failed: %v", err)
	}
	if toggled.Enabled || !toggled.ManualAdjusted {
		t.Fatalf("unexpected toggled segment %#v", toggled)
	}

	start, end := 2.0, 5.0
	patched, err := h.svc.PatchSegment(ctx, h.project.ID, segID, &start, &end)
	if err != nil {
		t.Fatalf("PatchSegment failed: %v", err)
	}
	if patched.Start != 2 || patched.End != 5 || patched.Enabled {
		t.Fatalf("unexpected patched segment %#v", patched)
	}

	tooLong := 25.0
	if _, err := h.svc.PatchSegment(ctx, h.project.ID, segID, nil, &tooLong); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error past duration, got %v", err)
	}
	inverted := 6.0
	if _, err := h.svc.PatchSegment(ctx, h.project.ID, segID, &inverted, nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for inverted range, got %v", err)
	}
	if _, err := h.svc.PatchSegment(ctx, h.project.ID, segID, nil, nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty patch, got %v", err)
	}
	if _, err := h.svc.ToggleSegment(ctx, h.project.ID, "seg_missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	stored, _ := h.store.Segments(ctx, h.project.ID)
	if stored[0].Start != 2 || stored[0].End != 5 || stored[0].Enabled {
		t.Fatalf("edits not persisted: %#v", stored[0])
	}
}

func TestExports(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.svc.Export(ctx, h.project.ID, workflow.FormatEDL, ""); !errors.Is(err, services.ErrPrecondition) {
		t.Fatalf("expected precondition before analysis, got %v", err)
	}

	h.importSource(t)
	segID := h.analyze(t).Segments[0].ID

	edl, err := h.svc.Export(ctx, h.project.ID, workflow.FormatEDL, "")
	if err != nil {
		t.Fatalf("Export EDL failed: %v", err)
	}
	if edl.Path != filepath.Join(h.svc.ExportDir(h.project.ID), "Demo.edl") {
		t.Fatalf("unexpected EDL path %s", edl.Path)
	}
	data, err := os.ReadFile(edl.Path)
	if err != nil {
		t.Fatalf("read EDL: %v", err)
	}
	if !strings.HasPrefix(string(data), "TITLE: Demo_clipflow\n") {
		t.Fatalf("unexpected EDL header: %q", string(data))
	}
	if !strings.Contains(string(data), "* FROM CLIP NAME: take one.mp4") {
		t.Fatalf("expected source filename in EDL: %q", string(data))
	}

	srt, err := h.svc.Render(ctx, h.project.ID, workflow.FormatSRT)
	if err != nil {
		t.Fatalf("Render SRT failed: %v", err)
	}
	want := "1\n00:00:00,700 --> 00:00:02,700\ngood take\n"
	if srt != want {
		t.Fatalf("unexpected SRT:\n%q\nwant\n%q", srt, want)
	}

	out := filepath.Join(testsupport.BaseDir(h.cfg), "cut.mp4")
	video, err := h.svc.Export(ctx, h.project.ID, workflow.FormatVideo, out)
	if err != nil {
		t.Fatalf("Export video failed: %v", err)
	}
	renders := h.media.Renders()
	if video.Path != out || len(renders) != 1 {
		t.Fatalf("unexpected video export %#v renders=%v", video, renders)
	}
	if got := renders[0]; len(got) != 1 || got[0] != (export.Range{Start: 2.3, End: 5.3}) {
		t.Fatalf("unexpected ranges %v", got)
	}

	if _, err := h.svc.ToggleSegment(ctx, h.project.ID, segID); err != nil {
		t.Fatalf("ToggleSegment failed: %v", err)
	}
	for _, format := range workflow.Formats {
		target := filepath.Join(testsupport.BaseDir(h.cfg), "disabled"+format.Extension())
		if _, err := h.svc.Export(ctx, h.project.ID, format, target); !errors.Is(err, services.ErrPrecondition) {
			t.Fatalf("expected precondition exporting %s with no enabled segments, got %v", format, err)
		}
		if _, err := os.Stat(target); !os.IsNotExist(err) {
			t.Fatalf("expected no %s file written, stat err=%v", format, err)
		}
		if format == workflow.FormatVideo {
			continue
		}
		if _, err := h.svc.Render(ctx, h.project.ID, format); !errors.Is(err, services.ErrPrecondition) {
			t.Fatalf("expected precondition rendering %s with no enabled segments, got %v", format, err)
		}
	}
	if len(h.media.Renders()) != 1 {
		t.Fatalf("expected no further renders, got %v", h.media.Renders())
	}
	if _, err := h.svc.Render(ctx, h.project.ID, workflow.FormatVideo); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error rendering video, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := workflow.ParseFormat(" XML "); err != nil || f != workflow.FormatXML {
		t.Fatalf("unexpected parse result %q %v", f, err)
	}
	if _, err := workflow.ParseFormat("aaf"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if workflow.FormatVideo.Extension() != ".mp4" || workflow.FormatSRT.Extension() != ".srt" {
		t.Fatal("unexpected extensions")
	}
}

func TestImportSource(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	bad := filepath.Join(testsupport.BaseDir(h.cfg), "notes.txt")
	testsupport.WriteFile(t, bad, 10)
	if _, err := h.svc.ImportSource(ctx, h.project.ID, bad, workflow.ImportOptions{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	missing := filepath.Join(testsupport.BaseDir(h.cfg), "missing.mov")
	if _, err := h.svc.ImportSource(ctx, h.project.ID, missing, workflow.ImportOptions{}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	source := filepath.Join(testsupport.BaseDir(h.cfg), "CLIP.MOV")
	testsupport.WriteFile(t, source, 64)
	p, err := h.svc.ImportSource(ctx, h.project.ID, source, workflow.ImportOptions{Move: true})
	if err != nil {
		t.Fatalf("ImportSource failed: %v", err)
	}
	if p.Status != project.StatusUploaded || p.SourceFilename != "CLIP.MOV" {
		t.Fatalf("unexpected project %#v", p)
	}
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Fatalf("expected moved source to be gone, err=%v", err)
	}
	if _, err := os.Stat(p.SourcePath); err != nil {
		t.Fatalf("expected imported file, err=%v", err)
	}
}

func TestDeleteProject(t *testing.T) {
	h := newHarness(t)
	h.importSource(t)
	ctx := context.Background()

	if err := h.svc.DeleteProject(ctx, h.project.ID); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}
	if _, err := os.Stat(h.cfg.ProjectDir(h.project.ID)); !os.IsNotExist(err) {
		t.Fatalf("expected project dir removed, err=%v", err)
	}
	if err := h.svc.DeleteProject(ctx, h.project.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestIsVideoFile(t *testing.T) {
	for _, name := range []string{"a.mp4", "b.MOV", "c.mkv", "d.avi", "e.webm", "f.mts"} {
		if !workflow.IsVideoFile(name) {
			t.Fatalf("expected %s accepted", name)
		}
	}
	for _, name := range []string{"a.wav", "b", "c.mp4.part"} {
		if workflow.IsVideoFile(name) {
			t.Fatalf("expected %s rejected", name)
		}
	}
}

func TestIngestCreatesAndAnalyzesProject(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	source := filepath.Join(testsupport.BaseDir(h.cfg), "inbox", "Interview Take.mp4")
	testsupport.WriteFile(t, source, 256)
	result, err := h.svc.Ingest(ctx, source)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if result.Project.Name != "Interview Take" || result.Project.Status != project.StatusAnalyzed {
		t.Fatalf("unexpected project %#v", result.Project)
	}
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Fatalf("expected inbox file moved, err=%v", err)
	}

	notes := filepath.Join(testsupport.BaseDir(h.cfg), "inbox", "notes.txt")
	testsupport.WriteFile(t, notes, 1)
	if _, err := h.svc.Ingest(ctx, notes); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	missing := filepath.Join(testsupport.BaseDir(h.cfg), "inbox", "gone.mp4")
	if _, err := h.svc.Ingest(ctx, missing); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	projects, err := h.store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected harness project plus ingested project, got %d", len(projects))
	}
}
