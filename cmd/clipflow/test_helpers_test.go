package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipflow/internal/config"
	"clipflow/internal/testsupport"
	"clipflow/internal/workflow"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	media      *testsupport.FakeMedia
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("HF_TOKEN", "")

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	configPath := filepath.Join(homeDir, ".config", "clipflow", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	env := &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		media:      &testsupport.FakeMedia{},
	}
	serviceHooks = func(*config.Config) (workflow.Transcriber, []workflow.Option) {
		return &testsupport.FakeTranscriber{Transcript: testsupport.TakeTranscript()}, []workflow.Option{
			workflow.WithProber(&testsupport.FakeProber{Seconds: 20}),
			workflow.WithMediaTool(env.media),
		}
	}
	t.Cleanup(func() { serviceHooks = nil })
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\n\n[logging]\nlevel = \"debug\"\n",
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
