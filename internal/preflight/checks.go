package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	"clipflow/internal/config"
	"clipflow/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries for the given config. Both
// RunAll and the deps command use it so the requirement list lives in one
// place.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg))
}

// CheckCUDA reports whether the NVIDIA driver tooling is on PATH when GPU
// transcription is enabled.
func CheckCUDA() Result {
	const name = "CUDA"
	if _, err := exec.LookPath("nvidia-smi"); err != nil {
		return Result{Name: name, Detail: "nvidia-smi not found; set whisperx.cuda_enabled = false for CPU transcription"}
	}
	return Result{Name: name, Passed: true, Detail: "nvidia-smi available"}
}
