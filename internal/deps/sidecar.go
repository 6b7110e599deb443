package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveFFprobe returns the ffprobe binary to run. Static ffmpeg builds ship
// ffprobe in the same directory, so an executable ffprobe next to the
// resolved ffmpeg wins over the configured fallback.
func ResolveFFprobe(ffmpegCommand, fallback string) string {
	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		fallback = "ffprobe"
	}
	ffmpegCommand = strings.TrimSpace(ffmpegCommand)
	if ffmpegCommand == "" {
		return fallback
	}
	resolved, err := exec.LookPath(ffmpegCommand)
	if err != nil {
		return fallback
	}
	candidate := filepath.Join(filepath.Dir(resolved), executableName("ffprobe"))
	if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
		return candidate
	}
	return fallback
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
