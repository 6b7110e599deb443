package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

const partialSuffix = ".partial"

// CopyVerified streams src to dst with SHA256 + size verification. The data
// is written to dst+".partial" and renamed into place only after it checks
// out, so readers never observe a half-written dst.
func CopyVerified(src, dst string) (int64, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	if srcInfo.IsDir() {
		return 0, fmt.Errorf("copy %s: source is a directory", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	tmp := dst + partialSuffix
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	cleanup := func() {
		_ = out.Close()
		_ = os.Remove(tmp)
	}

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		cleanup()
		return 0, err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return 0, err
	}
	if written != srcInfo.Size() {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("finalize copy: %w", err)
	}
	return written, nil
}

// Move renames src to dst, falling back to a verified copy plus removal when
// the two paths live on different filesystems.
func Move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if _, err := CopyVerified(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}
