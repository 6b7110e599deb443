package workflow

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"clipflow/internal/services"
)

const lockFileName = "analysis.lock"

// projectLock is an advisory file lock guarding one project's analysis
// across processes.
type projectLock struct {
	lock *flock.Flock
}

func acquireProjectLock(projectDir, projectID string) (*projectLock, error) {
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure project dir: %w", err)
	}
	lock := flock.New(filepath.Join(projectDir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire analysis lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConflict, "analyze", "lock",
			fmt.Sprintf("project %s is already being analyzed", projectID), nil)
	}
	return &projectLock{lock: lock}, nil
}

func (l *projectLock) release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}

// AnalysisRunning reports whether another holder owns the project's analysis
// lock.
func (s *Service) AnalysisRunning(projectID string) (bool, error) {
	path := filepath.Join(s.projectDir(projectID), lockFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("probe analysis lock: %w", err)
	}
	if ok {
		_ = lock.Unlock()
		return false, nil
	}
	return true, nil
}
