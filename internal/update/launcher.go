package update

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/adamancini/autoupdater/internal/types"
)

// Relauncher starts the updated application as a detached process.
type Relauncher struct {
	logger *zap.Logger
}

// NewRelauncher creates a relauncher.
func NewRelauncher(logger *zap.Logger) *Relauncher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relauncher{logger: logger}
}

// Resolve canonicalizes path into an absolute, symlink-free form. It fails
// if the path does not exist.
func Resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// Launch resolves spec.Path and starts it detached from the updater, passing
// spec.Args through unchanged. The returned pid belongs to a process the
// updater neither waits for nor reaps.
func (r *Relauncher) Launch(spec RelaunchSpec) (int, error) {
	path, err := Resolve(spec.Path)
	if err != nil {
		return 0, stepErr(types.StepRelaunch, spec.Path, fmt.Errorf("failed to resolve executable: %w", err))
	}

	cmd := exec.Command(path, spec.Args...)
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return 0, stepErr(types.StepRelaunch, path, fmt.Errorf("failed to start: %w", err))
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		r.logger.Warn("failed to release process handle", zap.Int("pid", pid), zap.Error(err))
	}

	r.logger.Info("relaunched",
		zap.String("executable", path),
		zap.Strings("args", spec.Args),
		zap.Int("pid", pid),
	)
	return pid, nil
}
