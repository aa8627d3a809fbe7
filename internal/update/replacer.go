package update

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/adamancini/autoupdater/internal/types"
)

// swapInto moves every immediate child of stagingDir into targetDir and
// returns the names it moved. Each name is processed exactly once, in
// directory order.
func swapInto(stagingDir, targetDir string, logger *zap.Logger) ([]string, error) {
	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		return nil, stepErr(types.StepSwap, stagingDir, fmt.Errorf("failed to list staging directory: %w", err))
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, stepErr(types.StepSwap, targetDir, fmt.Errorf("failed to create target directory: %w", err))
	}

	swapped := make([]string, 0, len(entries))
	for _, entry := range entries {
		src := filepath.Join(stagingDir, entry.Name())
		dst := filepath.Join(targetDir, entry.Name())

		if err := replaceEntry(src, dst, entry.IsDir()); err != nil {
			return swapped, stepErr(types.StepSwap, dst, err)
		}
		logger.Debug("replaced", zap.String("path", dst))
		swapped = append(swapped, entry.Name())
	}

	return swapped, nil
}

// replaceEntry renames src over dst. A directory at dst is removed first so
// its old contents are replaced rather than merged; a file at dst is
// overwritten by the rename itself unless src is a directory.
func replaceEntry(src, dst string, srcIsDir bool) error {
	if info, err := os.Lstat(dst); err == nil {
		switch {
		case info.IsDir():
			if err := os.RemoveAll(dst); err != nil {
				return fmt.Errorf("failed to remove existing directory: %w", err)
			}
		case srcIsDir:
			if err := os.Remove(dst); err != nil {
				return fmt.Errorf("failed to remove existing file: %w", err)
			}
		}
	}

	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move into place: %w", err)
	}
	return nil
}
