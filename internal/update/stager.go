package update

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/adamancini/autoupdater/internal/types"
)

// DefaultStagingDir is the staging directory used when none is configured,
// relative to the working directory.
const DefaultStagingDir = "tmp"

// StagingCoordinator unpacks archives into a staging directory and then
// moves the staged top-level entries over the target directory.
type StagingCoordinator struct {
	logger     *zap.Logger
	stagingDir string
	targetDir  string
}

// NewStagingCoordinator creates a coordinator staging into stagingDir. The
// target directory defaults to the staging directory's parent.
func NewStagingCoordinator(stagingDir string, logger *zap.Logger) *StagingCoordinator {
	if stagingDir == "" {
		stagingDir = DefaultStagingDir
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StagingCoordinator{
		logger:     logger,
		stagingDir: stagingDir,
		targetDir:  filepath.Dir(filepath.Clean(stagingDir)),
	}
}

// WithTargetDir overrides where staged entries are moved to.
func (c *StagingCoordinator) WithTargetDir(dir string) *StagingCoordinator {
	if dir != "" {
		c.targetDir = dir
	}
	return c
}

// StagingDir returns the staging directory path.
func (c *StagingCoordinator) StagingDir() string { return c.stagingDir }

// TargetDir returns the directory staged entries are moved into.
func (c *StagingCoordinator) TargetDir() string { return c.targetDir }

// Apply runs the staging protocol:
//  1. remove any stale staging directory and create it fresh
//  2. extract every archive that exists, in order
//  3. move each top-level staged entry into the target directory
//  4. delete the input archives
//  5. delete the now-empty staging directory
//
// Any error aborts immediately and leaves the filesystem as it is. A failed
// extraction never touches the target directory.
func (c *StagingCoordinator) Apply(ctx context.Context, archives []ArchiveRef) (*StageResult, error) {
	result := &StageResult{}

	// 1. Fresh staging directory
	if err := os.RemoveAll(c.stagingDir); err != nil {
		return result, stepErr(types.StepExtract, c.stagingDir, fmt.Errorf("failed to clear staging directory: %w", err))
	}
	if err := os.MkdirAll(c.stagingDir, 0o755); err != nil {
		return result, stepErr(types.StepExtract, c.stagingDir, fmt.Errorf("failed to create staging directory: %w", err))
	}

	// 2. Extract
	present := make([]ArchiveRef, 0, len(archives))
	for _, ref := range archives {
		if err := ctx.Err(); err != nil {
			return result, stepErr(types.StepExtract, ref.Path, err)
		}
		if _, err := os.Stat(ref.Path); errors.Is(err, fs.ErrNotExist) {
			c.logger.Info("archive not found, skipping", zap.String("archive", ref.Path))
			result.Skipped = append(result.Skipped, ref.Path)
			continue
		}

		c.logger.Info("extracting", zap.String("archive", ref.Path), zap.Stringer("kind", ref.Kind))
		if err := Extract(ref, c.stagingDir); err != nil {
			return result, stepErr(types.StepExtract, ref.Path, err)
		}
		present = append(present, ref)
		result.Extracted = append(result.Extracted, ref.Path)
	}

	// 3. Swap
	swapped, err := swapInto(c.stagingDir, c.targetDir, c.logger)
	result.Swapped = swapped
	if err != nil {
		return result, err
	}

	// 4. Remove archives
	for _, ref := range present {
		if err := os.Remove(ref.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return result, stepErr(types.StepCleanup, ref.Path, fmt.Errorf("failed to remove archive: %w", err))
		}
	}

	// 5. Remove staging
	if err := os.Remove(c.stagingDir); err != nil {
		return result, stepErr(types.StepCleanup, c.stagingDir, fmt.Errorf("failed to remove staging directory: %w", err))
	}

	c.logger.Debug("staging complete",
		zap.Int("extracted", len(result.Extracted)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("swapped", len(result.Swapped)),
	)
	return result, nil
}
