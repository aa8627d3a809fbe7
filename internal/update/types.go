package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adamancini/autoupdater/internal/types"
)

// Plan describes one update run
type Plan struct {
	PID         int           // Process to wait for; 0 means none
	Archives    []ArchiveRef  // Archives to apply, in order
	StagingDir  string        // Transient extraction root
	TargetDir   string        // Where staged entries land; defaults to the parent of StagingDir
	Executable  string        // Program to relaunch; empty skips relaunch
	Args        []string      // Arguments forwarded verbatim to Executable
	WaitTimeout time.Duration // Upper bound on the pid wait; 0 waits forever
}

// RelaunchSpec is a resolved executable plus its forwarded arguments
type RelaunchSpec struct {
	Path string
	Args []string
}

// StageResult describes what the staging coordinator did
type StageResult struct {
	Extracted []string `json:"extracted" yaml:"extracted"` // Archives unpacked into staging
	Skipped   []string `json:"skipped" yaml:"skipped"`     // Archives missing on disk
	Swapped   []string `json:"swapped" yaml:"swapped"`     // Top-level entries moved into place
}

// Report summarizes a run for the output writer
type Report struct {
	WaitedPID     int          `json:"waited_pid,omitempty" yaml:"waited_pid,omitempty"`
	Stage         *StageResult `json:"stage,omitempty" yaml:"stage,omitempty"`
	Relaunched    string       `json:"relaunched,omitempty" yaml:"relaunched,omitempty"`
	RelaunchedPID int          `json:"relaunched_pid,omitempty" yaml:"relaunched_pid,omitempty"`
	FailedStep    types.Step   `json:"failed_step,omitempty" yaml:"failed_step,omitempty"`
	Elapsed       string       `json:"elapsed" yaml:"elapsed"`
}

// String renders the report for text output.
func (r *Report) String() string {
	var b strings.Builder
	if r.WaitedPID != 0 {
		fmt.Fprintf(&b, "waited for pid %d\n", r.WaitedPID)
	}
	if r.Stage != nil {
		for _, a := range r.Stage.Extracted {
			fmt.Fprintf(&b, "extracted %s\n", a)
		}
		for _, a := range r.Stage.Skipped {
			fmt.Fprintf(&b, "skipped %s (not found)\n", a)
		}
		fmt.Fprintf(&b, "replaced %d entries\n", len(r.Stage.Swapped))
	}
	if r.Relaunched != "" {
		fmt.Fprintf(&b, "relaunched %s (pid %d)\n", r.Relaunched, r.RelaunchedPID)
	}
	if r.FailedStep != "" {
		fmt.Fprintf(&b, "failed during %s\n", r.FailedStep)
	}
	fmt.Fprintf(&b, "elapsed %s", r.Elapsed)
	return b.String()
}

// Waiter blocks until a process has exited
type Waiter interface {
	Wait(ctx context.Context, pid int) error
}

// Extractor unpacks one archive into a directory
type Extractor interface {
	Extract(ref ArchiveRef, dst string) error
}

// Stager stages archives and swaps them into the target directory
type Stager interface {
	Apply(ctx context.Context, archives []ArchiveRef) (*StageResult, error)
}

// Launcher starts the updated application detached from the updater
type Launcher interface {
	Launch(spec RelaunchSpec) (int, error)
}
