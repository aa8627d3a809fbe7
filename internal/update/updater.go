package update

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Updater runs the update protocol: wait for the parent, stage and swap the
// archives, relaunch. Steps with no input are skipped; the first error ends
// the run.
type Updater struct {
	logger   *zap.Logger
	waiter   Waiter
	stager   func(plan Plan) Stager
	launcher Launcher
}

// New creates an Updater wired to the real process waiter, staging
// coordinator and relauncher.
func New(logger *zap.Logger) *Updater {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Updater{
		logger: logger,
		waiter: NewProcessWaiter(logger),
		stager: func(plan Plan) Stager {
			return NewStagingCoordinator(plan.StagingDir, logger).WithTargetDir(plan.TargetDir)
		},
		launcher: NewRelauncher(logger),
	}
}

// WithWaiter replaces the process waiter.
func (u *Updater) WithWaiter(w Waiter) *Updater {
	u.waiter = w
	return u
}

// WithStager replaces the staging coordinator for every plan.
func (u *Updater) WithStager(s Stager) *Updater {
	u.stager = func(Plan) Stager { return s }
	return u
}

// WithLauncher replaces the relauncher.
func (u *Updater) WithLauncher(l Launcher) *Updater {
	u.launcher = l
	return u
}

// Run executes plan. The returned report is never nil and describes how far
// the run got, including on failure.
func (u *Updater) Run(ctx context.Context, plan Plan) (*Report, error) {
	start := time.Now()
	report := &Report{}
	finish := func(err error) (*Report, error) {
		report.Elapsed = time.Since(start).Round(time.Millisecond).String()
		if err != nil {
			report.FailedStep = FailedStep(err)
		}
		return report, err
	}

	// 1. Wait for the parent process
	if plan.PID != 0 {
		waitCtx := ctx
		if plan.WaitTimeout > 0 {
			var cancel context.CancelFunc
			waitCtx, cancel = context.WithTimeout(ctx, plan.WaitTimeout)
			defer cancel()
		}
		if err := u.waiter.Wait(waitCtx, plan.PID); err != nil {
			return finish(err)
		}
		report.WaitedPID = plan.PID
	}

	// 2. Stage and swap
	if len(plan.Archives) > 0 {
		result, err := u.stager(plan).Apply(ctx, plan.Archives)
		report.Stage = result
		if err != nil {
			return finish(err)
		}
	} else {
		u.logger.Debug("no archives given, skipping staging")
	}

	// 3. Relaunch
	if plan.Executable != "" {
		pid, err := u.launcher.Launch(RelaunchSpec{Path: plan.Executable, Args: plan.Args})
		if err != nil {
			return finish(err)
		}
		report.Relaunched = plan.Executable
		report.RelaunchedPID = pid
	} else {
		u.logger.Debug("no executable given, skipping relaunch")
	}

	return finish(nil)
}
