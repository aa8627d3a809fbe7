package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adamancini/autoupdater/internal/config"
	"github.com/adamancini/autoupdater/internal/logging"
	"github.com/adamancini/autoupdater/internal/output"
	"github.com/adamancini/autoupdater/internal/update"
)

// runUpdate executes the update workflow.
func runUpdate(cmd *cobra.Command, opts *rootOptions, args []string) error {
	format, err := output.ParseFormat(opts.outputFormat)
	if err != nil {
		return err
	}

	// 1. Load manifest, then let explicit flags win
	manifest := config.Default()
	if opts.configPath != "" {
		manifest, err = config.Load(opts.configPath)
		if err != nil {
			return err
		}
	}
	applyFlags(cmd, opts, manifest)
	applyPositional(manifest, args, cmd.Flags().Changed("executable"))

	// 2. Validate everything before any file is touched
	plan, err := manifest.Plan()
	if err != nil {
		return err
	}

	// 3. Logger
	logger, err := logging.New(logging.Options{
		Level:  logging.LevelFor(manifest.Log.Level, opts.verbose, opts.quiet),
		Format: manifest.Log.Format,
		File:   manifest.Log.File,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("starting update",
		zap.Int("pid", plan.PID),
		zap.Int("archives", len(plan.Archives)),
		zap.String("staging", plan.StagingDir),
		zap.String("executable", plan.Executable),
	)

	// 4. Run
	report, runErr := update.New(logger).Run(cmd.Context(), plan)

	if opts.report {
		if err := output.NewWriter(cmd.OutOrStdout(), format).Write(report); err != nil && runErr == nil {
			return err
		}
	}

	if runErr != nil {
		logger.Error("update failed", zap.Error(runErr))
		return runErr
	}
	return nil
}

// applyFlags copies explicitly set flags over the manifest.
func applyFlags(cmd *cobra.Command, opts *rootOptions, m *config.Manifest) {
	flags := cmd.Flags()

	if flags.Changed("archive") {
		m.Archives = opts.archives
	}
	if flags.Changed("decompress-folder") {
		m.DecompressFolder = opts.decompressFolder
	}
	if flags.Changed("target-dir") {
		m.TargetDir = opts.targetDir
	}
	if flags.Changed("pid") {
		m.PID = opts.pid
	}
	if flags.Changed("executable") {
		m.Executable = opts.executable
	}
	if flags.Changed("wait-timeout") {
		m.WaitTimeout = opts.waitTimeout.String()
	}
	if flags.Changed("log-level") {
		m.Log.Level = opts.logLevel
	}
	if flags.Changed("log-format") {
		m.Log.Format = opts.logFormat
	}
	if flags.Changed("log-file") {
		m.Log.File = opts.logFile
	}
}

// applyPositional maps trailing arguments onto the relaunch target. Without
// --executable the first argument is the program and the rest are forwarded;
// with it, every argument is forwarded.
func applyPositional(m *config.Manifest, args []string, executableFlag bool) {
	if len(args) == 0 {
		return
	}
	if executableFlag || m.Executable != "" {
		m.Args = args
		return
	}
	m.Executable = args[0]
	m.Args = args[1:]
}
