package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/adamancini/autoupdater/internal/output"
	"github.com/adamancini/autoupdater/internal/update"
)

// rootOptions holds the flags of the update run.
type rootOptions struct {
	archives         []string
	decompressFolder string
	targetDir        string
	pid              int
	executable       string
	waitTimeout      time.Duration
	configPath       string
	outputFormat     string
	report           bool
	logLevel         string
	logFormat        string
	logFile          string
	verbose          bool
	quiet            bool
}

// buildInfo is set from main's ldflags.
type buildInfo struct {
	Version string
	Commit  string
	Date    string
}

func Execute(version, commit, date string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd(buildInfo{Version: version, Commit: commit, Date: date}).ExecuteContext(ctx)
}

func newRootCmd(info buildInfo) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "autoupdater [flags] [executable [args...]]",
		Short: "Apply downloaded update archives and relaunch the application",
		Long: `autoupdater is started by an application right before it exits. It waits
for the application's process to end, unpacks the update archives into a
staging folder, moves the staged files over the application directory,
deletes the archives and starts the application again, detached.

Supported archives: .gz/.tgz (tar+gzip) and .zip. Archives that do not
exist are skipped.

Examples:
  autoupdater --pid 4242 --archive update.zip ./game
  autoupdater --archive core.tar.gz --archive assets.zip --decompress-folder staging
  autoupdater --pid 4242 --executable ./game -- --resume --slot 2
  autoupdater --config update.toml`,
		Version:       info.Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, opts, args)
		},
	}

	flags := rootCmd.Flags()
	flags.StringArrayVar(&opts.archives, "archive", nil, "Update archive to apply (repeatable, applied in order)")
	flags.StringVar(&opts.decompressFolder, "decompress-folder", update.DefaultStagingDir, "Staging folder, relative to the working directory")
	flags.StringVar(&opts.targetDir, "target-dir", "", "Directory receiving the staged files (default: parent of the staging folder)")
	flags.IntVar(&opts.pid, "pid", 0, "Process id to wait for before touching files (0: don't wait)")
	flags.StringVar(&opts.executable, "executable", "", "Program to relaunch after the update")
	flags.DurationVar(&opts.waitTimeout, "wait-timeout", 0, "Give up waiting for --pid after this long (0: wait forever)")
	flags.StringVar(&opts.configPath, "config", "", "Path to a run manifest (toml, yaml or json)")
	flags.BoolVar(&opts.report, "report", false, "Print a run report to stdout")

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&opts.outputFormat, "output", "o", "text", "Output format: text, json, yaml")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: console, json")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Also write logs to this file (rotated)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Quiet mode (errors only)")

	// Add subcommands
	rootCmd.AddCommand(newVersionCmd(info, opts))
	rootCmd.AddCommand(newCompletionCmd())

	// Register completion functions
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return output.Formats(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("archive", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"gz", "tgz", "zip"}, cobra.ShellCompDirectiveFilterFileExt
	})
	_ = rootCmd.MarkFlagDirname("decompress-folder")
	_ = rootCmd.MarkFlagDirname("target-dir")

	return rootCmd
}
