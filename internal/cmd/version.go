package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/adamancini/autoupdater/internal/output"
)

// versionInfo is what `autoupdater version` reports.
type versionInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// String renders the text form.
func (v versionInfo) String() string {
	return fmt.Sprintf("autoupdater version %s (commit %s, built %s, %s, %s)",
		v.Version, v.Commit, v.Date, v.GoVersion, v.Platform)
}

func newVersionCmd(info buildInfo, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the autoupdater version and build information.

Examples:
  autoupdater version            # Show version
  autoupdater version -o json    # Machine-readable build info`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd.OutOrStdout(), info, opts.outputFormat)
		},
	}
}

func runVersion(w io.Writer, info buildInfo, format string) error {
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}

	return output.NewWriter(w, f).Write(versionInfo{
		Version:   info.Version,
		Commit:    info.Commit,
		Date:      info.Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	})
}
