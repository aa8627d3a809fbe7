// Package config handles run manifest parsing and merging with flags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/adamancini/autoupdater/internal/update"
)

// LogConfig controls progress logging.
type LogConfig struct {
	Level  string `yaml:"level,omitempty" toml:"level,omitempty" json:"level,omitempty"`
	Format string `yaml:"format,omitempty" toml:"format,omitempty" json:"format,omitempty"`
	File   string `yaml:"file,omitempty" toml:"file,omitempty" json:"file,omitempty"`
}

// Manifest describes one update run. Every field can also be given on the
// command line; flags that are set explicitly take precedence.
type Manifest struct {
	Archives         []string  `yaml:"archives,omitempty" toml:"archives,omitempty" json:"archives,omitempty"`
	DecompressFolder string    `yaml:"decompress_folder,omitempty" toml:"decompress_folder,omitempty" json:"decompress_folder,omitempty"`
	TargetDir        string    `yaml:"target_dir,omitempty" toml:"target_dir,omitempty" json:"target_dir,omitempty"`
	PID              int       `yaml:"pid,omitempty" toml:"pid,omitempty" json:"pid,omitempty"`
	Executable       string    `yaml:"executable,omitempty" toml:"executable,omitempty" json:"executable,omitempty"`
	Args             []string  `yaml:"args,omitempty" toml:"args,omitempty" json:"args,omitempty"`
	WaitTimeout      string    `yaml:"wait_timeout,omitempty" toml:"wait_timeout,omitempty" json:"wait_timeout,omitempty"` // Go duration, e.g. "30s"
	Log              LogConfig `yaml:"log,omitempty" toml:"log,omitempty" json:"log,omitempty"`
}

// Default returns the manifest used when no file is given.
func Default() *Manifest {
	return &Manifest{DecompressFolder: update.DefaultStagingDir}
}

// Load reads, parses and validates a manifest from the given path.
func Load(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	format := detectFormat(path, content)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unable to detect file format for %s", path)
	}

	m, err := parse(content, format)
	if err != nil {
		return nil, err
	}

	if err := Validate(m); err != nil {
		return nil, err
	}

	return m, nil
}

// Plan converts the manifest into an update plan. Archive extensions are
// checked here, before anything touches the filesystem.
func (m *Manifest) Plan() (update.Plan, error) {
	if err := Validate(m); err != nil {
		return update.Plan{}, err
	}

	archives, err := update.ParseArchiveRefs(m.Archives)
	if err != nil {
		return update.Plan{}, err
	}

	timeout, err := m.waitTimeout()
	if err != nil {
		return update.Plan{}, err
	}

	staging := m.DecompressFolder
	if staging == "" {
		staging = update.DefaultStagingDir
	}

	return update.Plan{
		PID:         m.PID,
		Archives:    archives,
		StagingDir:  staging,
		TargetDir:   m.TargetDir,
		Executable:  m.Executable,
		Args:        m.Args,
		WaitTimeout: timeout,
	}, nil
}

func (m *Manifest) waitTimeout() (time.Duration, error) {
	if m.WaitTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(m.WaitTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid wait_timeout %q: %w", m.WaitTimeout, err)
	}
	return d, nil
}
