// Package types provides type-safe constants for the autoupdater.
//
// This package centralizes the enumerated types shared by the update
// protocol, the run manifest and the report writer, replacing magic strings
// with typed constants that provide validation methods.
package types

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ArchiveKind is the container format of an update archive.
type ArchiveKind string

const (
	// ArchiveKindTarGz is a gzip-compressed tar stream (.gz, .tgz).
	ArchiveKindTarGz ArchiveKind = "targz"
	// ArchiveKindZip is a zip container (.zip).
	ArchiveKindZip ArchiveKind = "zip"
)

// AllArchiveKinds returns all supported archive kinds.
func AllArchiveKinds() []ArchiveKind {
	return []ArchiveKind{ArchiveKindTarGz, ArchiveKindZip}
}

// Validate checks if the ArchiveKind is a valid value.
func (k ArchiveKind) Validate() error {
	switch k {
	case ArchiveKindTarGz, ArchiveKindZip:
		return nil
	case "":
		return fmt.Errorf("archive kind is required")
	default:
		return fmt.Errorf("invalid archive kind '%s' (must be targz or zip)", k)
	}
}

// String returns the string representation of the ArchiveKind.
func (k ArchiveKind) String() string {
	return string(k)
}

// IsTarGz returns true if the kind is a gzip-compressed tarball.
func (k ArchiveKind) IsTarGz() bool {
	return k == ArchiveKindTarGz
}

// IsZip returns true if the kind is a zip container.
func (k ArchiveKind) IsZip() bool {
	return k == ArchiveKindZip
}

// archiveExtensions maps file extensions to archive kinds. Matching is
// case-sensitive: "update.ZIP" is not a zip archive.
var archiveExtensions = map[string]ArchiveKind{
	".gz":  ArchiveKindTarGz,
	".tgz": ArchiveKindTarGz,
	".zip": ArchiveKindZip,
}

// KindForExtension returns the archive kind for a file extension including
// the leading dot. ok is false for unknown extensions.
func KindForExtension(ext string) (kind ArchiveKind, ok bool) {
	kind, ok = archiveExtensions[ext]
	return kind, ok
}

// KindForPath is KindForExtension applied to filepath.Ext(path).
func KindForPath(path string) (ArchiveKind, bool) {
	return KindForExtension(filepath.Ext(path))
}

// ParseArchiveKind parses a string into an ArchiveKind.
// Returns an error if the string is not a valid archive kind.
func ParseArchiveKind(s string) (ArchiveKind, error) {
	k := ArchiveKind(strings.ToLower(s))
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

// Step identifies a phase of the update protocol.
type Step string

const (
	// StepWait waits for the parent process to exit.
	StepWait Step = "wait"
	// StepExtract unpacks archives into the staging directory.
	StepExtract Step = "extract"
	// StepSwap moves staged entries into the target directory.
	StepSwap Step = "swap"
	// StepCleanup removes archives and the staging directory.
	StepCleanup Step = "cleanup"
	// StepRelaunch starts the updated application.
	StepRelaunch Step = "relaunch"
)

// AllSteps returns every step in protocol order.
func AllSteps() []Step {
	return []Step{StepWait, StepExtract, StepSwap, StepCleanup, StepRelaunch}
}

// String returns the string representation of the Step.
func (s Step) String() string {
	return string(s)
}

// Validate checks if the Step is a valid value.
func (s Step) Validate() error {
	for _, known := range AllSteps() {
		if s == known {
			return nil
		}
	}
	return fmt.Errorf("invalid step '%s'", s)
}
