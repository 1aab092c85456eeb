package install

import (
	"fmt"
	"strings"
)

// Phase identifies where in the install pipeline a failure occurred. The
// correct remediation differs by phase, so errors carry it explicitly.
type Phase string

const (
	PhaseStage       Phase = "stage"
	PhaseBackup      Phase = "backup"
	PhaseSwap        Phase = "swap"
	PhasePermissions Phase = "permissions"
)

// SourceNotFoundError is returned when a source file is missing. Validation
// runs before any mutation, so nothing needs rolling back.
type SourceNotFoundError struct {
	Path string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source file not found: %s", e.Path)
}

// DestinationDirError is returned when a destination's parent directory
// cannot be created. Directory creation precedes staging, so no file
// content has been touched.
type DestinationDirError struct {
	Path string
	Err  error
}

func (e *DestinationDirError) Error() string {
	return fmt.Sprintf("failed to create destination directory %s: %v", e.Path, e.Err)
}

func (e *DestinationDirError) Unwrap() error {
	return e.Err
}

// InstallError is the error callers receive for any failure after staging
// has begun. Rollback has already been attempted by the time it is
// returned; its outcome is embedded so callers never have to separately ask
// what state the filesystem was left in.
type InstallError struct {
	Phase    Phase
	File     string
	Err      error
	Rollback *RollbackResult
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

// Error renders the full operator-facing failure report: the phase and file
// that failed, the underlying OS error, the per-file rollback status, and
// the literal shell commands needed to finish recovery by hand.
func (e *InstallError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "installation failed during %s phase\n", e.Phase)
	fmt.Fprintf(&b, "  file:  %s\n", e.File)
	fmt.Fprintf(&b, "  cause: %v\n", e.Err)

	if e.Rollback == nil {
		return b.String()
	}

	fmt.Fprintf(&b, "\nrollback: %s\n", e.Rollback.Summary())

	if restored := e.Rollback.RestoredPaths(); len(restored) > 0 {
		b.WriteString("  restored:\n")
		for _, path := range restored {
			fmt.Fprintf(&b, "    %s\n", path)
		}
	}

	failed := e.Rollback.FailedRestorations()
	if len(failed) > 0 {
		b.WriteString("  failed to restore:\n")
		for _, res := range failed {
			fmt.Fprintf(&b, "    %s (backup at %s): %v\n", res.OriginalPath, res.BackupPath, res.Err)
		}

		b.WriteString("\nmanual recovery:\n")
		for _, res := range failed {
			for _, cmd := range RecoveryCommands(res) {
				fmt.Fprintf(&b, "  %s\n", cmd)
			}
		}
	}

	for _, sf := range e.Rollback.StagedFiles {
		if !sf.Success {
			fmt.Fprintf(&b, "\nstaged file left on disk: %s (%v)\n", sf.Path, sf.Err)
		}
	}

	return b.String()
}
