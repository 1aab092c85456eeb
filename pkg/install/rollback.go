package install

import (
	"fmt"
	"strings"
)

// RestorationStatus describes the outcome of restoring one backup during
// rollback. The three states require different downstream handling, so this
// is never collapsed into a boolean.
type RestorationStatus string

const (
	// StatusRestored means the backup was moved back onto its original path.
	StatusRestored RestorationStatus = "restored"

	// StatusRestoreFailed means the backup could not be moved back; the
	// Restoration's Err carries the reason and the backup file remains on
	// disk for manual recovery.
	StatusRestoreFailed RestorationStatus = "failed"

	// StatusNoBackupNeeded means the destination did not exist before the
	// install, so there was nothing to restore.
	StatusNoBackupNeeded RestorationStatus = "not_needed"
)

// Restoration records the rollback outcome for one backed-up destination.
type Restoration struct {
	OriginalPath string
	BackupPath   string
	Status       RestorationStatus
	Err          error
}

// StagedFileCleanup records the rollback outcome for one staged file that
// existed at failure time.
type StagedFileCleanup struct {
	Path    string
	Success bool
	Err     error
}

// RollbackResult describes everything rollback did after a failed install.
// Each restoration and each staged-file cleanup is an independent filesystem
// call that can independently fail, so outcomes are tracked per file rather
// than summarized into a single flag.
type RollbackResult struct {
	Restorations []Restoration
	StagedFiles  []StagedFileCleanup
}

// Complete reports whether every restoration and every staged-file cleanup
// succeeded.
func (r *RollbackResult) Complete() bool {
	for _, res := range r.Restorations {
		if res.Status == StatusRestoreFailed {
			return false
		}
	}
	for _, sf := range r.StagedFiles {
		if !sf.Success {
			return false
		}
	}
	return true
}

// RestoredPaths returns the original paths that were successfully restored.
func (r *RollbackResult) RestoredPaths() []string {
	var paths []string
	for _, res := range r.Restorations {
		if res.Status == StatusRestored {
			paths = append(paths, res.OriginalPath)
		}
	}
	return paths
}

// FailedRestorations returns the restorations that could not be completed.
// These are the files an operator must recover by hand.
func (r *RollbackResult) FailedRestorations() []Restoration {
	var failed []Restoration
	for _, res := range r.Restorations {
		if res.Status == StatusRestoreFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

// RestorationFor returns the restoration outcome for the given original
// path. Destinations that never had a backup yield a not-needed entry.
func (r *RollbackResult) RestorationFor(originalPath string) Restoration {
	for _, res := range r.Restorations {
		if res.OriginalPath == originalPath {
			return res
		}
	}
	return Restoration{
		OriginalPath: originalPath,
		Status:       StatusNoBackupNeeded,
	}
}

// Summary returns a one-line rollback status: "complete" when every file
// was handled, otherwise "PARTIAL" with restoration counts.
func (r *RollbackResult) Summary() string {
	if r.Complete() {
		return "complete"
	}
	restored := len(r.RestoredPaths())
	return fmt.Sprintf("PARTIAL (%d of %d backups restored)", restored, len(r.Restorations))
}

// RecoveryCommands returns the literal shell commands an operator runs to
// recover one failed restoration by hand. Order matters: remove any stray
// partial file before moving the backup back, and restore permissions last.
func RecoveryCommands(res Restoration) []string {
	return []string{
		fmt.Sprintf("rm -f %s", res.OriginalPath),
		fmt.Sprintf("mv %s %s", res.BackupPath, res.OriginalPath),
		fmt.Sprintf("chmod 755 %s", res.OriginalPath),
	}
}

// RecoveryScript returns the full manual-recovery command sequence for all
// failed restorations, one command per line. Empty when rollback completed.
func (r *RollbackResult) RecoveryScript() string {
	var lines []string
	for _, res := range r.FailedRestorations() {
		lines = append(lines, RecoveryCommands(res)...)
	}
	return strings.Join(lines, "\n")
}
