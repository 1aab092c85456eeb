// Package install implements atomic multi-file binary installation with
// transactional rollback. A batch of (source, destination) operations is
// applied all-or-nothing: either every destination ends up holding its new
// content, or rollback returns the filesystem to its pre-install state and
// the error reports exactly which files, if any, could not be restored.
package install

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/zph/devkit/pkg/logger"
)

// Operation is one (source, destination) install pair. The source must
// exist; the destination may or may not. Operations in a batch are
// logically independent and their order has no semantic priority.
type Operation struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// CleanupWarning records a non-fatal failure to delete a backup file after
// a successful install. The stray backup is harmless but worth surfacing.
type CleanupWarning struct {
	Path string
	Err  error
}

// Result describes a successful install.
type Result struct {
	// InstalledFiles holds the destination filenames actually written, in
	// operation order. Always equal in length to the operation batch.
	InstalledFiles []string

	// BackupsCreated counts the destinations that pre-existed and were
	// backed up before being replaced.
	BackupsCreated int

	// OperationID is the batch identifier, for correlating logs and any
	// leftover temporary artifacts.
	OperationID string

	// CleanupWarnings holds backup files that could not be deleted after
	// the install succeeded. These never flip a success into a failure.
	CleanupWarnings []CleanupWarning
}

// Installer executes the stage/backup/swap/cleanup pipeline. It holds no
// mutable state across calls, so a single value is safe to use from
// concurrent goroutines as long as their batches target disjoint
// destinations; the per-call operation ID keeps temporary filenames from
// colliding even in overlapping directories.
type Installer struct {
	fs FileSystem
}

// New returns an Installer backed by the host filesystem.
func New() *Installer {
	return &Installer{fs: OSFileSystem{}}
}

// NewWithFileSystem returns an Installer using the given FileSystem.
func NewWithFileSystem(fs FileSystem) *Installer {
	return &Installer{fs: fs}
}

// stagedFile is a copy of a source written next to its destination, not yet
// visible at the final path.
type stagedFile struct {
	op   Operation
	path string
}

// backupFile is a copy of a pre-existing destination, kept only long enough
// to support rollback.
type backupFile struct {
	op   Operation
	path string
}

// Install applies a batch of operations atomically. The four phases run
// strictly sequentially across the whole batch: every file is staged and
// every pre-existing destination backed up before any destructive swap
// begins, so a failure mid-swap can always be rolled back from artifacts
// already fully written to disk.
//
// On success the returned Result lists every installed file. On failure the
// returned error is a *SourceNotFoundError or *DestinationDirError when
// nothing was mutated, otherwise an *InstallError carrying the complete
// rollback outcome.
func (in *Installer) Install(operations []Operation) (*Result, error) {
	// Fail-fast validation: no filesystem writes until every source is
	// known to exist.
	for _, op := range operations {
		if !in.fs.Exists(op.Source) {
			return nil, &SourceNotFoundError{Path: op.Source}
		}
	}

	for _, op := range operations {
		dir := filepath.Dir(op.Destination)
		if err := in.fs.MkdirAll(dir); err != nil {
			return nil, &DestinationDirError{Path: dir, Err: err}
		}
	}

	opID := newOperationID()
	logger.Debug("install %s: %d operation(s)", opID, len(operations))

	var staged []stagedFile
	var backups []backupFile

	// Phase 1: stage every source next to its destination.
	for _, op := range operations {
		path := stagedPath(op.Destination, opID)
		if err := in.fs.CopyFile(op.Source, path); err != nil {
			// The failed copy may have left a partial file; rollback
			// deletes it along with the fully staged ones.
			staged = append(staged, stagedFile{op: op, path: path})
			return nil, in.fail(PhaseStage, op.Destination, err, staged, backups)
		}
		staged = append(staged, stagedFile{op: op, path: path})
	}

	// Phase 2: back up every destination that already exists.
	for _, op := range operations {
		if !in.fs.Exists(op.Destination) {
			continue
		}
		path := backupPath(op.Destination, opID)
		if err := in.fs.CopyFile(op.Destination, path); err != nil {
			// A partial backup must never be moved back over the still
			// intact destination; it is deleted as a stray artifact.
			staged = append(staged, stagedFile{op: op, path: path})
			return nil, in.fail(PhaseBackup, op.Destination, err, staged, backups)
		}
		backups = append(backups, backupFile{op: op, path: path})
	}

	// Phase 3: swap. Remove the old file, rename the staged copy into
	// place, mark it executable. Staged entries are consumed as their
	// rename succeeds so rollback only deletes what is still on disk.
	installed := []string{}
	remaining := staged
	for len(remaining) > 0 {
		sf := remaining[0]
		dest := sf.op.Destination

		if in.fs.Exists(dest) {
			if err := in.fs.RemoveFile(dest); err != nil {
				return nil, in.fail(PhaseSwap, dest, err, remaining, backups)
			}
		}

		if err := in.fs.MoveFile(sf.path, dest); err != nil {
			return nil, in.fail(PhaseSwap, dest, err, remaining, backups)
		}
		remaining = remaining[1:]

		if err := in.fs.SetExecutable(dest); err != nil {
			return nil, in.fail(PhasePermissions, dest, err, remaining, backups)
		}

		installed = append(installed, filepath.Base(dest))
	}

	// Phase 4: cleanup. The install has already succeeded; a backup that
	// cannot be deleted is reported as a warning, never as an error.
	var warnings []CleanupWarning
	for _, bf := range backups {
		if err := in.fs.RemoveFile(bf.path); err != nil {
			logger.Warn("install %s: failed to remove backup %s: %v", opID, bf.path, err)
			warnings = append(warnings, CleanupWarning{Path: bf.path, Err: err})
		}
	}

	logger.Debug("install %s: installed %d file(s), %d backup(s)", opID, len(installed), len(backups))

	return &Result{
		InstalledFiles:  installed,
		BackupsCreated:  len(backups),
		OperationID:     opID,
		CleanupWarnings: warnings,
	}, nil
}

// fail runs rollback and wraps the phase failure with its outcome.
func (in *Installer) fail(phase Phase, file string, err error, staged []stagedFile, backups []backupFile) error {
	logger.Debug("install failed during %s for %s, rolling back", phase, file)
	return &InstallError{
		Phase:    phase,
		File:     file,
		Err:      err,
		Rollback: in.rollback(staged, backups),
	}
}

// rollback reverses the effects of phases 1-3: staged files still on disk
// are deleted and every backup is moved back onto its original path. Each
// cleanup and each restoration is an independent filesystem call, so every
// outcome is tracked individually.
func (in *Installer) rollback(staged []stagedFile, backups []backupFile) *RollbackResult {
	result := &RollbackResult{}

	for _, sf := range staged {
		if !in.fs.Exists(sf.path) {
			continue
		}
		err := in.fs.RemoveFile(sf.path)
		result.StagedFiles = append(result.StagedFiles, StagedFileCleanup{
			Path:    sf.path,
			Success: err == nil,
			Err:     err,
		})
	}

	for _, bf := range backups {
		res := Restoration{
			OriginalPath: bf.op.Destination,
			BackupPath:   bf.path,
			Status:       StatusRestored,
		}

		// Clear any partial artifact before moving the backup back. A
		// failed removal surfaces through the move below.
		if in.fs.Exists(bf.op.Destination) {
			if err := in.fs.RemoveFile(bf.op.Destination); err != nil {
				logger.Debug("rollback: failed to clear %s: %v", bf.op.Destination, err)
			}
		}

		if err := in.fs.MoveFile(bf.path, bf.op.Destination); err != nil {
			res.Status = StatusRestoreFailed
			res.Err = err
		}

		result.Restorations = append(result.Restorations, res)
	}

	return result
}

// stagedPath returns the temporary path a source is copied to before the
// swap makes it visible at the destination.
func stagedPath(destination, opID string) string {
	return destination + ".new." + opID
}

// backupPath returns the temporary path a pre-existing destination is
// copied to before being replaced.
func backupPath(destination, opID string) string {
	return destination + ".bak." + opID
}

// newOperationID generates the 8-character batch identifier that
// namespaces temporary artifacts. Collision resistance within one
// process's temp-file lifetime is all that is required.
func newOperationID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
