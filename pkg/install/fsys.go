package install

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// FileSystem provides the discrete filesystem operations the installer
// performs. Each call is independently fallible; no atomic multi-file
// primitive is assumed. The abstraction allows the same pipeline code to
// run against the real filesystem or a failure-injecting wrapper in tests.
type FileSystem interface {
	// CopyFile copies the contents of src to dst, creating or truncating dst.
	CopyFile(src, dst string) error

	// MoveFile renames src to dst. On same-volume paths this is a single
	// atomic filesystem operation.
	MoveFile(src, dst string) error

	// RemoveFile deletes the file at path.
	RemoveFile(path string) error

	// SetExecutable sets 0755 permission bits on path.
	SetExecutable(path string) error

	// Exists reports whether path exists.
	Exists(path string) bool

	// MkdirAll creates the directory at path along with any missing parents.
	MkdirAll(path string) error
}

// OSFileSystem is the default FileSystem backed by the host OS.
type OSFileSystem struct{}

// CopyFile copies src to dst via streaming I/O so arbitrarily large
// binaries don't need to fit in memory.
func (OSFileSystem) CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create target: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy contents: %w", err)
	}

	return out.Close()
}

// MoveFile renames src onto dst. A cross-device rename falls back to
// copy-then-remove; staged files are siblings of their destination so the
// normal path is always the atomic same-volume rename.
func (fs OSFileSystem) MoveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if errors.As(err, &linkErr) && errors.Is(linkErr.Err, unix.EXDEV) {
		if err := fs.CopyFile(src, dst); err != nil {
			return fmt.Errorf("failed to copy across volumes: %w", err)
		}
		return os.Remove(src)
	}

	return err
}

// RemoveFile deletes the file at path.
func (OSFileSystem) RemoveFile(path string) error {
	return os.Remove(path)
}

// SetExecutable marks path executable: owner read/write/execute,
// group/other read/execute.
func (OSFileSystem) SetExecutable(path string) error {
	return os.Chmod(path, 0755)
}

// Exists reports whether path exists on disk. A stat error other than
// "does not exist" (e.g. EACCES) counts as existing, so the pipeline fails
// loudly on the subsequent backup or removal instead of silently skipping a
// file it cannot see.
func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}

// MkdirAll creates path and any missing parents with 0755 permissions.
func (OSFileSystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}
