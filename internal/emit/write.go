package emit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ArtifactWriteFailure reports that the mapping could not be persisted. The
// previous content at Path, if any, is left untouched.
type ArtifactWriteFailure struct {
	Path string
	Err  error
}

func (e *ArtifactWriteFailure) Error() string {
	return fmt.Sprintf("write artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactWriteFailure) Unwrap() error { return e.Err }

// WriteFileAtomic writes data next to path and renames it into place, so
// readers observe either the old file or the complete new one.
func WriteFileAtomic(fs afero.Fs, path string, data []byte) error {
	fail := func(err error) error {
		return &ArtifactWriteFailure{Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fail(fmt.Errorf("create output directory: %w", err))
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fail(fmt.Errorf("create temp file: %w", err))
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return fail(fmt.Errorf("write temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return fail(fmt.Errorf("sync temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpName)
		return fail(fmt.Errorf("close temp file: %w", err))
	}
	if err := fs.Chmod(tmpName, os.FileMode(0644)); err != nil {
		fs.Remove(tmpName)
		return fail(fmt.Errorf("chmod temp file: %w", err))
	}
	if err := fs.Rename(tmpName, path); err != nil {
		fs.Remove(tmpName)
		return fail(fmt.Errorf("rename into place: %w", err))
	}

	return nil
}
