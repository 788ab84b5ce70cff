package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrSchemaVersion is returned when reading a report written with another
// schema version.
var ErrSchemaVersion = errors.New("storage: unsupported report version")

// Write atomically writes r to path, stamping its version.
func Write(path string, r *Report) error {
	r.Version = CurrentSchemaVersion
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: failed to marshal report: %w", err)
	}
	if err := AtomicWriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("storage: failed to write report %s: %w", path, err)
	}
	return nil
}

// Read loads the report at path.
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("storage: failed to unmarshal report %s: %w", path, err)
	}
	if r.Version != CurrentSchemaVersion {
		return nil, fmt.Errorf("%w: %s has version %q", ErrSchemaVersion, path, r.Version)
	}
	return &r, nil
}

// AtomicWriteFile writes data to a temporary file next to name, syncs it,
// and renames it over name, so readers see the old or the new content and
// never a partial write.
func AtomicWriteFile(name string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(name)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpName, name); err != nil {
		return err
	}
	tmpName = ""
	return nil
}
