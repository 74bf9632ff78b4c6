package table

import (
	"bufio"
	"os"
	"path/filepath"
)

// Load reads the dataset at path. The format is chosen from the extension.
// Every failure is returned as a *LoadError.
func Load(path string, opts Options) (*Table, error) {
	f, err := formatFor(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer func() { _ = file.Close() }()

	header, records, err := f.decode(bufio.NewReader(file))
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	t, err := New(header, records, opts)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return t, nil
}

// Persist writes the whole table to path. The data goes to a temporary file
// in the same directory which is synced and then renamed over path, so a
// failure leaves the previous snapshot intact. Failures are *PersistError.
func (t *Table) Persist(path string) error {
	f, err := formatFor(path)
	if err != nil {
		return &PersistError{Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o750); err != nil {
		return &PersistError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &PersistError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	w := bufio.NewWriter(tmp)
	if err = f.encode(w, t.header, t.records); err != nil {
		cleanup()
		return &PersistError{Path: path, Err: err}
	}
	if err = w.Flush(); err != nil {
		cleanup()
		return &PersistError{Path: path, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		cleanup()
		return &PersistError{Path: path, Err: err}
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &PersistError{Path: path, Err: err}
	}
	if err = os.Chmod(tmpPath, 0o644); err != nil { //nolint:gosec // Output datasets are meant to be shared.
		_ = os.Remove(tmpPath)
		return &PersistError{Path: path, Err: err}
	}
	if err = os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return &PersistError{Path: path, Err: err}
	}
	return nil
}
