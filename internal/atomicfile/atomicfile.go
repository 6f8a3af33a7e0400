// Package atomicfile implements the write-temp-then-rename protocol spec.md
// §4.7 requires for durable JSON writes: serialize with stable key order,
// write to a temp file in the target directory, fsync it, rename over the
// target, then fsync the parent directory. Callers are responsible for
// ensuring at most one writer per path; this package does not itself
// serialize across paths.
package atomicfile

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteResult carries the outcome of a successful atomic write.
type WriteResult struct {
	SHA256 string
}

// WriteJSON marshals v with 2-space indentation and writes it atomically to
// path. On any error before the rename, the temp file is removed and path is
// left untouched.
func WriteJSON(path string, v interface{}) (WriteResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return WriteResult{}, fmt.Errorf("atomicfile: marshal %s: %w", path, err)
	}
	return Write(path, data)
}

// Write atomically writes raw bytes to path, returning their SHA-256.
func Write(path string, data []byte) (WriteResult, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return WriteResult{}, fmt.Errorf("atomicfile: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return WriteResult{}, fmt.Errorf("atomicfile: create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return WriteResult{}, fmt.Errorf("atomicfile: write temp for %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return WriteResult{}, fmt.Errorf("atomicfile: fsync temp for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return WriteResult{}, fmt.Errorf("atomicfile: close temp for %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return WriteResult{}, fmt.Errorf("atomicfile: rename %s -> %s: %w", tmpName, path, err)
	}

	if parent, err := os.Open(dir); err == nil {
		_ = parent.Sync()
		parent.Close()
	}

	sum := sha256.Sum256(data)
	return WriteResult{SHA256: hex.EncodeToString(sum[:])}, nil
}

// ReadJSON reads and decodes the JSON file at path into v.
func ReadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
