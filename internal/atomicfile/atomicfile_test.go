package atomicfile

import (
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name string `json:"name"`
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "band.json")

	res, err := WriteJSON(path, sample{Name: "Pink Floyd"})
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if res.SHA256 == "" {
		t.Fatal("expected non-empty checksum")
	}

	var got sample
	if err := ReadJSON(path, &got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Name != "Pink Floyd" {
		t.Fatalf("expected round-tripped name, got %q", got.Name)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp file to be gone after rename, found %d entries", len(entries))
	}
}

func TestWriteJSON_LeavesTargetUntouchedOnMarshalError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "band.json")

	if _, err := WriteJSON(path, sample{Name: "original"}); err != nil {
		t.Fatalf("seed write: %v", err)
	}

	// channels cannot be marshaled to JSON, simulating a failure before rename.
	_, err := WriteJSON(path, make(chan int))
	if err == nil {
		t.Fatal("expected marshal error")
	}

	var got sample
	if err := ReadJSON(path, &got); err != nil {
		t.Fatalf("ReadJSON after failed write: %v", err)
	}
	if got.Name != "original" {
		t.Fatalf("expected target left untouched, got %q", got.Name)
	}
}
