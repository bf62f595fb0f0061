package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadBatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	body := `{
  "tasks": [
    {"number": "1.0", "name": "root"},
    {"number": "1.1", "name": "child", "parent": "1.0", "dependencies": ["1.0"]}
  ]
}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write batch file: %v", err)
	}

	batch, err := readBatchFile(path)
	if err != nil {
		t.Fatalf("read batch: %v", err)
	}
	if len(batch.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(batch.Tasks))
	}
	if batch.Tasks[1].Parent != "1.0" {
		t.Fatalf("expected parent 1.0, got %q", batch.Tasks[1].Parent)
	}
	if len(batch.Tasks[1].Dependencies) != 1 || batch.Tasks[1].Dependencies[0] != "1.0" {
		t.Fatalf("unexpected dependencies %v", batch.Tasks[1].Dependencies)
	}
}

func TestReadBatchFileMissing(t *testing.T) {
	if _, err := readBatchFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadBatchFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := readBatchFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}
