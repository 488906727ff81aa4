package ocr

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteParamsFile(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteParamsFile(dir, InitParams)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("file written outside dir: %s", path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "tessedit_minimal_confidence 60\ntessedit_ocr_engine_mode 1\n"
	if string(got) != want {
		t.Fatalf("params file:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteParamsFile_BadDir(t *testing.T) {
	if _, err := WriteParamsFile(filepath.Join(t.TempDir(), "missing"), InitParams); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
