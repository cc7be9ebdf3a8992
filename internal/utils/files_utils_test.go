package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadContextFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.txt")
	second := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(first, []byte("alpha"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("beta"), 0o644); err != nil {
		t.Fatal(err)
	}

	combined, err := ReadContextFiles(first + ", " + second)
	if err != nil {
		t.Fatalf("ReadContextFiles() error = %v", err)
	}
	if !strings.Contains(combined, "alpha") || !strings.Contains(combined, "beta") {
		t.Errorf("ReadContextFiles() missing file contents: %q", combined)
	}
}

func TestReadContextFilesEmpty(t *testing.T) {
	combined, err := ReadContextFiles("")
	if err != nil || combined != "" {
		t.Errorf("ReadContextFiles(\"\") = (%q, %v), want empty and nil", combined, err)
	}
}

func TestReadContextFilesMissing(t *testing.T) {
	if _, err := ReadContextFiles("/does/not/exist.txt"); err == nil {
		t.Error("ReadContextFiles() expected error for missing file")
	}
}

func TestPromptString(t *testing.T) {
	in := strings.NewReader("\n  \n./data.csv\n")
	var out bytes.Buffer

	got, err := PromptString(in, &out, "path: ")
	if err != nil {
		t.Fatalf("PromptString() error = %v", err)
	}
	if got != "./data.csv" {
		t.Errorf("PromptString() = %q, want %q", got, "./data.csv")
	}
}

func TestPromptInt(t *testing.T) {
	in := strings.NewReader("abc\n-5\n0\n42\n")
	var out bytes.Buffer

	got, err := PromptInt(in, &out, "rows: ")
	if err != nil {
		t.Fatalf("PromptInt() error = %v", err)
	}
	if got != 42 {
		t.Errorf("PromptInt() = %d, want 42", got)
	}
	if !strings.Contains(out.String(), "positive integer") {
		t.Error("PromptInt() did not re-prompt on invalid input")
	}
}

func TestPromptIntEOF(t *testing.T) {
	in := strings.NewReader("")
	var out bytes.Buffer

	if _, err := PromptInt(in, &out, "rows: "); err == nil {
		t.Error("PromptInt() expected error on EOF")
	}
}
