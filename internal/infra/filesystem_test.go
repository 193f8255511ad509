package infra

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetWorkDirHonorsBase(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "custom-dot-path")
	got := GetWorkDir(base, "sub")

	want := filepath.Join(base, "sub")
	if got != want {
		t.Fatalf("work dir: got %q want %q", got, want)
	}
	info, err := os.Stat(got)
	if err != nil {
		t.Fatalf("stat work dir: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("work dir is not a directory")
	}
}
