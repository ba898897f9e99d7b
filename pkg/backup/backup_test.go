package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSnapshotSQLite(t *testing.T) {
	src := filepath.Join(t.TempDir(), "app.db")
	if err := os.WriteFile(src, []byte("sqlite bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()

	dst, err := Snapshot("", src, dir)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(dst), snapshotPrefix) {
		t.Errorf("unexpected snapshot name %s", dst)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if string(got) != "sqlite bytes" {
		t.Errorf("snapshot content %q", got)
	}
}

func TestSnapshotInMemoryRejected(t *testing.T) {
	if _, err := Snapshot("", "file::memory:", t.TempDir()); err == nil {
		t.Error("in-memory dsn accepted")
	}
	if _, err := Snapshot("", "", t.TempDir()); err == nil {
		t.Error("empty dsn accepted")
	}
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		snapshotPrefix + "20260101_030000.db",
		snapshotPrefix + "20260102_030000.db",
		snapshotPrefix + "20260103_030000.db",
		snapshotPrefix + "20260104_030000.db",
		"unrelated.txt",
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := Prune(dir, 2)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed %d, want 2", removed)
	}

	for _, n := range []string{names[0], names[1]} {
		if _, err := os.Stat(filepath.Join(dir, n)); !os.IsNotExist(err) {
			t.Errorf("%s should have been pruned", n)
		}
	}
	for _, n := range []string{names[2], names[3], "unrelated.txt"} {
		if _, err := os.Stat(filepath.Join(dir, n)); err != nil {
			t.Errorf("%s should have been kept: %v", n, err)
		}
	}

	if n, err := Prune(dir, 5); err != nil || n != 0 {
		t.Errorf("nothing to prune, got n=%d err=%v", n, err)
	}
}
