package backup

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const snapshotPrefix = "suraksha_backup_"

// Snapshot writes a timestamped copy of the database into dir and returns
// the created path. Sqlite databases are copied as files; mysql and
// postgres go through their dump tools.
func Snapshot(driver, dsn, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	stamp := time.Now().Format("20060102_150405")

	switch driver {
	case "mysql":
		dst := filepath.Join(dir, snapshotPrefix+stamp+".sql")
		return dst, dumpCommand(dst, "mysqldump", dsn)
	case "pg":
		dst := filepath.Join(dir, snapshotPrefix+stamp+".sql")
		return dst, dumpCommand(dst, "pg_dump", dsn)
	default:
		if dsn == "" || strings.Contains(dsn, ":memory:") {
			return "", fmt.Errorf("in-memory database, nothing to back up")
		}
		dst := filepath.Join(dir, snapshotPrefix+stamp+".db")
		return dst, copyFile(strings.TrimPrefix(dsn, "file:"), dst)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open database file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy database: %w", err)
	}
	return nil
}

func dumpCommand(dst, tool, dsn string) error {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer out.Close()

	cmd := exec.Command(tool, dsn)
	cmd.Stdout = out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("%s failed: %w", tool, err)
	}
	return nil
}

// Prune deletes all but the newest keep snapshots in dir and reports how
// many were removed. The timestamped names sort chronologically.
func Prune(dir string, keep int) (int, error) {
	if keep <= 0 {
		keep = 1
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), snapshotPrefix) {
			names = append(names, e.Name())
		}
	}
	if len(names) <= keep {
		return 0, nil
	}
	sort.Strings(names)

	removed := 0
	for _, name := range names[:len(names)-keep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
