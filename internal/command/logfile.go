package command

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// rotatingFile is a log destination rotated by size: once a write would take
// the file past maxSize bytes, the file becomes <path>.1, the previous .1
// becomes .2 and so on, keeping at most maxBackups backups. Agents log from
// their own goroutines, so writes are locked.
type rotatingFile struct {
	mu         sync.Mutex
	path       string
	maxSize    int64
	maxBackups int
	size       int64
	file       *os.File
}

// newRotatingFile opens path for appending, creating it and its directory as
// needed. maxSizeMB is raised to 1 and maxBackups to 0 when below.
func newRotatingFile(path string, maxSizeMB, maxBackups int) (*rotatingFile, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("log file: %w", err)
		}
	}
	f, err := openLog(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("log file: %w", err)
	}
	return &rotatingFile{
		path:       path,
		maxSize:    int64(max(maxSizeMB, 1)) << 20,
		maxBackups: max(maxBackups, 0),
		size:       info.Size(),
		file:       f,
	}, nil
}

func openLog(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("log file: %w", err)
	}
	return f, nil
}

// Write appends p, rotating first if p would not fit. A record is never
// split across files.
func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.size > 0 && r.size+int64(len(p)) > r.maxSize {
		if err := r.rotate(); err != nil {
			return 0, fmt.Errorf("log file: rotate: %w", err)
		}
	}
	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *rotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}

func (r *rotatingFile) rotate() error {
	if err := r.file.Close(); err != nil {
		return err
	}
	backups := r.backups()
	slices.Reverse(backups)
	for _, n := range backups {
		if n+1 > r.maxBackups {
			_ = os.Remove(r.backup(n))
		} else {
			_ = os.Rename(r.backup(n), r.backup(n+1))
		}
	}
	if r.maxBackups > 0 {
		_ = os.Rename(r.path, r.backup(1))
	} else {
		_ = os.Remove(r.path)
	}
	f, err := openLog(r.path)
	if err != nil {
		return err
	}
	r.file, r.size = f, 0
	return nil
}

func (r *rotatingFile) backup(n int) string {
	return r.path + "." + strconv.Itoa(n)
}

// backups returns the existing backup numbers in ascending order.
func (r *rotatingFile) backups() []int {
	entries, err := os.ReadDir(filepath.Dir(r.path))
	if err != nil {
		return nil
	}
	prefix := filepath.Base(r.path) + "."
	var nums []int
	for _, e := range entries {
		suffix, ok := strings.CutPrefix(e.Name(), prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n > 0 {
			nums = append(nums, n)
		}
	}
	slices.Sort(nums)
	return nums
}
