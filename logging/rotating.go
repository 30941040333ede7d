package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const logFilePrefix = "app-"

// RotatingWriter is an io.Writer over weekly log files.
// A week starts in app-YYYY-Www.log and continues in app-YYYY-Www_NN.log
// files once the size limit is reached.
type RotatingWriter struct {
	dir       string
	maxSize   int64 // 0 disables size rotation
	retention time.Duration
	now       func() time.Time

	mu   sync.Mutex
	file *os.File
	week string
	seq  int
	size int64
}

// NewRotatingWriter creates dir if needed and opens the file of the current week
func NewRotatingWriter(dir string, retentionWeeks int, maxSize int64) (*RotatingWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	w := &RotatingWriter{
		dir:       dir,
		maxSize:   maxSize,
		retention: time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		now:       time.Now,
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.openWeek(weekKey(w.now())); err != nil {
		return nil, err
	}
	return w, nil
}

// weekKey returns the ISO week in YYYY-Www format
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func logFileName(week string, seq int) string {
	if seq == 0 {
		return logFilePrefix + week + ".log"
	}
	return fmt.Sprintf("%s%s_%02d.log", logFilePrefix, week, seq)
}

// lastSequence returns the highest NN of the week's numbered files, 0 if none
func (w *RotatingWriter) lastSequence(week string) int {
	prefix := logFilePrefix + week + "_"
	matches, _ := filepath.Glob(filepath.Join(w.dir, prefix+"??.log"))

	highest := 0
	for _, match := range matches {
		digits := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(match), prefix), ".log")
		if n, err := strconv.Atoi(digits); err == nil && n > highest {
			highest = n
		}
	}
	return highest
}

// openWeek resumes the newest file of week that still has room.
// Caller must hold mu.
func (w *RotatingWriter) openWeek(week string) error {
	w.seq = w.lastSequence(week)
	return w.open(week)
}

// open opens logFileName(week, w.seq), skipping forward past full files.
// Caller must hold mu.
func (w *RotatingWriter) open(week string) error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
		w.file = nil
	}

	var path string
	var size int64
	for {
		path = filepath.Join(w.dir, logFileName(week, w.seq))
		info, err := os.Stat(path)
		if err != nil {
			size = 0
			break
		}
		if w.maxSize == 0 || info.Size() < w.maxSize {
			size = info.Size()
			break
		}
		w.seq++
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	w.file = file
	w.week = week
	w.size = size
	return nil
}

// Write appends p, rotating first on a new week or when p would not fit
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch week := weekKey(w.now()); {
	case week != w.week || w.file == nil:
		if err := w.openWeek(week); err != nil {
			return 0, err
		}
	case w.maxSize > 0 && w.size > 0 && w.size+int64(len(p)) > w.maxSize:
		w.seq++
		if err := w.open(week); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// CurrentFile returns the path being written to
func (w *RotatingWriter) CurrentFile() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return ""
	}
	return w.file.Name()
}

// Prune removes log files last modified before the retention period.
// The file currently written to is never removed.
func (w *RotatingWriter) Prune() (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	current := w.CurrentFile()
	cutoff := w.now().Add(-w.retention)
	removed := 0

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}

		path := filepath.Join(w.dir, name)
		if path == current {
			continue
		}

		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(path); err == nil {
			removed++
		}
	}

	return removed, nil
}

// Close closes the current file
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
