package progress

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Logbook appends every event to a plain text file, one line per event:
//
//	2025-01-02T15:04:05Z SUCCESS node Send Email succeeded [run=... node=2]
//
// Write failures never reach the run. The first one is logged as a warning.
type Logbook struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
	warned bool
}

// OpenLogbook prepares a logbook at path, creating parent directories.
func OpenLogbook(path string, logger *slog.Logger) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logbook directory: %w", err)
	}
	return &Logbook{path: path, logger: logger.With("sink", "logbook", "path", path)}, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

func (l *Logbook) Report(e Event) {
	if l == nil {
		return
	}
	line := fmt.Sprintf("%s %-7s %s [run=%s",
		e.Time.UTC().Format(time.RFC3339),
		strings.ToUpper(e.Severity.String()),
		strings.TrimSpace(e.Message),
		e.RunID,
	)
	if e.NodeID != "" {
		line += " node=" + e.NodeID
	}
	line += "]"
	if e.Detail != "" {
		line += " " + e.Detail
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.append(line); err != nil && !l.warned {
		l.warned = true
		l.logger.Warn("Logbook write failed; later failures are not logged.", "error", err)
	}
}

func (l *Logbook) append(line string) error {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open logbook: %w", err)
	}
	if _, err := file.WriteString(line + "\n"); err != nil {
		file.Close()
		return fmt.Errorf("failed to write logbook: %w", err)
	}
	return file.Close()
}

// Tail returns up to maxLines of the most recent entries and the total number
// of lines in the file.
func (l *Logbook) Tail(maxLines int) ([]string, int) {
	if l == nil || maxLines <= 0 {
		return nil, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	file, err := os.Open(l.path)
	if err != nil {
		return nil, 0
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	total := len(lines)
	if total > maxLines {
		lines = lines[total-maxLines:]
	}
	return lines, total
}
