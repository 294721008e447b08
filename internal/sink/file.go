package sink

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"netsentinel/internal/model"
)

const (
	writeAttempts = 3
	retryDelay    = 100 * time.Millisecond
)

// FileSink appends newline-delimited JSON alert records to a single file.
// Writes are retried a bounded number of times before the alert is dropped;
// records already committed to the file are never touched until Finalize.
type FileSink struct {
	path string
	file *os.File
}

// NewFileSink opens (or creates) the alert log at path for appending.
func NewFileSink(path string) (*FileSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open alert log: %w", err)
	}
	return &FileSink{path: path, file: file}, nil
}

// Path returns the location of the alert log.
func (s *FileSink) Path() string {
	return s.path
}

// Write appends one alert as a single JSON line.
func (s *FileSink) Write(alert model.Alert) error {
	line, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}
	line = append(line, '\n')

	var lastErr error
	for attempt := 0; attempt < writeAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}
		if _, lastErr = s.file.Write(line); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("failed to append alert after %d attempts: %w", writeAttempts, lastErr)
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	return s.file.Close()
}

// Finalize reads all line-delimited alert records at path and rewrites the
// file as one pretty-printed JSON array, preserving record order. Blank and
// unparsable lines are skipped. An absent file is rewritten as "[]".
func Finalize(path string) error {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return os.WriteFile(path, []byte("[]\n"), 0644)
	}
	if err != nil {
		return fmt.Errorf("failed to open alert log: %w", err)
	}

	var alerts []model.Alert
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var alert model.Alert
		if err := json.Unmarshal([]byte(line), &alert); err != nil {
			continue
		}
		alerts = append(alerts, alert)
	}
	if err := scanner.Err(); err != nil {
		file.Close()
		return fmt.Errorf("failed to read alert log: %w", err)
	}
	file.Close()

	if alerts == nil {
		alerts = []model.Alert{}
	}
	out, err := json.MarshalIndent(alerts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal alert array: %w", err)
	}
	out = append(out, '\n')

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to rewrite alert log: %w", err)
	}
	return nil
}
