package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Writer persists audit records as CSV files, one directory per run.
type Writer struct {
	baseDir string
}

func NewWriter(root string) (*Writer, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	baseDir := filepath.Join(root, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) WriteCallRecords(records []CallMetric) error {
	path := filepath.Join(w.baseDir, "call_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create call records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"session", "model", "attempt", "status", "parse_method",
		"prompt_tokens", "completion_tokens", "latency_ms", "score", "reason"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write call records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.SessionID,
			record.ModelID,
			strconv.Itoa(record.Attempt),
			record.Status,
			record.ParseMethod,
			strconv.Itoa(record.PromptTokens),
			strconv.Itoa(record.CompletionTokens),
			strconv.FormatInt(record.Latency.Milliseconds(), 10),
			strconv.Itoa(record.Score),
			record.Reason,
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write call record row: %w", err)
		}
	}

	return nil
}

func (w *Writer) WriteSessionRecords(records []SessionMetric) error {
	path := filepath.Join(w.baseDir, "session_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create session records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"session", "start", "duration_ms", "calls", "winner", "winner_kind"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write session records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.SessionID,
			record.StartTime.UTC().Format(time.RFC3339),
			strconv.FormatInt(record.Duration.Milliseconds(), 10),
			strconv.Itoa(record.Calls),
			record.Winner,
			record.WinnerKind,
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write session record row: %w", err)
		}
	}

	return nil
}
