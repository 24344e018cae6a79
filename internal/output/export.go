package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"loadprobe/internal/probe"
	"loadprobe/internal/report"
)

// Metadata describes the run an export belongs to.
type Metadata struct {
	TestTimestamp string `json:"testTimestamp"`
	BaseURL       string `json:"baseUrl"`
	Framework     string `json:"framework"`
	TestType      string `json:"testType"`
	RunID         string `json:"runId"`
}

// Export is a report with its metadata block merged in at the top level.
type Export struct {
	Metadata Metadata `json:"metadata"`
	*report.Report

	generated time.Time
}

// NewExport wraps a report for persistence. Each export gets a fresh run ID.
func NewExport(r *report.Report, baseURL, testType string, now time.Time) *Export {
	return &Export{
		Metadata: Metadata{
			TestTimestamp: now.UTC().Format(time.RFC3339),
			BaseURL:       baseURL,
			Framework:     "loadprobe/" + probe.Version,
			TestType:      testType,
			RunID:         uuid.NewString(),
		},
		Report:    r,
		generated: now,
	}
}

// FileName returns the export's file name, e.g. loadprobe-quick-1700000000.json.
func (e *Export) FileName() string {
	return fmt.Sprintf("loadprobe-%s-%d.json", e.Metadata.TestType, e.generated.Unix())
}

// WriteJSON writes the export indented by two spaces.
func WriteJSON(w io.Writer, e *Export) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(e); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

// WriteFile writes the export into dir and returns the file's path.
func WriteFile(dir string, e *Export) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}

	path := filepath.Join(dir, e.FileName())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}

	if err := WriteJSON(f, e); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}
	return path, nil
}
