// Package export writes batch artifacts (CSV, JSON, XLSX) into the configured
// output directory and serves them back by name.
package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-insights/internal/common"
	"github.com/joseph-ayodele/invoice-insights/internal/entity"
)

// Service is a tiny façade over the output directory. All writers stamp the
// filename with the batch timestamp so repeated runs never clobber each other.
type Service struct {
	outputDir string
	logger    *slog.Logger
}

func NewService(outputDir string, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Service{outputDir: outputDir, logger: logger}, nil
}

// Files lists the artifacts one full export produced.
type Files struct {
	ItemsCSV    string `json:"items_csv"`
	SummaryCSV  string `json:"summary_csv"`
	ResultsJSON string `json:"results_json"`
	MasterXLSX  string `json:"master_list_xlsx,omitempty"`
	SavingsXLSX string `json:"savings_xlsx,omitempty"`
}

// ExportAll writes every artifact for a finished batch. Master list and
// savings sheets are skipped when the aggregates are empty.
func (s *Service) ExportAll(summary entity.BatchSummary, master []entity.MasterItem, savings entity.SavingsReport) (Files, error) {
	start := time.Now()
	stamp := summary.Timestamp
	if stamp.IsZero() {
		stamp = time.Now().UTC()
	}
	ts := stamp.Format("20060102_150405")

	var files Files
	var err error

	if files.ItemsCSV, err = s.writeItemsCSV(summary.Results, ts); err != nil {
		return files, err
	}
	if files.SummaryCSV, err = s.writeSummaryCSV(summary.Results, ts); err != nil {
		return files, err
	}
	if files.ResultsJSON, err = s.writeResultsJSON(summary, ts); err != nil {
		return files, err
	}
	if len(master) > 0 {
		if files.MasterXLSX, err = s.writeMasterListXLSX(master, ts); err != nil {
			return files, err
		}
	}
	if len(savings.TopItems) > 0 {
		if files.SavingsXLSX, err = s.writeSavingsXLSX(savings, ts); err != nil {
			return files, err
		}
	}

	s.logger.Info("export.batch.ok",
		"results", len(summary.Results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return files, nil
}

func (s *Service) writeResultsJSON(summary entity.BatchSummary, ts string) (string, error) {
	path := filepath.Join(s.outputDir, fmt.Sprintf("batch_results_%s.json", ts))
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal batch results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write batch results: %w", err)
	}
	s.logger.Info("export.json.ok", "path", path, "results", len(summary.Results))
	return path, nil
}

// ListOutputs returns the artifact filenames currently on disk, newest first.
func (s *Service) ListOutputs() (csvFiles, jsonFiles, xlsxFiles []string, err error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read output dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv":
			csvFiles = append(csvFiles, e.Name())
		case ".json":
			jsonFiles = append(jsonFiles, e.Name())
		case ".xlsx":
			xlsxFiles = append(xlsxFiles, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(csvFiles)))
	sort.Sort(sort.Reverse(sort.StringSlice(jsonFiles)))
	sort.Sort(sort.Reverse(sort.StringSlice(xlsxFiles)))
	return csvFiles, jsonFiles, xlsxFiles, nil
}

// ResolvePath maps a bare artifact filename to its on-disk path. Anything
// that is not a plain filename inside the output directory is rejected.
func (s *Service) ResolvePath(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("%w: invalid filename %q", common.ErrInvalidInput, filename)
	}
	path := filepath.Join(s.outputDir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", common.ErrNotFound, filename)
	}
	return path, nil
}
