package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Excel only detects UTF-8 CSV when the file starts with a BOM
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter creates CSV files under an export directory. Relative paths
// resolve against it; absolute paths are used as given.
type CSVWriter struct {
	exportDir string
	logger    *slog.Logger
}

func NewCSVWriter(exportDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		exportDir: exportDir,
		logger:    logger.With(slog.String("component", "csv_writer")),
	}
}

// Create opens a stream that writes headers and rows to a temporary file
// next to path. Close moves it into place; Abort discards it, so readers
// never see a half-written export.
func (w *CSVWriter) Create(path string, headers []string) (*StreamWriter, error) {
	target := w.resolve(path)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", target, err)
	}
	// CreateTemp uses 0600
	_ = tmp.Chmod(0644)

	s, err := NewStreamWriter(tmp, headers, true)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}
	s.file = tmp
	s.target = target

	w.logger.Debug("csv stream opened",
		slog.String("path", target),
		slog.Int("columns", len(headers)))
	return s, nil
}

func (w *CSVWriter) resolve(path string) string {
	if w.exportDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(w.exportDir, path)
}

// StreamWriter writes CSV rows one at a time
type StreamWriter struct {
	csv    *csv.Writer
	count  int
	file   *os.File
	target string
}

// NewStreamWriter writes the optional BOM and header row to out. Close
// flushes but never closes out.
func NewStreamWriter(out io.Writer, headers []string, bom bool) (*StreamWriter, error) {
	if bom {
		if _, err := out.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}
	s := &StreamWriter{csv: csv.NewWriter(out)}
	if len(headers) > 0 {
		if err := s.csv.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return s, nil
}

func (s *StreamWriter) WriteRecord(record []string) error {
	if err := s.csv.Write(record); err != nil {
		return err
	}
	s.count++
	return nil
}

// Count is the number of rows written, header excluded
func (s *StreamWriter) Count() int {
	return s.count
}

// Close flushes buffered rows. For a stream from CSVWriter.Create it also
// renames the temporary file onto the target path.
func (s *StreamWriter) Close() error {
	s.csv.Flush()
	err := s.csv.Error()
	if s.file == nil {
		return err
	}

	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(s.file.Name())
		return err
	}
	if err := os.Rename(s.file.Name(), s.target); err != nil {
		os.Remove(s.file.Name())
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}

// Abort drops a file-backed stream without touching the target path
func (s *StreamWriter) Abort() {
	if s.file == nil {
		return
	}
	s.file.Close()
	os.Remove(s.file.Name())
}
