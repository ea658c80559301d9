package dataprocessing

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	apperrors "shopmetrics/internal/errors"
)

const utf8BOM = "\ufeff"

// csvSource is a fully read CSV file with its header indexed by name
type csvSource struct {
	table   string
	columns []string
	index   map[string]int
	records [][]string
}

func openCSV(path, table string) (*csvSource, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewMissingFileError(path)
		}
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer file.Close()

	return readCSV(file, table)
}

func readCSV(r io.Reader, table string) (*csvSource, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return &csvSource{table: table, index: map[string]int{}}, nil
	}
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read %s header", table), err)
	}

	src := &csvSource{
		table:   table,
		columns: make([]string, 0, len(header)),
		index:   make(map[string]int, len(header)),
	}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if _, dup := src.index[name]; dup || name == "" {
			continue
		}
		src.index[name] = i
		src.columns = append(src.columns, name)
	}

	src.records, err = reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read %s rows", table), err)
	}
	return src, nil
}

func (s *csvSource) has(col string) bool {
	_, ok := s.index[col]
	return ok
}

// value returns the trimmed cell for col, or "" when the column or cell is absent
func (s *csvSource) value(rec []string, col string) string {
	i, ok := s.index[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (s *csvSource) requireColumns(required []string) error {
	var missing []string
	for _, c := range required {
		if !s.has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewSchemaError(s.table, missing)
	}
	return nil
}

// cellError reports a malformed cell with its 1-based file line
func (s *csvSource) cellError(row int, col string, err error) error {
	return apperrors.NewParsingError(
		fmt.Sprintf("invalid %s value in %s at line %d", col, s.table, row+2), err).
		WithContext("table", s.table).
		WithContext("column", col).
		WithContext("line", row+2)
}
