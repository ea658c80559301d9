package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmetrics/internal/shared/testutil"
)

func newTestWriter(t *testing.T) (*CSVWriter, string) {
	t.Helper()
	dir := t.TempDir()
	logger, _ := testutil.NewTestLogger(t)
	return NewCSVWriter(dir, logger), dir
}

func readCSVFile(t *testing.T, path string) (bool, [][]string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	hasBOM := bytes.HasPrefix(data, utf8BOM)
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
	require.NoError(t, err)
	return hasBOM, records
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name string
		path string
		rows [][]string
		want [][]string
	}{
		{
			name: "header and rows",
			path: "states.csv",
			rows: [][]string{{"SP", "150.00"}, {"RJ", "200.00"}},
			want: [][]string{{"state", "revenue"}, {"SP", "150.00"}, {"RJ", "200.00"}},
		},
		{
			name: "nested directory",
			path: filepath.Join("2023", "01", "states.csv"),
			want: [][]string{{"state", "revenue"}},
		},
		{
			name: "quoted values",
			path: "quoted.csv",
			rows: [][]string{{"sao paulo, centro", `say "hi"`}},
			want: [][]string{{"state", "revenue"}, {"sao paulo, centro", `say "hi"`}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, dir := newTestWriter(t)

			stream, err := w.Create(tt.path, []string{"state", "revenue"})
			require.NoError(t, err)
			for _, row := range tt.rows {
				require.NoError(t, stream.WriteRecord(row))
			}
			assert.Equal(t, len(tt.rows), stream.Count())
			require.NoError(t, stream.Close())

			hasBOM, records := readCSVFile(t, filepath.Join(dir, tt.path))
			assert.True(t, hasBOM)
			assert.Equal(t, tt.want, records)
		})
	}
}

func TestCreateAbsolutePath(t *testing.T) {
	w, exportDir := newTestWriter(t)
	abs := filepath.Join(t.TempDir(), "abs.csv")

	stream, err := w.Create(abs, []string{"x"})
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	_, records := readCSVFile(t, abs)
	assert.Equal(t, [][]string{{"x"}}, records)

	entries, err := os.ReadDir(exportDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateHidesPartialFile(t *testing.T) {
	w, dir := newTestWriter(t)
	target := filepath.Join(dir, "sales.csv")

	stream, err := w.Create("sales.csv", []string{"order_id"})
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"ord1"}))

	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err), "target must not exist before Close")

	stream.Abort()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "aborted stream leaves no files behind")
}

func TestCreateReplacesExistingFile(t *testing.T) {
	w, dir := newTestWriter(t)
	target := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(target, []byte("stale\n"), 0644))

	stream, err := w.Create("sales.csv", []string{"order_id"})
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	_, records := readCSVFile(t, target)
	assert.Equal(t, [][]string{{"order_id"}}, records)
}

func TestNewStreamWriterLeavesWriterOpen(t *testing.T) {
	var buf bytes.Buffer

	stream, err := NewStreamWriter(&buf, []string{"h"}, false)
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"v"}))
	require.NoError(t, stream.Close())
	stream.Abort()

	assert.Equal(t, "h\nv\n", buf.String())
}
