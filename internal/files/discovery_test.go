package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("a,b\n1,2\n"), 0644))
	}
}

func TestFindCSVFiles(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		dirs     []string
		expected []string
	}{
		{
			name:     "only CSV files sorted by name",
			files:    []string{"b.csv", "a.CSV", "c.csv"},
			expected: []string{"a.CSV", "b.csv", "c.csv"},
		},
		{
			name:     "mixed file types",
			files:    []string{"data.csv", "report.xlsx", "notes.txt"},
			expected: []string{"data.csv"},
		},
		{
			name:     "directories are skipped",
			files:    []string{"orders.csv"},
			dirs:     []string{"archive.csv"},
			expected: []string{"orders.csv"},
		},
		{
			name: "empty directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files...)
			for _, d := range tt.dirs {
				require.NoError(t, os.Mkdir(filepath.Join(dir, d), 0755))
			}

			found, err := NewDiscovery(dir).FindCSVFiles()
			require.NoError(t, err)

			var names []string
			for _, f := range found {
				names = append(names, f.Name)
				assert.Equal(t, filepath.Join(dir, f.Name), f.Path)
				assert.Equal(t, int64(8), f.Size)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestFindCSVFilesMissingDirectory(t *testing.T) {
	_, err := NewDiscovery(filepath.Join(t.TempDir(), "absent")).FindCSVFiles()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read directory")
}

func TestInventory(t *testing.T) {
	required := []string{"orders.csv", "items.csv"}
	optional := []string{"payments.csv"}

	tests := []struct {
		name            string
		files           []string
		complete        bool
		missingRequired []string
		missingOptional []string
		unexpected      []string
	}{
		{
			name:     "all present",
			files:    []string{"orders.csv", "items.csv", "payments.csv"},
			complete: true,
		},
		{
			name:            "optional missing",
			files:           []string{"orders.csv", "items.csv"},
			complete:        true,
			missingOptional: []string{"payments.csv"},
		},
		{
			name:            "required missing with extra file",
			files:           []string{"items.csv", "legacy.csv"},
			missingRequired: []string{"orders.csv"},
			missingOptional: []string{"payments.csv"},
			unexpected:      []string{"legacy.csv"},
		},
		{
			name:            "names compare exactly",
			files:           []string{"ORDERS.csv", "items.csv", "payments.csv"},
			missingRequired: []string{"orders.csv"},
			unexpected:      []string{"ORDERS.csv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files...)

			inv, err := NewDiscovery(dir).Inventory(required, optional)
			require.NoError(t, err)

			assert.Equal(t, tt.complete, inv.Complete())
			assert.Equal(t, tt.missingRequired, inv.MissingRequired)
			assert.Equal(t, tt.missingOptional, inv.MissingOptional)
			assert.Equal(t, tt.unexpected, inv.Unexpected)
			assert.Len(t, inv.Present, len(tt.files)-len(tt.unexpected))
		})
	}
}

func TestInventoryLastModified(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "orders.csv", "items.csv")
	newest := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "items.csv"), newest, newest))

	inv, err := NewDiscovery(dir).Inventory([]string{"orders.csv", "items.csv"}, nil)
	require.NoError(t, err)

	at, ok := inv.LastModified()
	require.True(t, ok)
	assert.True(t, newest.Equal(at))

	_, ok = (&Inventory{}).LastModified()
	assert.False(t, ok)
}

func TestGetLatestFile(t *testing.T) {
	tests := []struct {
		name        string
		files       []FileInfo
		expectFound bool
		expectedIdx int
	}{
		{
			name: "multiple files with different times",
			files: []FileInfo{
				{Name: "old.csv", ModTime: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
				{Name: "latest.csv", ModTime: time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)},
				{Name: "middle.csv", ModTime: time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)},
			},
			expectFound: true,
			expectedIdx: 1,
		},
		{
			name:        "empty slice",
			files:       []FileInfo{},
			expectFound: false,
		},
		{
			name: "files with same time",
			files: []FileInfo{
				{Name: "first.csv", ModTime: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
				{Name: "second.csv", ModTime: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
			},
			expectFound: true,
			expectedIdx: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			latest, found := GetLatestFile(tt.files)

			assert.Equal(t, tt.expectFound, found)
			if tt.expectFound {
				assert.Equal(t, tt.files[tt.expectedIdx].Name, latest.Name)
			}
		})
	}
}
