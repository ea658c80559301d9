package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string    `json:"-"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified_at"`
}

// Discovery finds source files inside one data directory
type Discovery struct {
	dataDir string
}

// NewDiscovery creates a discovery rooted at dataDir
func NewDiscovery(dataDir string) *Discovery {
	return &Discovery{dataDir: dataDir}
}

// FindCSVFiles lists the CSV files directly under the data directory,
// sorted by name. The extension match ignores case.
func (d *Discovery) FindCSVFiles() ([]FileInfo, error) {
	entries, err := os.ReadDir(d.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", d.dataDir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(d.dataDir, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Inventory is the state of the expected source files
type Inventory struct {
	Present         []FileInfo `json:"present"`
	MissingRequired []string   `json:"missing_required,omitempty"`
	MissingOptional []string   `json:"missing_optional,omitempty"`
	Unexpected      []string   `json:"unexpected,omitempty"`
}

// Complete reports whether every required file is present
func (inv *Inventory) Complete() bool {
	return len(inv.MissingRequired) == 0
}

// LastModified is the newest modification time among the present files
func (inv *Inventory) LastModified() (time.Time, bool) {
	latest, ok := GetLatestFile(inv.Present)
	return latest.ModTime, ok
}

// Inventory matches the CSV files on disk against the required and optional
// names. Names compare exactly; other CSV files are listed as unexpected.
func (d *Discovery) Inventory(required, optional []string) (*Inventory, error) {
	found, err := d.FindCSVFiles()
	if err != nil {
		return nil, err
	}

	byName := make(map[string]FileInfo, len(found))
	for _, f := range found {
		byName[f.Name] = f
	}

	inv := &Inventory{}
	expected := make(map[string]bool, len(required)+len(optional))
	collect := func(names []string, missing *[]string) {
		for _, name := range names {
			expected[name] = true
			if f, ok := byName[name]; ok {
				inv.Present = append(inv.Present, f)
			} else {
				*missing = append(*missing, name)
			}
		}
	}
	collect(required, &inv.MissingRequired)
	collect(optional, &inv.MissingOptional)

	for _, f := range found {
		if !expected[f.Name] {
			inv.Unexpected = append(inv.Unexpected, f.Name)
		}
	}
	return inv, nil
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}
