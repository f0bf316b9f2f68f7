package importer

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const archiveDir = "old"

// DefaultRetentionDays is how long processed files stay in old/ before
// the cleanup pass removes them, unless configured otherwise.
const DefaultRetentionDays = 5

// DiscoverFiles lists the spreadsheet files of a source directory that
// have not been processed yet. Files named with a leading "day.month"
// date go last, ordered by that date (delivery order); undated files go
// first, alphabetically.
func DiscoverFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory %s: %w", dir, err)
	}

	var dated, undated []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !isSpreadsheet(name) || isProcessed(name) || isJunkFile(name) {
			continue
		}
		if _, ok := datePrefixKey(name); ok {
			dated = append(dated, name)
		} else {
			undated = append(undated, name)
		}
	}

	sort.Strings(undated)
	sort.Slice(dated, func(i, j int) bool {
		ki, _ := datePrefixKey(dated[i])
		kj, _ := datePrefixKey(dated[j])
		return ki < kj
	})
	return append(undated, dated...), nil
}

func isSpreadsheet(name string) bool {
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xls")
}

func isProcessed(name string) bool {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.Contains(base, "_procesado")
}

func isJunkFile(name string) bool {
	return strings.EqualFold(name, "deskto.xlsx")
}

// datePrefixKey parses a "day.month" file name prefix into a sortable
// key. Months from August onward sort before the following January so a
// delivery season spanning a year boundary keeps its order.
func datePrefixKey(name string) (int, bool) {
	parts := strings.Split(strings.TrimSuffix(name, filepath.Ext(name)), ".")
	if len(parts) < 2 {
		return 0, false
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || day < 1 || day > 31 || month < 1 || month > 12 {
		return 0, false
	}
	seasonMonth := month - 8
	if seasonMonth < 0 {
		seasonMonth += 12
	}
	return seasonMonth*100 + day, true
}

// ArchiveProcessed renames processed files with a "_procesado_YYYYMMDD"
// suffix and moves them into the old/ subdirectory. A file that cannot
// be moved is logged and left in place; the data is already persisted.
func ArchiveProcessed(dir string, files []string) error {
	dst := filepath.Join(dir, archiveDir)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory %s: %w", dst, err)
	}

	stamp := time.Now().Format("20060102")
	for _, f := range files {
		ext := filepath.Ext(f)
		base := strings.TrimSuffix(f, ext)
		target := filepath.Join(dst, fmt.Sprintf("%s_procesado_%s%s", base, stamp, ext))
		if err := os.Rename(filepath.Join(dir, f), target); err != nil {
			log.Printf("Failed to archive %s: %v", f, err)
		}
	}
	return nil
}

// CleanupOld walks the base directory for old/ archive folders and
// removes archived files past the retention window. A non-positive
// retention keeps the default.
func CleanupOld(baseDir string, retentionDays int) {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	retention := time.Duration(retentionDays) * 24 * time.Hour
	filepath.WalkDir(baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() || d.Name() != archiveDir {
			return nil
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			log.Printf("Failed to read archive %s: %v", path, err)
			return filepath.SkipDir
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			if time.Since(info.ModTime()) > retention {
				full := filepath.Join(path, e.Name())
				if err := os.Remove(full); err != nil {
					log.Printf("Failed to remove archived file %s: %v", full, err)
				} else {
					log.Printf("Removed archived file %s", full)
				}
			}
		}
		return filepath.SkipDir
	})
}
