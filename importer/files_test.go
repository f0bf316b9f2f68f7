package importer

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDiscoverFilesOrdering(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"15.9.xlsx",
		"2.10.xlsx",
		"30.8.xlsx",
		"5.1.xlsx",
		"toa_export.xlsx",
		"autin.xlsx",
		"export_procesado_20250810.xlsx",
		"deskto.xlsx",
		"notes.txt",
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := DiscoverFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	// Undated files first alphabetically, then dated files in delivery
	// order; the season starts in August so January sorts after October.
	want := []string{"autin.xlsx", "toa_export.xlsx", "30.8.xlsx", "15.9.xlsx", "2.10.xlsx", "5.1.xlsx"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DiscoverFiles = %v, want %v", got, want)
	}
}

func TestDatePrefixKey(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"15.9.xlsx", true},
		{"5.1.xlsx", true},
		{"toa_export.xlsx", false},
		{"40.9.xlsx", false},
		{"15.13.xlsx", false},
	}
	for _, tt := range tests {
		if _, ok := datePrefixKey(tt.name); ok != tt.ok {
			t.Errorf("datePrefixKey(%q) ok = %v, want %v", tt.name, ok, tt.ok)
		}
	}
}

func TestDiscoverIncidentFiles(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"export_b.xlsx", "export_a.xlsx", "alarmas.xlsx", "remedy_base.xlsx"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := DiscoverIncidentFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"export_a.xlsx", "export_b.xlsx"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DiscoverIncidentFiles = %v, want %v", got, want)
	}
}

func TestArchiveProcessed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "export.xlsx"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ArchiveProcessed(dir, []string{"export.xlsx"}); err != nil {
		t.Fatal(err)
	}

	stamp := time.Now().Format("20060102")
	archived := filepath.Join(dir, archiveDir, "export_procesado_"+stamp+".xlsx")
	if _, err := os.Stat(archived); err != nil {
		t.Errorf("archived file not found: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "export.xlsx")); !os.IsNotExist(err) {
		t.Error("original file still present after archiving")
	}
}

func TestCleanupOldRemovesExpired(t *testing.T) {
	dir := t.TempDir()
	arch := filepath.Join(dir, archiveDir)
	if err := os.MkdirAll(arch, 0o755); err != nil {
		t.Fatal(err)
	}

	expired := filepath.Join(arch, "old_procesado_20240101.xlsx")
	fresh := filepath.Join(arch, "fresh_procesado.xlsx")
	for _, f := range []string{expired, fresh} {
		if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-DefaultRetentionDays*24*time.Hour - time.Hour)
	if err := os.Chtimes(expired, past, past); err != nil {
		t.Fatal(err)
	}

	CleanupOld(dir, 0)

	if _, err := os.Stat(expired); !os.IsNotExist(err) {
		t.Error("expired archive file survived cleanup")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh archive file removed: %v", err)
	}
}
