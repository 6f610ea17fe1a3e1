package cron

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCleanupScratchUploads(t *testing.T) {
	dir := t.TempDir()

	oldFile := filepath.Join(dir, "upload-1700000000.pdf")
	if err := os.WriteFile(oldFile, []byte("%PDF-"), 0644); err != nil {
		t.Fatal(err)
	}
	stale := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldFile, stale, stale); err != nil {
		t.Fatal(err)
	}

	freshFile := filepath.Join(dir, "upload-1800000000.pdf")
	if err := os.WriteFile(freshFile, []byte("%PDF-"), 0644); err != nil {
		t.Fatal(err)
	}

	// Unrelated files must never be touched, whatever their age
	otherFile := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(otherFile, []byte("keep"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(otherFile, stale, stale); err != nil {
		t.Fatal(err)
	}

	m := NewCronManager(nil, dir)
	m.CleanupScratchUploads()

	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("stale upload file survived cleanup")
	}
	if _, err := os.Stat(freshFile); err != nil {
		t.Errorf("fresh upload file removed: %v", err)
	}
	if _, err := os.Stat(otherFile); err != nil {
		t.Errorf("unrelated file removed: %v", err)
	}
}
