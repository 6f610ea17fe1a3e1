package cron

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sahilchouksey/qbank-extract/model"
)

// scratchMaxAge is how long an uploaded document may sit in the scratch
// directory before it is considered abandoned. The upload handler
// removes its own files; anything older than this survived a crash.
const scratchMaxAge = time.Hour

// cronLogRetention is how long cron execution logs are kept
const cronLogRetention = 30 * 24 * time.Hour

// CleanupScratchUploads removes abandoned upload files from the
// scratch directory
func (m *CronManager) CleanupScratchUploads() {
	jobName := "cleanup_scratch_uploads"

	entries, err := os.ReadDir(m.scratchDir)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to read scratch dir: %w", err))
		return
	}

	cutoff := time.Now().Add(-scratchMaxAge)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "upload-") {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(m.scratchDir, entry.Name())); err == nil {
			removed++
		}
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d abandoned upload files", removed))
}

// CleanupCronLogs deletes cron execution logs past the retention window
func (m *CronManager) CleanupCronLogs() {
	jobName := "cleanup_cron_logs"

	if m.db == nil {
		m.logJobComplete(jobName, "No database configured, skipped")
		return
	}

	cutoff := time.Now().Add(-cronLogRetention)
	result := m.db.Unscoped().
		Where("started_at < ?", cutoff).
		Delete(&model.CronJobLog{})

	if result.Error != nil {
		m.logJobError(jobName, result.Error)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Deleted %d old log rows", result.RowsAffected))
}
