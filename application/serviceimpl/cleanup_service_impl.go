package serviceimpl

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipforge/domain/services"
	"clipforge/pkg/config"
	"clipforge/pkg/logger"
	"clipforge/pkg/scheduler"
)

// CleanupServiceImpl sweeps leftovers a crashed merge or an abandoned
// batch can leave behind: stale merge_* temp dirs and old cached
// segment downloads.
type CleanupServiceImpl struct {
	config      config.CleanupConfig
	tempDir     string
	downloadDir string
	scheduler   scheduler.EventScheduler
}

// Ensure CleanupServiceImpl implements MaintenanceService interface
var _ services.MaintenanceService = (*CleanupServiceImpl)(nil)

func NewCleanupService(
	cfg config.CleanupConfig,
	tempDir string,
	downloadDir string,
	eventScheduler scheduler.EventScheduler,
) services.MaintenanceService {
	svc := &CleanupServiceImpl{
		config:      cfg,
		tempDir:     tempDir,
		downloadDir: downloadDir,
		scheduler:   eventScheduler,
	}

	if svc.config.Cron == "" {
		svc.config.Cron = "0 3 * * *" // 3 AM daily
	}
	if svc.config.TempMaxAge == 0 {
		svc.config.TempMaxAge = 24 * time.Hour
	}
	if svc.config.DownloadAge == 0 {
		svc.config.DownloadAge = 7 * 24 * time.Hour
	}

	return svc
}

// RegisterCleanupJob registers the sweep with the scheduler
func (s *CleanupServiceImpl) RegisterCleanupJob() error {
	return s.scheduler.AddJob("storage_cleanup", s.config.Cron, func() {
		s.RunCleanup(context.Background())
	})
}

// RunCleanup runs all cleanup tasks
func (s *CleanupServiceImpl) RunCleanup(ctx context.Context) {
	logger.InfoContext(ctx, "Starting storage cleanup")

	tempCleaned := s.cleanupMergeTempDirs(ctx)
	downloadsCleaned, downloadBytes := s.cleanupOldDownloads(ctx)

	logger.InfoContext(ctx, "Storage cleanup completed",
		"temp_dirs_removed", tempCleaned,
		"downloads_removed", downloadsCleaned,
		"download_bytes_freed", downloadBytes,
	)
}

// cleanupMergeTempDirs removes merge_* dirs past their max age. A live
// merge holds a dir younger than the cutoff, so it is never touched.
func (s *CleanupServiceImpl) cleanupMergeTempDirs(ctx context.Context) int {
	if s.tempDir == "" {
		return 0
	}

	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		return 0
	}

	cutoff := time.Now().Add(-s.config.TempMaxAge)
	count := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "merge_") {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		full := filepath.Join(s.tempDir, e.Name())
		if err := os.RemoveAll(full); err != nil {
			logger.WarnContext(ctx, "Failed to remove stale merge dir", "dir", full, "error", err)
			continue
		}
		count++
	}
	return count
}

// cleanupOldDownloads removes cached segment videos past their max age
func (s *CleanupServiceImpl) cleanupOldDownloads(ctx context.Context) (int, int64) {
	if s.downloadDir == "" {
		return 0, 0
	}

	count := 0
	var totalSize int64
	cutoff := time.Now().Add(-s.config.DownloadAge)

	err := filepath.Walk(s.downloadDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if info.IsDir() {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			size := info.Size()
			if rmErr := os.Remove(path); rmErr == nil {
				count++
				totalSize += size
			}
		}
		return nil
	})
	if err != nil {
		logger.WarnContext(ctx, "Download cleanup walk failed", "error", err)
	}

	return count, totalSize
}
