package serviceimpl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"clipforge/pkg/config"
	"clipforge/pkg/scheduler"
)

type fakeScheduler struct {
	jobs map[string]string
}

func (f *fakeScheduler) Start()          {}
func (f *fakeScheduler) Stop()           {}
func (f *fakeScheduler) IsRunning() bool { return true }
func (f *fakeScheduler) AddJob(id, cronExpr string, task func()) error {
	if f.jobs == nil {
		f.jobs = map[string]string{}
	}
	f.jobs[id] = cronExpr
	return nil
}
func (f *fakeScheduler) RemoveJob(id string) error                 { return nil }
func (f *fakeScheduler) ListJobs() map[string]*scheduler.JobInfo { return nil }

func TestCleanupRemovesOnlyStaleArtifacts(t *testing.T) {
	tempRoot := t.TempDir()
	downloadDir := t.TempDir()
	old := time.Now().Add(-48 * time.Hour)

	staleDir := filepath.Join(tempRoot, "merge_stale")
	freshDir := filepath.Join(tempRoot, "merge_fresh")
	otherDir := filepath.Join(tempRoot, "not_a_merge_dir")
	for _, d := range []string{staleDir, freshDir, otherDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Chtimes(staleDir, old, old); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(otherDir, old, old); err != nil {
		t.Fatal(err)
	}

	staleFile := filepath.Join(downloadDir, "old_segment.mp4")
	freshFile := filepath.Join(downloadDir, "new_segment.mp4")
	for _, f := range []string{staleFile, freshFile} {
		if err := os.WriteFile(f, []byte("video"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Chtimes(staleFile, old, old); err != nil {
		t.Fatal(err)
	}

	svc := NewCleanupService(config.CleanupConfig{
		TempMaxAge:  24 * time.Hour,
		DownloadAge: 24 * time.Hour,
	}, tempRoot, downloadDir, &fakeScheduler{})

	svc.RunCleanup(context.Background())

	if _, err := os.Stat(staleDir); !os.IsNotExist(err) {
		t.Error("stale merge dir must be removed")
	}
	if _, err := os.Stat(freshDir); err != nil {
		t.Error("fresh merge dir must survive")
	}
	if _, err := os.Stat(otherDir); err != nil {
		t.Error("non-merge dirs must never be touched")
	}
	if _, err := os.Stat(staleFile); !os.IsNotExist(err) {
		t.Error("stale download must be removed")
	}
	if _, err := os.Stat(freshFile); err != nil {
		t.Error("fresh download must survive")
	}
}

func TestCleanupRegistersScheduledJob(t *testing.T) {
	sched := &fakeScheduler{}
	svc := NewCleanupService(config.CleanupConfig{Cron: "0 3 * * *"}, t.TempDir(), t.TempDir(), sched)

	if err := svc.RegisterCleanupJob(); err != nil {
		t.Fatalf("RegisterCleanupJob() error = %v", err)
	}
	if sched.jobs["storage_cleanup"] != "0 3 * * *" {
		t.Errorf("jobs = %v, want storage_cleanup at 0 3 * * *", sched.jobs)
	}
}
