package services

import "context"

// MaintenanceService sweeps stale merge temp dirs and old cached
// segment downloads on a schedule.
type MaintenanceService interface {
	RegisterCleanupJob() error
	RunCleanup(ctx context.Context)
}
