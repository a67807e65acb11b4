package handlers

import (
	"clipforge/domain/services"
)

// Services contains all the services needed for handlers
type Services struct {
	PipelineService services.PipelineService
	MergeService    services.MergeService
	ContentService  services.ContentService
}

// Handlers contains all HTTP handlers
type Handlers struct {
	VideoHandler      *VideoHandler
	ContentHandler    *ContentHandler
	MonitoringHandler *MonitoringHandler
}

// NewHandlers creates a new instance of Handlers with all dependencies
func NewHandlers(services *Services) *Handlers {
	return &Handlers{
		VideoHandler:      NewVideoHandler(services.PipelineService, services.MergeService, services.ContentService),
		ContentHandler:    NewContentHandler(services.ContentService),
		MonitoringHandler: NewMonitoringHandler(),
	}
}
