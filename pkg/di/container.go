package di

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"clipforge/application/serviceimpl"
	"clipforge/domain/ports"
	"clipforge/domain/services"
	"clipforge/infrastructure/concat"
	"clipforge/infrastructure/messaging"
	"clipforge/infrastructure/storage"
	"clipforge/infrastructure/thumbnail"
	"clipforge/infrastructure/videogen"
	"clipforge/interfaces/api/handlers"
	"clipforge/pkg/config"
	"clipforge/pkg/logger"
	"clipforge/pkg/scheduler"
)

type Container struct {
	// Configuration
	Config *config.Config

	// Infrastructure
	NATSConn          *nats.Conn
	Storage           ports.ArtifactStorePort
	VideoGenerator    ports.VideoGeneratorPort
	VideoDownloader   ports.VideoDownloaderPort
	Thumbnailer       ports.ThumbnailPort
	ProgressPublisher ports.ProgressPublisherPort
	EventScheduler    scheduler.EventScheduler

	// Services
	PipelineService    services.PipelineService
	MergeService       services.MergeService
	ContentService     services.ContentService
	MaintenanceService services.MaintenanceService
}

func NewContainer() *Container {
	return &Container{}
}

func (c *Container) Initialize() error {
	if err := c.initConfig(); err != nil {
		return err
	}

	if err := c.initLogger(); err != nil {
		return err
	}

	if err := c.initInfrastructure(); err != nil {
		return err
	}

	if err := c.initServices(); err != nil {
		return err
	}

	if err := c.initScheduler(); err != nil {
		return err
	}

	return nil
}

func (c *Container) initConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg
	logger.Info("Configuration loaded")
	return nil
}

func (c *Container) initLogger() error {
	logConfig := logger.Config{
		Level:      c.Config.Log.Level,
		Format:     c.Config.Log.Format,
		Output:     c.Config.Log.Output,
		FilePath:   c.Config.Log.FilePath,
		MaxSize:    c.Config.Log.MaxSize,
		MaxBackups: c.Config.Log.MaxBackups,
		MaxAge:     c.Config.Log.MaxAge,
		Compress:   c.Config.Log.Compress,
	}

	if err := logger.Init(logConfig); err != nil {
		return err
	}

	logger.Info("Logger initialized",
		"level", c.Config.Log.Level,
		"format", c.Config.Log.Format,
		"output", c.Config.Log.Output,
	)
	return nil
}

func (c *Container) initInfrastructure() error {
	// Artifact storage
	switch c.Config.Storage.Type {
	case "s3":
		store, err := storage.NewS3Storage(storage.S3StorageConfig{
			Endpoint:  c.Config.Storage.S3.Endpoint,
			AccessKey: c.Config.Storage.S3.AccessKey,
			SecretKey: c.Config.Storage.S3.SecretKey,
			Bucket:    c.Config.Storage.S3.Bucket,
			UseSSL:    c.Config.Storage.S3.UseSSL,
			Region:    c.Config.Storage.S3.Region,
			PublicURL: c.Config.Storage.S3.PublicURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		c.Storage = store
	default:
		store, err := storage.NewLocalStorage(storage.LocalStorageConfig{
			BasePath: c.Config.Storage.BasePath,
			BaseURL:  c.Config.Storage.BaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize local storage: %w", err)
		}
		c.Storage = store
	}
	logger.Info("Storage initialized", "provider", c.Storage.GetProviderName())

	// NATS progress publishing (optional)
	if c.Config.NATS.URL != "" {
		conn, err := messaging.Connect(c.Config.NATS.URL)
		if err != nil {
			logger.Warn("NATS unavailable, progress events disabled", "error", err)
			c.ProgressPublisher = messaging.NewNoopProgressPublisher()
		} else {
			c.NATSConn = conn
			c.ProgressPublisher = messaging.NewNATSProgressPublisher(conn)
			logger.Info("NATS progress publisher initialized", "url", c.Config.NATS.URL)
		}
	} else {
		c.ProgressPublisher = messaging.NewNoopProgressPublisher()
		logger.Info("NATS not configured, progress events disabled")
	}

	// Veo generation client
	veoClient, err := videogen.NewVeoClient(context.Background(), c.Config.VideoGen)
	if err != nil {
		return fmt.Errorf("failed to initialize video generator: %w", err)
	}
	c.VideoGenerator = veoClient
	c.VideoDownloader = videogen.NewDownloader(c.Config.VideoGen)
	logger.Info("Video generator initialized", "model", c.Config.VideoGen.Model)

	// Thumbnail generator shares the genai client
	c.Thumbnailer = thumbnail.NewGenerator(veoClient.GenAI(), c.Config.VideoGen, c.Config.Merge)

	return nil
}

func (c *Container) initServices() error {
	c.PipelineService = serviceimpl.NewPipelineService(
		c.Config.Pipeline,
		c.Config.VideoGen.DownloadDir,
		c.VideoGenerator,
		c.VideoDownloader,
		c.ProgressPublisher,
	)
	logger.Info("Pipeline service initialized")

	// Concat backends in fallback order: stream copy first, re-encode
	// when segments do not share a codec
	concatenators := []ports.VideoConcatenator{
		concat.NewStreamCopyConcat(c.Config.Merge.FFmpegPath),
		concat.NewReencodeConcat(c.Config.Merge.FFmpegPath),
	}

	c.MergeService = serviceimpl.NewMergeService(
		c.Config.Merge,
		concatenators,
		c.VideoDownloader,
		c.Thumbnailer,
		c.Storage,
	)
	logger.Info("Merge service initialized")

	c.ContentService = serviceimpl.NewContentService(c.Storage, c.Config.Pipeline.ContentDir)
	logger.Info("Content service initialized")

	return nil
}

func (c *Container) initScheduler() error {
	c.EventScheduler = scheduler.NewEventScheduler()

	c.MaintenanceService = serviceimpl.NewCleanupService(
		c.Config.Cleanup,
		c.Config.Merge.TempDir,
		c.Config.VideoGen.DownloadDir,
		c.EventScheduler,
	)

	if c.Config.Cleanup.Enabled {
		if err := c.MaintenanceService.RegisterCleanupJob(); err != nil {
			return fmt.Errorf("failed to register cleanup job: %w", err)
		}
		c.EventScheduler.Start()
		logger.Info("Cleanup job scheduled", "cron", c.Config.Cleanup.Cron)
	}

	return nil
}

// GetConfig returns the loaded configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetHandlerServices bundles the services the HTTP handlers need
func (c *Container) GetHandlerServices() *handlers.Services {
	return &handlers.Services{
		PipelineService: c.PipelineService,
		MergeService:    c.MergeService,
		ContentService:  c.ContentService,
	}
}

// Cleanup releases infrastructure resources
func (c *Container) Cleanup() error {
	if c.EventScheduler != nil && c.EventScheduler.IsRunning() {
		c.EventScheduler.Stop()
		logger.Info("Scheduler stopped")
	}

	if c.NATSConn != nil {
		c.NATSConn.Close()
		logger.Info("NATS connection closed")
	}

	return nil
}
