package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	NATS     NATSConfig
	JWT      JWTConfig
	Log      LogConfig
	VideoGen VideoGenConfig
	Pipeline PipelineConfig
	Merge    MergeConfig
	Storage  StorageConfig
	Cleanup  CleanupConfig
}

type AppConfig struct {
	Name string
	Port string
	Env  string
}

// NATSConfig for progress event publishing. Optional; empty URL disables it.
type NATSConfig struct {
	URL string // nats://localhost:4222
}

type JWTConfig struct {
	Secret string
}

type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, text
	Output     string // stdout, file, both
	FilePath   string // logs/app.log
	MaxSize    int    // MB
	MaxBackups int    // number of backup files
	MaxAge     int    // days
	Compress   bool   // compress rotated backups
}

// VideoGenConfig for the Veo generation client
type VideoGenConfig struct {
	APIKey        string        // Gemini API key (same key works for Veo and Imagen)
	Model         string        // veo model name
	ImageModel    string        // imagen model name for thumbnails
	PollInterval  time.Duration // delay between operation polls
	MaxPollWait   time.Duration // ceiling for a single generation operation
	MaxAttempts   int           // attempts per request inside the client
	BackoffBase   time.Duration // exponential backoff base for transient errors
	DownloadDir   string        // where segment videos are cached locally
	DownloadRetry int           // attempts per auth strategy when downloading
	DownloadBase  time.Duration // exponential backoff base for download retries
}

// PipelineConfig for the segment runner and retry coordinator
type PipelineConfig struct {
	MaxAttempts   int           // outer attempts per segment
	AttemptDelay  time.Duration // fixed delay between outer attempts
	RetryAttempts int           // default budget for a retry round
	RetryDelay    time.Duration // fixed delay between retry-round attempts
	ContentDir    string        // generated_content root
}

// MergeConfig for the concat service
type MergeConfig struct {
	OutputDir  string // merged_videos
	TempDir    string // root for per-merge temp dirs
	FFmpegPath string // path to ffmpeg binary
}

type StorageConfig struct {
	Type     string // local, s3
	BasePath string // for local: ./data
	BaseURL  string // public URL for local files
	S3       S3Config
}

type S3Config struct {
	Endpoint  string // minio:9000 or xxx.r2.cloudflarestorage.com
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	PublicURL string // public access URL (optional)
}

// CleanupConfig for the scheduled temp-dir sweeper
type CleanupConfig struct {
	Cron        string        // cron expression (default: 3 AM daily)
	TempMaxAge  time.Duration // max age for merge temp dirs
	DownloadAge time.Duration // max age for cached segment downloads
	Enabled     bool
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		// no .env file is fine, environment variables are used directly
	}

	logMaxSize, _ := strconv.Atoi(getEnv("LOG_MAX_SIZE", "100"))
	logMaxBackups, _ := strconv.Atoi(getEnv("LOG_MAX_BACKUPS", "5"))
	logMaxAge, _ := strconv.Atoi(getEnv("LOG_MAX_AGE", "30"))
	logCompress := getEnv("LOG_COMPRESS", "true") == "true"

	pollInterval := getDuration("VIDEOGEN_POLL_INTERVAL", 10*time.Second)
	maxPollWait := getDuration("VIDEOGEN_MAX_POLL_WAIT", 10*time.Minute)
	genAttempts, _ := strconv.Atoi(getEnv("VIDEOGEN_MAX_ATTEMPTS", "3"))
	backoffBase := getDuration("VIDEOGEN_BACKOFF_BASE", 5*time.Second)
	dlRetry, _ := strconv.Atoi(getEnv("VIDEOGEN_DOWNLOAD_RETRY", "3"))
	dlBase := getDuration("VIDEOGEN_DOWNLOAD_BACKOFF", 3*time.Second)

	pipeAttempts, _ := strconv.Atoi(getEnv("PIPELINE_MAX_ATTEMPTS", "3"))
	pipeDelay := getDuration("PIPELINE_ATTEMPT_DELAY", 30*time.Second)
	retryAttempts, _ := strconv.Atoi(getEnv("PIPELINE_RETRY_ATTEMPTS", "3"))
	retryDelay := getDuration("PIPELINE_RETRY_DELAY", 45*time.Second)

	s3UseSSL := getEnv("S3_USE_SSL", "false") == "true"

	cleanupEnabled := getEnv("CLEANUP_ENABLED", "true") == "true"
	tempMaxAge := getDuration("CLEANUP_TEMP_MAX_AGE", 24*time.Hour)
	downloadAge := getDuration("CLEANUP_DOWNLOAD_MAX_AGE", 7*24*time.Hour)

	config := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "Clipforge"),
			Port: getEnv("APP_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key"),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			Output:     getEnv("LOG_OUTPUT", "both"),
			FilePath:   getEnv("LOG_FILE", "logs/app.log"),
			MaxSize:    logMaxSize,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAge,
			Compress:   logCompress,
		},
		VideoGen: VideoGenConfig{
			APIKey:        getEnv("GEMINI_API_KEY", ""),
			Model:         getEnv("VIDEOGEN_MODEL", "veo-3.1-generate-preview"),
			ImageModel:    getEnv("THUMBNAIL_MODEL", "imagen-3.0-generate-002"),
			PollInterval:  pollInterval,
			MaxPollWait:   maxPollWait,
			MaxAttempts:   genAttempts,
			BackoffBase:   backoffBase,
			DownloadDir:   getEnv("VIDEOGEN_DOWNLOAD_DIR", "downloads"),
			DownloadRetry: dlRetry,
			DownloadBase:  dlBase,
		},
		Pipeline: PipelineConfig{
			MaxAttempts:   pipeAttempts,
			AttemptDelay:  pipeDelay,
			RetryAttempts: retryAttempts,
			RetryDelay:    retryDelay,
			ContentDir:    getEnv("CONTENT_DIR", "generated_content"),
		},
		Merge: MergeConfig{
			OutputDir:  getEnv("MERGE_OUTPUT_DIR", "merged_videos"),
			TempDir:    getEnv("MERGE_TEMP_DIR", "temp"),
			FFmpegPath: getEnv("FFMPEG_PATH", "ffmpeg"),
		},
		Storage: StorageConfig{
			Type:     getEnv("STORAGE_TYPE", "local"),
			BasePath: getEnv("STORAGE_BASE_PATH", "./data"),
			BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/files"),
			S3: S3Config{
				Endpoint:  getEnv("S3_ENDPOINT", "localhost:9000"),
				AccessKey: getEnv("S3_ACCESS_KEY", "minioadmin"),
				SecretKey: getEnv("S3_SECRET_KEY", "minioadmin"),
				Bucket:    getEnv("S3_BUCKET", "clipforge"),
				UseSSL:    s3UseSSL,
				Region:    getEnv("S3_REGION", "auto"),
				PublicURL: getEnv("S3_PUBLIC_URL", ""),
			},
		},
		Cleanup: CleanupConfig{
			Cron:        getEnv("CLEANUP_CRON", "0 3 * * *"),
			TempMaxAge:  tempMaxAge,
			DownloadAge: downloadAge,
			Enabled:     cleanupEnabled,
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getDuration parses an env var like "30s" or "10m", falling back on error
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// IsDevelopment reports whether the app runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
