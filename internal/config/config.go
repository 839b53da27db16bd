package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	S3         S3Config
	FileStore  FileStoreConfig
	Completion CompletionConfig
	Analysis   AnalysisConfig
	Contact    ContactConfig
	Email      EmailConfig
	Log        LogConfig
	CORS       CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds object storage settings for published artifacts.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// FileStoreConfig selects and configures the remote document store.
// Provider is "httpfs" (file-manager server) or "s3".
type FileStoreConfig struct {
	Provider    string `mapstructure:"provider"`
	Endpoint    string `mapstructure:"endpoint"`
	Prefix      string `mapstructure:"prefix"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// CompletionConfig holds generative-model client settings.
type CompletionConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// AnalysisConfig holds the token-budget and fan-out ceilings for the
// document pipeline.
type AnalysisConfig struct {
	MaxCallTokens    int    `mapstructure:"max_call_tokens"`
	MaxChunkTokens   int    `mapstructure:"max_chunk_tokens"`
	MaxFilesPerChunk int    `mapstructure:"max_files_per_chunk"`
	MaxConcurrency   int    `mapstructure:"max_concurrency"`
	MaxRetries       int    `mapstructure:"max_retries"`
	WorkspaceDir     string `mapstructure:"workspace_dir"`
	KeepWorkspace    bool   `mapstructure:"keep_workspace"`
}

// ContactConfig holds contact-enrichment lookup settings.
type ContactConfig struct {
	APIToken    string `mapstructure:"api_token"`
	Endpoint    string `mapstructure:"endpoint"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// EmailConfig holds run-notification delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	NotifyTo    string `mapstructure:"notify_to"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the FUNDSCOPE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FUNDSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults. The analyze endpoint is synchronous, so the write
	// timeout must cover a full pipeline run.
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15m")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "fundscope")
	v.SetDefault("db.password", "fundscope_secret")
	v.SetDefault("db.name", "fundscope_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "fundscope-artifacts")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// File store defaults
	v.SetDefault("filestore.provider", "httpfs")
	v.SetDefault("filestore.endpoint", "")
	v.SetDefault("filestore.prefix", "")
	v.SetDefault("filestore.timeout_secs", 60)

	// Completion defaults
	v.SetDefault("completion.provider", "openai")
	v.SetDefault("completion.api_key", "")
	v.SetDefault("completion.default_model", "gpt-4o-mini")
	v.SetDefault("completion.timeout_secs", 300)

	// Analysis defaults
	v.SetDefault("analysis.max_call_tokens", 120000)
	v.SetDefault("analysis.max_chunk_tokens", 25000)
	v.SetDefault("analysis.max_files_per_chunk", 5)
	v.SetDefault("analysis.max_concurrency", 5)
	v.SetDefault("analysis.max_retries", 3)
	v.SetDefault("analysis.workspace_dir", "temp_uploads")
	v.SetDefault("analysis.keep_workspace", false)

	// Contact defaults
	v.SetDefault("contact.api_token", "")
	v.SetDefault("contact.endpoint", "https://api.contactout.com/v1/people/search")
	v.SetDefault("contact.timeout_secs", 30)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@fundscope.dev")
	v.SetDefault("email.from_name", "Fundscope")
	v.SetDefault("email.notify_to", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                  "FUNDSCOPE_SERVER_PORT",
		"server.read_timeout":          "FUNDSCOPE_SERVER_READ_TIMEOUT",
		"server.write_timeout":         "FUNDSCOPE_SERVER_WRITE_TIMEOUT",
		"server.environment":           "FUNDSCOPE_SERVER_ENVIRONMENT",
		"db.host":                      "FUNDSCOPE_DB_HOST",
		"db.port":                      "FUNDSCOPE_DB_PORT",
		"db.user":                      "FUNDSCOPE_DB_USER",
		"db.password":                  "FUNDSCOPE_DB_PASSWORD",
		"db.name":                      "FUNDSCOPE_DB_NAME",
		"db.sslmode":                   "FUNDSCOPE_DB_SSLMODE",
		"db.max_open":                  "FUNDSCOPE_DB_MAX_OPEN",
		"db.max_idle":                  "FUNDSCOPE_DB_MAX_IDLE",
		"s3.region":                    "FUNDSCOPE_S3_REGION",
		"s3.bucket":                    "FUNDSCOPE_S3_BUCKET",
		"s3.endpoint":                  "FUNDSCOPE_S3_ENDPOINT",
		"s3.access_key":                "FUNDSCOPE_S3_ACCESS_KEY",
		"s3.secret_key":                "FUNDSCOPE_S3_SECRET_KEY",
		"s3.presign_expiry":            "FUNDSCOPE_S3_PRESIGN_EXPIRY",
		"filestore.provider":           "FUNDSCOPE_FILESTORE_PROVIDER",
		"filestore.endpoint":           "FUNDSCOPE_FILESTORE_ENDPOINT",
		"filestore.prefix":             "FUNDSCOPE_FILESTORE_PREFIX",
		"filestore.timeout_secs":       "FUNDSCOPE_FILESTORE_TIMEOUT_SECS",
		"completion.provider":          "FUNDSCOPE_COMPLETION_PROVIDER",
		"completion.api_key":           "FUNDSCOPE_COMPLETION_API_KEY",
		"completion.default_model":     "FUNDSCOPE_COMPLETION_DEFAULT_MODEL",
		"completion.timeout_secs":      "FUNDSCOPE_COMPLETION_TIMEOUT_SECS",
		"analysis.max_call_tokens":     "FUNDSCOPE_ANALYSIS_MAX_CALL_TOKENS",
		"analysis.max_chunk_tokens":    "FUNDSCOPE_ANALYSIS_MAX_CHUNK_TOKENS",
		"analysis.max_files_per_chunk": "FUNDSCOPE_ANALYSIS_MAX_FILES_PER_CHUNK",
		"analysis.max_concurrency":     "FUNDSCOPE_ANALYSIS_MAX_CONCURRENCY",
		"analysis.max_retries":         "FUNDSCOPE_ANALYSIS_MAX_RETRIES",
		"analysis.workspace_dir":       "FUNDSCOPE_ANALYSIS_WORKSPACE_DIR",
		"analysis.keep_workspace":      "FUNDSCOPE_ANALYSIS_KEEP_WORKSPACE",
		"contact.api_token":            "FUNDSCOPE_CONTACT_API_TOKEN",
		"contact.endpoint":             "FUNDSCOPE_CONTACT_ENDPOINT",
		"contact.timeout_secs":         "FUNDSCOPE_CONTACT_TIMEOUT_SECS",
		"email.provider":               "FUNDSCOPE_EMAIL_PROVIDER",
		"email.region":                 "FUNDSCOPE_EMAIL_REGION",
		"email.from_address":           "FUNDSCOPE_EMAIL_FROM_ADDRESS",
		"email.from_name":              "FUNDSCOPE_EMAIL_FROM_NAME",
		"email.notify_to":              "FUNDSCOPE_EMAIL_NOTIFY_TO",
		"log.level":                    "FUNDSCOPE_LOG_LEVEL",
		"log.format":                   "FUNDSCOPE_LOG_FORMAT",
		"cors.allowed_origins":         "FUNDSCOPE_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FUNDSCOPE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FUNDSCOPE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.FileStore = FileStoreConfig{
		Provider:    v.GetString("filestore.provider"),
		Endpoint:    v.GetString("filestore.endpoint"),
		Prefix:      v.GetString("filestore.prefix"),
		TimeoutSecs: v.GetInt("filestore.timeout_secs"),
	}
	cfg.Completion = CompletionConfig{
		Provider:     v.GetString("completion.provider"),
		APIKey:       v.GetString("completion.api_key"),
		DefaultModel: v.GetString("completion.default_model"),
		TimeoutSecs:  v.GetInt("completion.timeout_secs"),
	}
	cfg.Analysis = AnalysisConfig{
		MaxCallTokens:    v.GetInt("analysis.max_call_tokens"),
		MaxChunkTokens:   v.GetInt("analysis.max_chunk_tokens"),
		MaxFilesPerChunk: v.GetInt("analysis.max_files_per_chunk"),
		MaxConcurrency:   v.GetInt("analysis.max_concurrency"),
		MaxRetries:       v.GetInt("analysis.max_retries"),
		WorkspaceDir:     v.GetString("analysis.workspace_dir"),
		KeepWorkspace:    v.GetBool("analysis.keep_workspace"),
	}
	cfg.Contact = ContactConfig{
		APIToken:    v.GetString("contact.api_token"),
		Endpoint:    v.GetString("contact.endpoint"),
		TimeoutSecs: v.GetInt("contact.timeout_secs"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		NotifyTo:    v.GetString("email.notify_to"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}
