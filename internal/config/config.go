// Package config loads this module's runtime configuration, grounded on
// the teacher's envconfig+godotenv idiom (internal/config.Config):
// env-sourced struct with default tags, a .env loader that never hard-
// fails when the file is absent, and a Validate() pass enforcing the
// handful of fields nothing can run without.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"content_pipeline"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"content_pipeline"`

	// StoreBackend selects the persistence adapter: "postgres" (default)
	// or "memory" for a fast, disk-free dev/demo run (internal/store/memory).
	StoreBackend string `envconfig:"STORE_BACKEND" default:"postgres"`

	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	// EnableEventTransport turns on NSQ forwarding of every published event
	// (internal/bus/nsqtransport) for out-of-process subscribers; off by
	// default since the in-process bus alone satisfies every operation
	// this module performs.
	EnableEventTransport bool   `envconfig:"ENABLE_EVENT_TRANSPORT" default:"false"`
	NSQLookupd           string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost             string `envconfig:"NSQD_HOST" default:"nsqd:4150"`

	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`

	// EncryptionKeyEnvVar names the environment variable CredentialCipher's
	// key provider reads from (internal/crypto.EnvKeyProvider); the value
	// itself is never logged or defaulted.
	EncryptionKeyEnvVar string `envconfig:"ENCRYPTION_KEY_ENV_VAR" default:"CONTENT_PIPELINE_ENCRYPTION_KEY"`

	HTTPPort int `envconfig:"HTTP_PORT" default:"8081"`

	// Refinement tunables (spec §4.5 implementation-defined defaults).
	ChunkSize        int     `envconfig:"CHUNK_SIZE" default:"512"`
	ChunkOverlap     int     `envconfig:"CHUNK_OVERLAP" default:"50"`
	QualityThreshold float64 `envconfig:"QUALITY_THRESHOLD" default:"0.3"`

	// SchedulerPollSeconds is loaded from SCHEDULER_POLL_SECONDS, but no
	// component reads it; nothing in the module runs a due-job sweep.
	SchedulerPollSeconds int `envconfig:"SCHEDULER_POLL_SECONDS" default:"30"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.StoreBackend == "postgres" {
		if c.DBHost == "" {
			return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
		}
		if c.DBUser == "" {
			return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
		}
		if c.DBName == "" {
			return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
		}
	}
	if c.StoreBackend != "postgres" && c.StoreBackend != "memory" {
		return fmt.Errorf("%w: STORE_BACKEND must be postgres or memory, got %q", ErrMissingRequired, c.StoreBackend)
	}
	return nil
}
