// Package config loads process configuration from the environment. A
// .env file in the working directory is read first when present, so
// local runs do not need exported variables.
package config

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/propbooks/cardledger/internal/blob"
)

// Blob backend names accepted in BLOB_BACKEND.
const (
	BackendGCS    = "gcs"
	BackendLocal  = "local"
	BackendMemory = "memory"
)

// Config carries the settings shared by the cardledger binaries.
type Config struct {
	// Backend selects the blob store implementation: gcs, local or
	// memory. Defaults to local.
	Backend string

	// GCSBucket and GCSPrefix configure the gcs backend.
	GCSBucket string
	GCSPrefix string

	// DataDir configures the local backend. Defaults to ./data.
	DataDir string

	// Port is the API listen port.
	Port string

	// NotionToken and NotionDatabaseID configure the Notion sync.
	NotionToken      string
	NotionDatabaseID string

	// BigQueryProject and BigQueryDataset configure the analytics
	// mirror.
	BigQueryProject string
	BigQueryDataset string

	// GeminiModel overrides the receipt extraction model.
	GeminiModel string
}

// Load reads configuration from .env (if present) and the environment.
func Load() Config {
	// Missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	cfg := Config{
		Backend:          os.Getenv("BLOB_BACKEND"),
		GCSBucket:        os.Getenv("GCS_BUCKET"),
		GCSPrefix:        os.Getenv("GCS_PREFIX"),
		DataDir:          os.Getenv("DATA_DIR"),
		Port:             os.Getenv("PORT"),
		NotionToken:      os.Getenv("NOTION_TOKEN"),
		NotionDatabaseID: os.Getenv("NOTION_DATABASE_ID"),
		BigQueryProject:  os.Getenv("BIGQUERY_PROJECT"),
		BigQueryDataset:  os.Getenv("BIGQUERY_DATASET"),
		GeminiModel:      os.Getenv("GEMINI_MODEL"),
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendLocal
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	return cfg
}

// OpenBlobStore constructs the blob backend named by the configuration.
func (c Config) OpenBlobStore(ctx context.Context) (blob.Store, error) {
	switch c.Backend {
	case BackendGCS:
		if c.GCSBucket == "" {
			return nil, fmt.Errorf("OpenBlobStore: gcs backend requires GCS_BUCKET")
		}
		return blob.NewGCSStore(ctx, c.GCSBucket, c.GCSPrefix)
	case BackendLocal:
		return blob.NewLocalStore(c.DataDir)
	case BackendMemory:
		return blob.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("OpenBlobStore: unknown backend %q", c.Backend)
	}
}
