package cmd

import (
	"time"

	"github.com/rise-and-shine/gallery/filestore/miniowr"
	"github.com/rise-and-shine/gallery/http/server"
	"github.com/rise-and-shine/gallery/logger"
	"github.com/rise-and-shine/gallery/uploadsrv"
)

const (
	syncModeHTTP  = "http"
	syncModeStore = "store"

	backendLocal = "local"
	backendMinio = "minio"
)

// Config is the gallery CLI configuration.
type Config struct {
	RootDir string `yaml:"root_dir" validate:"required"`

	Cache CacheConfig `yaml:"cache"`
	Sync  SyncConfig  `yaml:"sync"`
	Auth  AuthConfig  `yaml:"auth"`
	Store StoreConfig `yaml:"store"`

	Server server.Config     `yaml:"server"`
	Upload *uploadsrv.Config `yaml:"upload"`
	Logger logger.Config     `yaml:"logger"`
}

// CacheConfig sizes the process-wide byte cache.
type CacheConfig struct {
	Capacity  int64 `yaml:"capacity" default:"50"`
	UnitBytes int64 `yaml:"unit_bytes" default:"1000000" validate:"gt=0"`
}

// SyncConfig controls how `gallery sync` reaches the remote side.
type SyncConfig struct {
	// Mode is "http" for the upload protocol or "store" to write straight
	// into the configured file store.
	Mode          string        `yaml:"mode" default:"http" validate:"oneof=http store"`
	BaseURL       string        `yaml:"base_url" validate:"omitempty,url"`
	PublicURL     string        `yaml:"public_url" validate:"omitempty,url"`
	Owner         string        `yaml:"owner"`
	Timeout       time.Duration `yaml:"timeout" default:"30s"`
	RetryAttempts uint          `yaml:"retry_attempts" default:"3"`
	RetryDelay    time.Duration `yaml:"retry_delay" default:"500ms"`
	Concurrency   int           `yaml:"concurrency" default:"4" validate:"gte=1"`
}

// AuthConfig holds the token signing secret shared with the upload server.
type AuthConfig struct {
	Secret   string        `yaml:"secret" mask:"true"`
	Issuer   string        `yaml:"issuer"`
	TokenTTL time.Duration `yaml:"token_ttl" default:"1h"`
}

// StoreConfig selects the blob store used by `serve` and by store-mode sync.
type StoreConfig struct {
	Backend  string          `yaml:"backend" default:"local" validate:"oneof=local minio"`
	LocalDir string          `yaml:"local_dir" default:"./uploads"`
	Minio    *miniowr.Config `yaml:"minio"`
}
