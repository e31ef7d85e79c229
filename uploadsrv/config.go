package uploadsrv

import "time"

// Config configures the upload service.
type Config struct {
	// PublicURL is the externally reachable base URL of this service. Upload
	// and lookup responses are PublicURL + "/files/{owner}/{id}.gif".
	PublicURL string `yaml:"public_url" validate:"required,url"`

	// MaxUploadSize caps a single uploaded file in bytes.
	MaxUploadSize int64 `yaml:"max_upload_size" default:"20000000"`

	// Owners maps an owner to the bcrypt hash of its password, for the
	// token endpoint. Leave empty to disable it.
	Owners map[string]string `yaml:"owners" mask:"true"`

	// TokenTTL is the lifetime of tokens issued by the token endpoint.
	TokenTTL time.Duration `yaml:"token_ttl" default:"1h"`

	// CacheCapacity bounds the file cache behind /files in cost units.
	CacheCapacity int64 `yaml:"cache_capacity" default:"50"`
}
