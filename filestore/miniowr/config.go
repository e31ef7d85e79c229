package miniowr

// Config is the `store.minio` section of the gallery config.
type Config struct {
	Endpoint  string `yaml:"endpoint" validate:"required"`
	AccessKey string `yaml:"access_key" validate:"required"`
	SecretKey string `yaml:"secret_key" validate:"required" mask:"true"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`

	Bucket string `yaml:"bucket" validate:"required" default:"gallery"`
	// CreateBucket makes New create Bucket when it is missing.
	CreateBucket bool `yaml:"create_bucket" default:"true"`
}
