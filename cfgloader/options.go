package cfgloader

import (
	"github.com/rise-and-shine/gallery/logger"
	"github.com/spf13/afero"
)

type options struct {
	silent   bool
	fs       afero.Fs
	log      logger.Logger
	envFiles []string
}

// Option tunes Load and MustLoad.
type Option func(*options)

// WithSilent skips printing the loaded config.
func WithSilent() Option {
	return func(o *options) { o.silent = true }
}

// WithFS reads the config file from fs instead of the OS filesystem.
func WithFS(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithLogger sets the logger used to print the loaded config.
func WithLogger(log logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithEnvFiles overrides the dotenv files loaded before expansion.
// Missing files are ignored.
func WithEnvFiles(paths ...string) Option {
	return func(o *options) { o.envFiles = paths }
}

func buildOptions(opts []Option) *options {
	o := &options{
		fs:       afero.NewOsFs(),
		envFiles: []string{".env"},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
