package server

import (
	"net"
	"strconv"
	"time"
)

// Config is the `server` section of the gallery config.
type Config struct {
	Host string `yaml:"host" default:"127.0.0.1"`
	Port int    `yaml:"port" validate:"required,min=1,max=65535" default:"8080"`

	ReadTimeout  time.Duration `yaml:"read_timeout" validate:"required" default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"required" default:"15s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" validate:"required" default:"120s"`

	// HandleTimeout bounds a single request, including the file store call.
	HandleTimeout time.Duration `yaml:"request_timeout" validate:"required" default:"30s"`

	// ShutdownTimeout bounds the wait for in-flight uploads on Stop.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`

	// BodyLimit must leave room for the largest upload plus multipart framing.
	BodyLimit int `yaml:"body_limit" validate:"required" default:"33554432"`

	// HideErrorDetails drops trace and details from error responses.
	HideErrorDetails bool `yaml:"hide_error_details"`
}

// Address returns host:port.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
