package logger

import (
	"os"

	"github.com/code19m/errx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	messageKey = "msg"
	levelKey   = "level"
	nameKey    = "logger"
	timeKey    = "time"

	EncodingJSON   = "json"
	EncodingPretty = "pretty"

	levelDebug = "debug"
)

// Config is the `logger` section of the gallery config.
type Config struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error" default:"debug"`

	// Encoding is "pretty" for coloured terminal lines or "json".
	Encoding string `yaml:"encoding" validate:"oneof=json pretty" default:"pretty"`

	// Output is "stderr", "stdout" or a file path. CLI commands print their
	// results on stdout, so logs default to stderr.
	Output string `yaml:"output" default:"stderr"`

	// Disable makes New return Nop.
	Disable bool `yaml:"disable"`
}

func (c Config) level() (zap.AtomicLevel, error) {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return lvl, errx.Wrap(err, errx.WithDetails(errx.D{"level": c.Level}))
	}
	return lvl, nil
}

func (c Config) output() string {
	if c.Output == "" {
		return "stderr"
	}
	return c.Output
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     messageKey,
		LevelKey:       levelKey,
		NameKey:        nameKey,
		TimeKey:        timeKey,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

// build opens the configured output and assembles the zap core.
func (c Config) build() (*zap.Logger, error) {
	lvl, err := c.level()
	if err != nil {
		return nil, err
	}

	sink, _, err := zap.Open(c.output())
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"output": c.output()}))
	}

	var enc zapcore.Encoder = zapcore.NewJSONEncoder(encoderConfig())
	if c.Encoding != EncodingJSON {
		enc = newPrettyEncoder(enc)
	}

	return zap.New(zapcore.NewCore(enc, sink, lvl), zap.ErrorOutput(zapcore.Lock(os.Stderr))), nil
}
