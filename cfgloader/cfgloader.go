// Package cfgloader reads a YAML config file into a typed struct, expanding
// ${VAR} references, applying `default` tags and checking `validate` tags.
package cfgloader

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/code19m/errx"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	EnvProduction = "production"
	EnvStaging    = "staging"
	EnvDev        = "dev"
	EnvLocal      = "local"
	EnvTest       = "test"

	// EnvVar selects the config file used by MustLoad and PathFor.
	EnvVar = "ENVIRONMENT"

	CodeInvalidConfig = "INVALID_CONFIG"
)

var environments = []string{EnvProduction, EnvStaging, EnvDev, EnvLocal, EnvTest}

// PathFor returns ./config/<env>.yaml. An empty env falls back to
// $ENVIRONMENT and then to local.
func PathFor(env string) string {
	if env == "" {
		env = os.Getenv(EnvVar)
	}
	if env == "" {
		env = EnvLocal
	}
	return fmt.Sprintf("./config/%s.yaml", env)
}

// MustLoad loads the file selected by $ENVIRONMENT and exits the process
// on any failure.
func MustLoad[T any](opts ...Option) T {
	env := os.Getenv(EnvVar)
	if !slices.Contains(environments, env) {
		slog.Error("[cfgloader]: " + EnvVar + " must be one of " + strings.Join(environments, ", "))
		os.Exit(1)
	}

	config, err := Load[T](PathFor(env), opts...)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	return config
}

// Load reads the YAML file at path into T.
//
//	type Config struct {
//	    RootDir  string `yaml:"root_dir" validate:"required"`
//	    Capacity int64  `yaml:"capacity" default:"50"`
//	    Secret   string `yaml:"secret" mask:"true"`
//	}
func Load[T any](path string, opts ...Option) (T, error) {
	var config T
	if reflect.TypeFor[T]().Kind() == reflect.Ptr {
		return config, errx.New("[cfgloader]: config type must not be a pointer", errx.WithCode(CodeInvalidConfig))
	}

	o := buildOptions(opts)

	for _, f := range o.envFiles {
		_ = godotenv.Load(f)
	}

	data, err := afero.ReadFile(o.fs, path)
	if err != nil {
		return config, errx.Wrap(err, errx.WithCode(CodeInvalidConfig), errx.WithDetails(errx.D{"path": path}))
	}

	if err = yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &config); err != nil {
		return config, errx.Wrap(err, errx.WithCode(CodeInvalidConfig), errx.WithDetails(errx.D{"path": path}))
	}

	if err = defaults.Set(&config); err != nil {
		return config, errx.Wrap(err, errx.WithCode(CodeInvalidConfig))
	}

	if err = validate(&config, path); err != nil {
		return config, err
	}

	if !o.silent {
		printConfig(o.log, config)
	}
	return config, nil
}

func validate(config any, path string) error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(config)

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return nil
	}

	failed := lo.Map(errs, func(fe validator.FieldError, _ int) string {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		return fe.Namespace() + ": " + rule
	})

	return errx.New(
		"[cfgloader]: invalid fields -> "+strings.Join(failed, ", "),
		errx.WithCode(CodeInvalidConfig),
		errx.WithType(errx.T_Validation),
		errx.WithDetails(errx.D{"path": path}),
	)
}
