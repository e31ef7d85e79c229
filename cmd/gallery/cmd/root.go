// Package cmd implements the gallery command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/gallery/bytecache"
	"github.com/rise-and-shine/gallery/cfgloader"
	"github.com/rise-and-shine/gallery/gallery"
	"github.com/rise-and-shine/gallery/logger"
	"github.com/spf13/cobra"
)

// CodeMissingSetting is returned when a command needs a setting the config leaves empty.
const CodeMissingSetting = "MISSING_SETTING"

type ctxKey struct{}

// annotationNoConfig marks commands that run without loading config.
const annotationNoConfig = "no-config"

// app is what every subcommand works with once config is loaded.
type app struct {
	cfg   Config
	log   logger.Logger
	cache *bytecache.Cache
}

//nolint:gochecknoglobals // cobra command tree
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gallery",
		Short:         "Animated image gallery",
		Long:          "Manage a local gallery of animated GIFs and keep it in sync with an upload server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationNoConfig] == "true" {
				return nil
			}
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), ctxKey{}, a))
			return nil
		},
	}

	root.PersistentFlags().String("config", "", "config file (default: ./config/${ENVIRONMENT}.yaml)")
	root.PersistentFlags().String("root", "", "gallery directory, overrides root_dir")

	root.AddCommand(
		newAddCmd(),
		newListCmd(),
		newRmCmd(),
		newSyncCmd(),
		newServeCmd(),
		newTokenCmd(),
		newPasswdCmd(),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = cfgloader.PathFor("")
	}

	cfg, err := cfgloader.Load[Config](path, cfgloader.WithSilent())
	if err != nil {
		return nil, err
	}
	if root, _ := cmd.Flags().GetString("root"); root != "" {
		cfg.RootDir = root
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:   cfg,
		log:   log,
		cache: bytecache.New(cfg.Cache.Capacity, bytecache.WithUnit(cfg.Cache.UnitBytes)),
	}, nil
}

func appFrom(cmd *cobra.Command) *app {
	a, _ := cmd.Context().Value(ctxKey{}).(*app)
	return a
}

// openStore opens the gallery directory and loads it.
func (a *app) openStore(ctx context.Context) (*gallery.Store, error) {
	s, err := gallery.Open(a.cfg.RootDir,
		gallery.WithCache(a.cache),
		gallery.WithLogger(a.log),
	)
	if err != nil {
		return nil, err
	}
	if err = s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func missing(setting string) error {
	return errx.New(setting+" is not configured",
		errx.WithCode(CodeMissingSetting),
		errx.WithDetails(errx.D{"setting": setting}),
	)
}
