package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/gallery/token"
	"github.com/rise-and-shine/gallery/uploadsrv"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run an upload server backed by the configured file store",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	a := appFrom(cmd)
	if a.cfg.Upload == nil {
		return missing("upload")
	}
	if a.cfg.Auth.Secret == "" {
		return missing("auth.secret")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fs, err := a.fileStore(ctx)
	if err != nil {
		return err
	}
	maker, err := token.NewJWTMaker(a.cfg.Auth.Secret, a.cfg.Auth.Issuer)
	if err != nil {
		return err
	}

	srv := uploadsrv.NewHTTPServer(a.cfg.Server, uploadsrv.New(*a.cfg.Upload, fs, maker, a.log), a.log)

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("listening on %s", a.cfg.Server.Address())
		errCh <- srv.Start()
	}()

	select {
	case err = <-errCh:
		return errx.Wrap(err)
	case <-ctx.Done():
		a.log.Info("shutting down")
		return errx.Wrap(srv.Stop(context.WithoutCancel(ctx)))
	}
}
