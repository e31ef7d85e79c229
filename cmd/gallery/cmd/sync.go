package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/code19m/errx"
	"github.com/rise-and-shine/gallery/asset"
	"github.com/rise-and-shine/gallery/filestore"
	"github.com/rise-and-shine/gallery/filestore/localfs"
	"github.com/rise-and-shine/gallery/filestore/miniowr"
	"github.com/rise-and-shine/gallery/gallery"
	"github.com/rise-and-shine/gallery/syncclient"
	"github.com/rise-and-shine/gallery/token"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// CodeSyncIncomplete is returned when some assets could not be reconciled.
const CodeSyncIncomplete = "SYNC_INCOMPLETE"

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [id...]",
		Short: "Upload assets the remote side does not have yet",
		Long: "Reconcile the given assets (all by default) with the remote side: look each one up " +
			"and upload it when absent. Failed assets are retried with backoff. With --delete the " +
			"remote copies are removed instead.",
		RunE: runSync,
	}
	cmd.Flags().Bool("delete", false, "delete the remote copies instead of uploading")
	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	ctx := cmd.Context()

	owner := a.cfg.Sync.Owner
	if owner == "" {
		return missing("sync.owner")
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	assets, err := selectAssets(store, args)
	if err != nil {
		return err
	}

	syncer, err := a.syncer(ctx)
	if err != nil {
		return err
	}

	if del, _ := cmd.Flags().GetBool("delete"); del {
		return a.deleteRemote(cmd, syncer, assets, owner)
	}

	results := syncclient.ReconcileAll(ctx, syncer, assets, owner, a.cfg.Sync.Concurrency)

	for i, r := range results {
		if r.OK {
			continue
		}
		results[i] = a.retryReconcile(ctx, syncer, assets[i], owner)
	}

	out := cmd.OutOrStdout()
	for _, r := range results {
		switch {
		case !r.OK:
			fmt.Fprintf(out, "failed   %s\n", r.ID)
		case r.Uploaded:
			fmt.Fprintf(out, "uploaded %s\t%s\n", r.ID, r.URL)
		default:
			fmt.Fprintf(out, "present  %s\t%s\n", r.ID, r.URL)
		}
	}

	failed := lo.FilterMap(results, func(r syncclient.Result, _ int) (string, bool) { return r.ID, !r.OK })
	if len(failed) > 0 {
		return errx.New("some assets were not synced",
			errx.WithCode(CodeSyncIncomplete),
			errx.WithDetails(errx.D{"asset_ids": failed}),
		)
	}
	return nil
}

// retryReconcile retries one asset with backoff. Reconcile itself never
// retries; the policy lives here.
func (a *app) retryReconcile(ctx context.Context, s syncclient.Syncer, as *asset.Asset, owner string) syncclient.Result {
	log := a.log.Named("sync.retry").With("asset_id", as.ID())
	var last syncclient.Result

	_ = retry.Do(
		func() error {
			last = syncclient.Reconcile(ctx, s, as, owner)
			if !last.OK {
				return errx.New("remote unavailable", errx.WithCode(syncclient.CodeRemoteUnavailable))
			}
			return nil
		},
		retry.Attempts(a.cfg.Sync.RetryAttempts),
		retry.Delay(a.cfg.Sync.RetryDelay),
		retry.MaxJitter(a.cfg.Sync.RetryDelay/2),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, _ error) {
			log.With("attempt", n+1).Debug("retrying reconcile")
		}),
		retry.Context(ctx),
	)
	return last
}

func (a *app) deleteRemote(cmd *cobra.Command, s syncclient.Syncer, assets []*asset.Asset, owner string) error {
	var failed []string
	for _, as := range assets {
		if !s.Delete(cmd.Context(), as, owner) {
			failed = append(failed, as.ID())
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted  %s\n", as.ID())
	}
	if len(failed) > 0 {
		return errx.New("some remote copies were not deleted",
			errx.WithCode(CodeSyncIncomplete),
			errx.WithDetails(errx.D{"asset_ids": failed}),
		)
	}
	return nil
}

func selectAssets(store *gallery.Store, ids []string) ([]*asset.Asset, error) {
	if len(ids) == 0 {
		return store.Assets(), nil
	}
	assets := make([]*asset.Asset, 0, len(ids))
	for _, id := range ids {
		as, ok := store.Get(id)
		if !ok {
			return nil, errx.New("no such asset", errx.WithCode(CodeUnknownAsset), errx.WithDetails(errx.D{"asset_id": id}))
		}
		assets = append(assets, as)
	}
	return assets, nil
}

// syncer builds the configured Syncer.
func (a *app) syncer(ctx context.Context) (syncclient.Syncer, error) {
	if a.cfg.Sync.Mode == syncModeStore {
		fs, err := a.fileStore(ctx)
		if err != nil {
			return nil, err
		}
		if a.cfg.Sync.PublicURL == "" {
			return nil, missing("sync.public_url")
		}
		return syncclient.NewStoreClient(fs, a.cfg.Sync.PublicURL, a.log), nil
	}

	if a.cfg.Sync.BaseURL == "" {
		return nil, missing("sync.base_url")
	}
	opts := []syncclient.Option{
		syncclient.WithHTTPClient(&http.Client{Timeout: a.cfg.Sync.Timeout}),
		syncclient.WithLogger(a.log),
	}
	if a.cfg.Auth.Secret != "" {
		maker, err := token.NewJWTMaker(a.cfg.Auth.Secret, a.cfg.Auth.Issuer)
		if err != nil {
			return nil, err
		}
		opts = append(opts, syncclient.WithAuthorizer(token.NewBearer(maker, a.cfg.Sync.Owner, a.cfg.Auth.TokenTTL)))
	}
	return syncclient.NewClient(a.cfg.Sync.BaseURL, opts...), nil
}

// fileStore builds the configured blob store.
func (a *app) fileStore(ctx context.Context) (filestore.FileStore, error) {
	switch a.cfg.Store.Backend {
	case backendMinio:
		if a.cfg.Store.Minio == nil {
			return nil, missing("store.minio")
		}
		c, err := miniowr.New(ctx, *a.cfg.Store.Minio)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		s, err := localfs.New(a.cfg.Store.LocalDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
