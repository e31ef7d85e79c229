package syncclient

import (
	"bytes"
	"context"
	"strings"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/gallery/asset"
	"github.com/rise-and-shine/gallery/filestore"
	"github.com/rise-and-shine/gallery/logger"
)

// StoreClient implements Syncer directly over a FileStore, for deployments
// where the gallery can write to the bucket behind the upload service.
type StoreClient struct {
	store     filestore.FileStore
	publicURL string
	log       logger.Logger
}

// NewStoreClient returns a StoreClient. Remote URLs are publicURL joined with
// the object key.
func NewStoreClient(store filestore.FileStore, publicURL string, log logger.Logger) *StoreClient {
	if log == nil {
		log = logger.Nop()
	}
	return &StoreClient{
		store:     store,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log.Named("syncclient.store"),
	}
}

// ObjectKey returns the storage key for owner's copy of id.
func ObjectKey(owner, id string) string {
	return objectPath(owner, id) + FileExt
}

func (c *StoreClient) url(owner, id string) string {
	return c.publicURL + "/" + ObjectKey(owner, id)
}

// CheckExists implements Syncer.
func (c *StoreClient) CheckExists(ctx context.Context, owner, id string) (string, bool) {
	ctx = withOp(ctx, owner, id, "check_exists")

	ok, err := c.store.Exists(ctx, ObjectKey(owner, id))
	if err != nil {
		c.log.WithContext(ctx).Warnx(errx.Wrap(err, errx.WithCode(CodeRemoteUnavailable)))
		return "", false
	}
	if !ok {
		return "", false
	}
	return parseRemoteURL(c.url(owner, id))
}

// Upload implements Syncer.
func (c *StoreClient) Upload(ctx context.Context, a *asset.Asset, owner string) (string, bool) {
	ctx = withOp(ctx, owner, a.ID(), "upload")

	data, ok := a.Bytes(ctx)
	if !ok {
		return "", false
	}
	if _, err := c.store.Upload(ctx, ObjectKey(owner, a.ID()), bytes.NewReader(data)); err != nil {
		c.log.WithContext(ctx).Warnx(errx.Wrap(err, errx.WithCode(CodeRemoteUnavailable)))
		return "", false
	}
	return parseRemoteURL(c.url(owner, a.ID()))
}

// Delete implements Syncer.
func (c *StoreClient) Delete(ctx context.Context, a *asset.Asset, owner string) bool {
	ctx = withOp(ctx, owner, a.ID(), "delete")

	if err := c.store.Delete(ctx, ObjectKey(owner, a.ID())); err != nil {
		c.log.WithContext(ctx).Warnx(errx.Wrap(err, errx.WithCode(CodeRemoteUnavailable)))
		return false
	}
	return true
}
