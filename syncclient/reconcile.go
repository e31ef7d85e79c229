package syncclient

import (
	"context"

	"github.com/rise-and-shine/gallery/asset"
	"github.com/sourcegraph/conc/pool"
)

// Result reports how one asset was reconciled.
type Result struct {
	ID  string
	URL string

	// Uploaded is false when the asset already existed remotely.
	Uploaded bool

	// OK is false when neither the lookup nor the upload yielded a URL.
	OK bool
}

// Reconcile makes sure the asset exists remotely, uploading it only when the
// lookup finds nothing.
func Reconcile(ctx context.Context, s Syncer, a *asset.Asset, owner string) Result {
	if u, ok := s.CheckExists(ctx, owner, a.ID()); ok {
		return Result{ID: a.ID(), URL: u, OK: true}
	}
	u, ok := s.Upload(ctx, a, owner)
	return Result{ID: a.ID(), URL: u, Uploaded: ok, OK: ok}
}

// ReconcileAll reconciles assets with at most concurrency requests in flight.
// Results are in the order of assets.
func ReconcileAll(ctx context.Context, s Syncer, assets []*asset.Asset, owner string, concurrency int) []Result {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]Result, len(assets))

	p := pool.New().WithMaxGoroutines(concurrency).WithContext(ctx)
	for i, a := range assets {
		p.Go(func(ctx context.Context) error {
			results[i] = Reconcile(ctx, s, a, owner)
			return nil
		})
	}
	_ = p.Wait()

	return results
}
