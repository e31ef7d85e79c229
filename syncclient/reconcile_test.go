package syncclient_test

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/gallery/asset"
	"github.com/rise-and-shine/gallery/filestore/localfs"
	"github.com/rise-and-shine/gallery/syncclient"
)

func TestStoreClientRoundTrip(t *testing.T) {
	store := localfs.NewWithFs(afero.NewMemMapFs())
	c := syncclient.NewStoreClient(store, publicURL+"/files/", nil)
	a := asset.NewEphemeral("20240301-120000", gifBytes(t))

	_, ok := c.CheckExists(t.Context(), "alice", a.ID())
	assert.False(t, ok)

	u, ok := c.Upload(t.Context(), a, "alice")
	require.True(t, ok)
	assert.Equal(t, publicURL+"/files/alice/20240301-120000.gif", u)

	found, ok := c.CheckExists(t.Context(), "alice", a.ID())
	require.True(t, ok)
	assert.Equal(t, u, found)

	f, err := store.Get(t.Context(), syncclient.ObjectKey("alice", a.ID()))
	require.NoError(t, err)
	defer f.Content.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(f.Content)
	require.NoError(t, err)
	assert.Equal(t, gifBytes(t), buf.Bytes())

	assert.True(t, c.Delete(t.Context(), a, "alice"))
	_, ok = c.CheckExists(t.Context(), "alice", a.ID())
	assert.False(t, ok)
}

// countingSyncer records calls and reports ids in existing as already present.
type countingSyncer struct {
	mu       sync.Mutex
	existing map[string]bool
	uploads  []string
}

func (s *countingSyncer) CheckExists(_ context.Context, owner, id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existing[id] {
		return "https://x.test/" + owner + "/" + id, true
	}
	return "", false
}

func (s *countingSyncer) Upload(_ context.Context, a *asset.Asset, owner string) (string, bool) {
	if _, ok := a.Bytes(context.Background()); !ok {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, a.ID())
	return "https://x.test/" + owner + "/" + a.ID(), true
}

func (s *countingSyncer) Delete(context.Context, *asset.Asset, string) bool { return true }

func TestReconcileSkipsExisting(t *testing.T) {
	s := &countingSyncer{existing: map[string]bool{"a": true}}

	got := syncclient.Reconcile(t.Context(), s, asset.NewEphemeral("a", []byte("x")), "o")
	assert.Equal(t, syncclient.Result{ID: "a", URL: "https://x.test/o/a", OK: true}, got)

	got = syncclient.Reconcile(t.Context(), s, asset.NewEphemeral("b", []byte("x")), "o")
	assert.Equal(t, syncclient.Result{ID: "b", URL: "https://x.test/o/b", Uploaded: true, OK: true}, got)

	assert.Equal(t, []string{"b"}, s.uploads)
}

func TestReconcileAllKeepsOrder(t *testing.T) {
	s := &countingSyncer{existing: map[string]bool{"id-3": true}}

	var assets []*asset.Asset
	for i := range 8 {
		assets = append(assets, asset.NewEphemeral(fmt.Sprintf("id-%d", i), []byte("x")))
	}
	assets = append(assets, asset.NewEphemeral("empty", nil))

	results := syncclient.ReconcileAll(t.Context(), s, assets, "o", 3)

	require.Len(t, results, len(assets))
	for i, r := range results {
		assert.Equal(t, assets[i].ID(), r.ID)
	}
	assert.False(t, results[3].Uploaded)
	assert.True(t, results[3].OK)
	assert.False(t, results[8].OK)
	assert.Len(t, s.uploads, 7)
}
