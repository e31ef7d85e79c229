package syncclient_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/gallery/asset"
	"github.com/rise-and-shine/gallery/filestore/localfs"
	"github.com/rise-and-shine/gallery/http/server"
	"github.com/rise-and-shine/gallery/syncclient"
	"github.com/rise-and-shine/gallery/token"
	"github.com/rise-and-shine/gallery/uploadsrv"
)

const (
	secret    = "0123456789abcdef0123"
	publicURL = "http://cdn.example.test"
)

func gifBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, &gif.GIF{Image: []*image.Paletted{img, img}, Delay: []int{5, 5}}))
	return buf.Bytes()
}

// startUploadServer runs the real upload service over an in-memory store.
func startUploadServer(t *testing.T) (*httptest.Server, *token.JWTMaker) {
	t.Helper()
	maker, err := token.NewJWTMaker(secret, "")
	require.NoError(t, err)

	svc := uploadsrv.New(uploadsrv.Config{
		PublicURL:     publicURL,
		MaxUploadSize: 1 << 20,
		TokenTTL:      time.Hour,
		CacheCapacity: 50,
	}, localfs.NewWithFs(afero.NewMemMapFs()), maker, nil)

	srv := uploadsrv.NewHTTPServer(server.Config{
		Port:          1,
		ReadTimeout:   time.Second,
		WriteTimeout:  time.Second,
		IdleTimeout:   time.Second,
		HandleTimeout: 5 * time.Second,
		BodyLimit:     2 << 20,
	}, svc, nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, maker
}

func clientFor(ts *httptest.Server, maker *token.JWTMaker, owner string) *syncclient.Client {
	return syncclient.NewClient(ts.URL,
		syncclient.WithHTTPClient(ts.Client()),
		syncclient.WithAuthorizer(token.NewBearer(maker, owner, time.Hour)),
	)
}

func TestUploadThenCheckExists(t *testing.T) {
	ts, maker := startUploadServer(t)
	c := clientFor(ts, maker, "alice")
	a := asset.NewEphemeral("20240301-120000", gifBytes(t))

	_, ok := c.CheckExists(t.Context(), "alice", a.ID())
	assert.False(t, ok)

	uploaded, ok := c.Upload(t.Context(), a, "alice")
	require.True(t, ok)
	assert.Equal(t, publicURL+"/files/alice/20240301-120000.gif", uploaded)

	found, ok := c.CheckExists(t.Context(), "alice", a.ID())
	require.True(t, ok)
	assert.Equal(t, uploaded, found)

	assert.True(t, c.Delete(t.Context(), a, "alice"))
	_, ok = c.CheckExists(t.Context(), "alice", a.ID())
	assert.False(t, ok)

	assert.True(t, c.Delete(t.Context(), a, "alice"), "deleting an absent object succeeds")
}

func TestServerRejectsForeignOwner(t *testing.T) {
	ts, maker := startUploadServer(t)
	mallory := clientFor(ts, maker, "mallory")
	a := asset.NewEphemeral("x", gifBytes(t))

	_, ok := mallory.Upload(t.Context(), a, "alice")
	assert.False(t, ok)
	assert.False(t, mallory.Delete(t.Context(), a, "alice"))

	anonymous := syncclient.NewClient(ts.URL, syncclient.WithHTTPClient(ts.Client()))
	_, ok = anonymous.Upload(t.Context(), a, "alice")
	assert.False(t, ok)
}

func TestServerRejectsNonGIF(t *testing.T) {
	ts, maker := startUploadServer(t)
	c := clientFor(ts, maker, "alice")

	_, ok := c.Upload(t.Context(), asset.NewEphemeral("x", []byte("plain text")), "alice")
	assert.False(t, ok)
}

func TestUploadSendsMultipartFile(t *testing.T) {
	data := gifBytes(t)
	var gotName string
	var gotData []byte

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/uploads/bob/abc", r.URL.Path)

		f, fh, err := r.FormFile(syncclient.FileField)
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		gotName = fh.Filename
		gotData, _ = io.ReadAll(f)

		_, _ = io.WriteString(w, "  https://files.example.test/bob/abc.gif\n")
	}))
	defer ts.Close()

	c := syncclient.NewClient(ts.URL+"/", syncclient.WithHTTPClient(ts.Client()))
	u, ok := c.Upload(t.Context(), asset.NewEphemeral("abc", data), "bob")

	require.True(t, ok)
	assert.Equal(t, "https://files.example.test/bob/abc.gif", u)
	assert.Equal(t, "abc.gif", gotName)
	assert.Equal(t, data, gotData)
}

func TestUploadFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/uploads/bob/abc", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/v2/uploads/bob/abc", http.StatusTemporaryRedirect)
	})
	mux.HandleFunc("/v2/uploads/bob/abc", func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile(syncclient.FileField); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, "https://files.example.test/bob/abc.gif")
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := syncclient.NewClient(ts.URL, syncclient.WithHTTPClient(ts.Client()))
	u, ok := c.Upload(t.Context(), asset.NewEphemeral("abc", gifBytes(t)), "bob")

	require.True(t, ok)
	assert.Equal(t, "https://files.example.test/bob/abc.gif", u)
}

func TestLooseResponseContract(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
		ok     bool
	}{
		{name: "url", status: 200, body: "https://x.test/a.gif", want: "https://x.test/a.gif", ok: true},
		{name: "padded url", status: 200, body: "\n http://x.test/a.gif \n", want: "http://x.test/a.gif", ok: true},
		{name: "empty", status: 200, body: "", ok: false},
		{name: "relative", status: 200, body: "/a.gif", ok: false},
		{name: "prose", status: 200, body: "not found", ok: false},
		{name: "json error", status: 500, body: `{"error":"boom"}`, ok: false},
		{name: "other scheme", status: 200, body: "ftp://x.test/a.gif", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer ts.Close()

			c := syncclient.NewClient(ts.URL, syncclient.WithHTTPClient(ts.Client()))
			got, ok := c.CheckExists(t.Context(), "o", "a")

			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDeleteReportsServerErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := syncclient.NewClient(ts.URL, syncclient.WithHTTPClient(ts.Client()))
	assert.False(t, c.Delete(t.Context(), asset.NewEphemeral("a", nil), "o"))
}

func TestTransportFailureIsAbsent(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	base := ts.URL
	ts.Close()

	c := syncclient.NewClient(base)
	a := asset.NewEphemeral("a", gifBytes(t))

	_, ok := c.CheckExists(t.Context(), "o", "a")
	assert.False(t, ok)
	_, ok = c.Upload(t.Context(), a, "o")
	assert.False(t, ok)
	assert.False(t, c.Delete(t.Context(), a, "o"))
}

func TestNoRequestWithoutDataOrCredentials(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, "https://x.test/a.gif")
	}))
	defer ts.Close()

	missing := asset.NewFileBacked("gone", "/nowhere/gone.gif", "/nowhere/gone.jpg",
		asset.WithFS(afero.NewMemMapFs()))
	c := syncclient.NewClient(ts.URL, syncclient.WithHTTPClient(ts.Client()))
	_, ok := c.Upload(t.Context(), missing, "o")
	assert.False(t, ok)

	denied := syncclient.NewClient(ts.URL,
		syncclient.WithHTTPClient(ts.Client()),
		syncclient.WithAuthorizer(syncclient.AuthorizerFunc(func(*http.Request) error {
			return errors.New("no credentials")
		})),
	)
	_, ok = denied.CheckExists(t.Context(), "o", "a")
	assert.False(t, ok)
	assert.False(t, denied.Delete(t.Context(), asset.NewEphemeral("a", nil), "o"))

	assert.Equal(t, int32(0), calls.Load())
}
