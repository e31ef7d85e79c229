package syncclient

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/gallery/asset"
	"github.com/rise-and-shine/gallery/logger"
	"github.com/rise-and-shine/gallery/meta"
)

const (
	// FileField is the multipart field carrying the upload.
	FileField = "file"

	// FileExt is appended to the asset id to form the upload filename.
	FileExt = ".gif"

	uploadsPrefix = "/uploads/"

	// maxBodySize bounds how much of a response is read to find a URL.
	maxBodySize = 8 << 10
)

// Client talks to the remote upload service over HTTP.
type Client struct {
	base string
	http *http.Client
	auth Authorizer
	log  logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client. The default follows redirects and
// times out after 30 seconds.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithAuthorizer sets the credential decorator applied to every request.
func WithAuthorizer(a Authorizer) Option {
	return func(c *Client) { c.auth = a }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient returns a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
		log:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("syncclient")
	return c
}

func (c *Client) endpoint(owner, id string) string {
	return c.base + uploadsPrefix + objectPath(owner, id)
}

// CheckExists implements Syncer.
func (c *Client) CheckExists(ctx context.Context, owner, id string) (string, bool) {
	ctx = withOp(ctx, owner, id, "check_exists")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(owner, id), nil)
	if err != nil {
		c.fail(ctx, err)
		return "", false
	}
	body, _, ok := c.do(ctx, req)
	if !ok {
		return "", false
	}
	return parseRemoteURL(body)
}

// Upload implements Syncer. Unavailable asset data skips the network call.
func (c *Client) Upload(ctx context.Context, a *asset.Asset, owner string) (string, bool) {
	ctx = withOp(ctx, owner, a.ID(), "upload")

	data, ok := a.Bytes(ctx)
	if !ok {
		c.log.WithContext(ctx).Debug("asset data unavailable, not uploading")
		return "", false
	}

	body, contentType, err := multipartBody(a.ID(), data)
	if err != nil {
		c.fail(ctx, err)
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(owner, a.ID()), body)
	if err != nil {
		c.fail(ctx, err)
		return "", false
	}
	req.Header.Set("Content-Type", contentType)

	resp, _, ok := c.do(ctx, req)
	if !ok {
		return "", false
	}
	return parseRemoteURL(resp)
}

// Delete implements Syncer. Any transport failure or non-2xx status is false.
func (c *Client) Delete(ctx context.Context, a *asset.Asset, owner string) bool {
	ctx = withOp(ctx, owner, a.ID(), "delete")

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint(owner, a.ID()), nil)
	if err != nil {
		c.fail(ctx, err)
		return false
	}
	_, status, ok := c.do(ctx, req)
	return ok && status >= 200 && status < 300
}

// do authorizes and sends req, returning the start of the body and the status.
func (c *Client) do(ctx context.Context, req *http.Request) (string, int, bool) {
	if c.auth != nil {
		if err := c.auth.Authorize(req); err != nil {
			c.fail(ctx, err)
			return "", 0, false
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.fail(ctx, err)
		return "", 0, false
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.fail(ctx, err)
		return "", resp.StatusCode, false
	}
	if resp.StatusCode >= 400 {
		c.log.WithContext(ctx).Debugf("remote answered %d", resp.StatusCode)
	}
	return string(raw), resp.StatusCode, true
}

func (c *Client) fail(ctx context.Context, err error) {
	c.log.WithContext(ctx).Warnx(errx.Wrap(err, errx.WithCode(CodeRemoteUnavailable)))
}

func multipartBody(id string, data []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(FileField, id+FileExt)
	if err != nil {
		return nil, "", errx.Wrap(err)
	}
	if _, err = part.Write(data); err != nil {
		return nil, "", errx.Wrap(err)
	}
	if err = w.Close(); err != nil {
		return nil, "", errx.Wrap(err)
	}
	return &buf, w.FormDataContentType(), nil
}

func withOp(ctx context.Context, owner, id, op string) context.Context {
	return meta.InjectMetaToContext(meta.WithTrace(ctx), map[meta.ContextKey]string{
		meta.Owner:     owner,
		meta.AssetID:   id,
		meta.Operation: op,
	})
}
