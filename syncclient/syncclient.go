// Package syncclient reconciles assets with a remote upload service.
//
// The remote resource for an asset is addressed by owner and asset id. Every
// operation returns a plain result instead of an error: transport failures,
// non-URL responses and missing credentials all collapse to "absent" or
// "failed". Retrying is the caller's business.
package syncclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/rise-and-shine/gallery/asset"
)

// CodeRemoteUnavailable tags logged failures of remote calls.
const CodeRemoteUnavailable = "REMOTE_UNAVAILABLE"

// Syncer is the protocol shared by the HTTP client and the direct store client.
type Syncer interface {
	// CheckExists returns the remote URL of owner/id if it exists.
	CheckExists(ctx context.Context, owner, id string) (string, bool)

	// Upload sends the asset's bytes and returns the remote URL on success. It
	// is not idempotent; call CheckExists first to avoid duplicates.
	Upload(ctx context.Context, a *asset.Asset, owner string) (string, bool)

	// Delete removes owner/id remotely. Deleting an absent object reports true.
	Delete(ctx context.Context, a *asset.Asset, owner string) bool
}

// Authorizer decorates an outgoing request with credentials. A returned error
// skips the request.
type Authorizer interface {
	Authorize(req *http.Request) error
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(req *http.Request) error

// Authorize implements Authorizer.
func (f AuthorizerFunc) Authorize(req *http.Request) error { return f(req) }

// parseRemoteURL accepts a trimmed body only if it is an absolute http(s) URL.
func parseRemoteURL(body string) (string, bool) {
	s := strings.TrimSpace(body)
	if s == "" || strings.ContainsAny(s, " \n\t") {
		return "", false
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	return s, true
}

// objectPath is the owner-scoped key of an asset's remote copy.
func objectPath(owner, id string) string {
	return url.PathEscape(owner) + "/" + url.PathEscape(id)
}
