// Package meta carries request metadata through context so log lines emitted
// deep inside the gallery and sync packages can be correlated.
package meta

import (
	"context"

	"github.com/google/uuid"
)

// ContextKey is a type for keys used in context values for metadata.
type ContextKey string

const (
	// TraceID correlates the log lines of one logical operation.
	TraceID ContextKey = "trace_id"

	// Owner identifies the remote owner an operation acts for.
	Owner ContextKey = "owner"

	// AssetID identifies the asset an operation acts on.
	AssetID ContextKey = "asset_id"

	// Operation names the store or sync operation in progress.
	Operation ContextKey = "operation"
)

//nolint:gochecknoglobals // fixed extraction order
var knownKeys = []ContextKey{TraceID, Owner, AssetID, Operation}

// InjectMetaToContext adds the non-empty values of data to ctx.
func InjectMetaToContext(ctx context.Context, data map[ContextKey]string) context.Context {
	for k, v := range data {
		if v != "" {
			ctx = context.WithValue(ctx, k, v) //nolint:fatcontext // finite number of keys
		}
	}
	return ctx
}

// ExtractMetaFromContext returns every known key holding a non-empty string.
func ExtractMetaFromContext(ctx context.Context) map[ContextKey]string {
	data := make(map[ContextKey]string)
	for _, k := range knownKeys {
		if v, ok := ctx.Value(k).(string); ok && v != "" {
			data[k] = v
		}
	}
	return data
}

// WithTrace returns ctx carrying a trace id, generating one if ctx has none.
func WithTrace(ctx context.Context) context.Context {
	if v, ok := ctx.Value(TraceID).(string); ok && v != "" {
		return ctx
	}
	return context.WithValue(ctx, TraceID, uuid.NewString())
}
