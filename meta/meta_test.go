// Package meta_test contains tests for the meta package.
package meta_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/gallery/meta"
)

func TestInjectMetaToContext(t *testing.T) {
	tests := []struct {
		name        string
		initialCtx  context.Context
		metaData    map[meta.ContextKey]string
		keyToVerify meta.ContextKey
		valueExpect string
		nilValue    bool
	}{
		{
			name:        "inject single value",
			initialCtx:  t.Context(),
			metaData:    map[meta.ContextKey]string{meta.Owner: "alice"},
			keyToVerify: meta.Owner,
			valueExpect: "alice",
		},
		{
			name:       "inject multiple values",
			initialCtx: t.Context(),
			metaData: map[meta.ContextKey]string{
				meta.Owner:   "alice",
				meta.AssetID: "20240101-120000",
			},
			keyToVerify: meta.AssetID,
			valueExpect: "20240101-120000",
		},
		{
			name:        "skip empty values",
			initialCtx:  t.Context(),
			metaData:    map[meta.ContextKey]string{meta.Owner: ""},
			keyToVerify: meta.Owner,
			nilValue:    true,
		},
		{
			name:        "overwrite existing value",
			initialCtx:  context.WithValue(t.Context(), meta.TraceID, "old"),
			metaData:    map[meta.ContextKey]string{meta.TraceID: "new"},
			keyToVerify: meta.TraceID,
			valueExpect: "new",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := meta.InjectMetaToContext(tc.initialCtx, tc.metaData)
			if tc.nilValue {
				assert.Nil(t, ctx.Value(tc.keyToVerify))
				return
			}
			assert.Equal(t, tc.valueExpect, ctx.Value(tc.keyToVerify))
		})
	}
}

func TestExtractMetaFromContext(t *testing.T) {
	ctx := context.WithValue(t.Context(), meta.Owner, "alice")
	ctx = context.WithValue(ctx, meta.AssetID, "")
	ctx = context.WithValue(ctx, meta.Operation, 42)
	ctx = context.WithValue(ctx, meta.ContextKey("custom"), "ignored")

	got := meta.ExtractMetaFromContext(ctx)

	assert.Equal(t, map[meta.ContextKey]string{meta.Owner: "alice"}, got)
}

func TestWithTrace(t *testing.T) {
	ctx := meta.WithTrace(t.Context())
	id, ok := ctx.Value(meta.TraceID).(string)
	require.True(t, ok)
	require.NotEmpty(t, id)

	assert.Equal(t, ctx, meta.WithTrace(ctx), "existing trace id is kept")
}
