package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapters(t *testing.T) {
	file, err := NewFileAdapter(t.TempDir())
	require.NoError(t, err)

	adapters := map[string]Adapter{
		"memory": NewMemoryAdapter(),
		"file":   file,
	}
	for name, a := range adapters {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := a.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, a.Set(ctx, "k", []byte(`{"a":1}`)))
			v, ok, err := a.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.JSONEq(t, `{"a":1}`, string(v))

			keys, err := a.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"k"}, keys)

			require.NoError(t, a.Delete(ctx, "k"))
			require.NoError(t, a.Delete(ctx, "k"))
			_, ok, _ = a.Get(ctx, "k")
			assert.False(t, ok)
		})
	}
}

func TestFileAdapter_InvalidKey(t *testing.T) {
	a, err := NewFileAdapter(t.TempDir())
	require.NoError(t, err)

	var keyErr *InvalidKeyError
	assert.ErrorAs(t, a.Set(context.Background(), "../escape", nil), &keyErr)
	_, _, err = a.Get(context.Background(), "")
	assert.ErrorAs(t, err, &keyErr)
}
