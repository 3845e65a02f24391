package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return New(mr.Addr(), "", 0), mr
}

func TestGetOrLoadCachesValue(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(ctx context.Context) ([]byte, error) {
		loads++
		return []byte(`{"name":"lamp"}`), nil
	}

	for i := 0; i < 3; i++ {
		b, err := c.GetOrLoad(ctx, "product:1", time.Minute, loader)
		assert.NoError(t, err)
		assert.Equal(t, `{"name":"lamp"}`, string(b))
	}
	assert.Equal(t, 1, loads)
}

func TestGetOrLoadPropagatesLoaderError(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.GetOrLoad(context.Background(), "product:missing", time.Minute,
		func(ctx context.Context) ([]byte, error) {
			return nil, errors.New("db down")
		})
	assert.Error(t, err)
}

func TestInvalidateForcesReload(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(ctx context.Context) ([]byte, error) {
		loads++
		return []byte("v"), nil
	}

	_, err := c.GetOrLoad(ctx, "k", time.Minute, loader)
	require.NoError(t, err)

	c.Invalidate(ctx, "k")

	_, err = c.GetOrLoad(ctx, "k", time.Minute, loader)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestGetOrLoadJSON(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type product struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}

	loads := 0
	out, err := GetOrLoadJSON(c, ctx, "product:2", time.Minute, func(ctx context.Context) (*product, error) {
		loads++
		return &product{Name: "mug", Price: 9.5}, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "mug", out.Name)

	out, err = GetOrLoadJSON(c, ctx, "product:2", time.Minute, func(ctx context.Context) (*product, error) {
		loads++
		return nil, errors.New("should not be called")
	})
	assert.NoError(t, err)
	assert.Equal(t, 9.5, out.Price)
	assert.Equal(t, 1, loads)
}
