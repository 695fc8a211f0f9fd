package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)
	defer s.Close()

	_, ok, err := s.Get(ctx, "json:madelyn")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "json:madelyn", []byte(`{"a":1}`), time.Minute))

	got, ok, err := s.Get(ctx, "json:madelyn")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(got))
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(20 * time.Millisecond)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	assert.Eventually(t, func() bool {
		_, ok, _ := s.Get(ctx, "k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestNewRedisStoreRejectsBadURL(t *testing.T) {
	_, err := NewRedisStore("not a url", "")
	assert.Error(t, err)
}
