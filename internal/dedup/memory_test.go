package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ClaimOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ok, err := s.Claim(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Claim(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Claim(ctx, "k2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	ok, _ := s.Claim(ctx, "k", time.Minute)
	require.True(t, ok)

	now = now.Add(59 * time.Second)
	ok, _ = s.Claim(ctx, "k", time.Minute)
	assert.False(t, ok)

	now = now.Add(time.Second)
	ok, _ = s.Claim(ctx, "k", time.Minute)
	assert.True(t, ok)
}

func TestMemoryStore_RememberRecallRelease(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ok, _ := s.Claim(ctx, "k", time.Minute)
	require.True(t, ok)

	_, found, err := s.Recall(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found, "a bare claim has no value yet")

	require.NoError(t, s.Remember(ctx, "k", `{"reference":"r1"}`, time.Minute))
	v, found, err := s.Recall(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"reference":"r1"}`, v)

	require.NoError(t, s.Release(ctx, "k"))
	ok, _ = s.Claim(ctx, "k", time.Minute)
	assert.True(t, ok)
}
