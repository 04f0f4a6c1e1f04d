package cache

import (
	"context"
	"testing"
	"time"

	dom "Tracker/internal/domain"
	"Tracker/internal/listing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*ActivityCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewActivityCache(rdb, time.Minute), mr
}

func TestActivityCache_MissThenHit(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	byTitle := listing.State{Column: listing.ColumnTitle}

	list, err := c.GetList(ctx, "alice", byTitle)
	require.NoError(t, err)
	assert.Nil(t, list)

	want := []dom.Activity{{
		ID: 1, Title: "Run", Category: "Fitness",
		DateCompleted: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), MinToComplete: 30, Username: "alice",
	}}
	require.NoError(t, c.SetList(ctx, "alice", byTitle, want))

	got, err := c.GetList(ctx, "alice", byTitle)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Run", got[0].Title)
	assert.True(t, want[0].DateCompleted.Equal(got[0].DateCompleted))
}

func TestActivityCache_EmptyListIsHit(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetList(ctx, "alice", listing.State{}, nil))

	got, err := c.GetList(ctx, "alice", listing.State{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestActivityCache_KeysPerSortState(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetList(ctx, "alice", listing.State{}, nil))
	require.NoError(t, c.SetList(ctx, "alice", listing.State{Column: listing.ColumnCategory, Descending: true}, nil))

	assert.True(t, mr.Exists("activities:alice:title:ASC"))
	assert.True(t, mr.Exists("activities:alice:category:DESC"))
}

func TestActivityCache_InvalidateOnlyTouchesOwner(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetList(ctx, "alice", listing.State{}, nil))
	require.NoError(t, c.SetList(ctx, "alice", listing.State{Column: listing.ColumnDateCompleted}, nil))
	require.NoError(t, c.SetList(ctx, "alice2", listing.State{}, nil))

	require.NoError(t, c.Invalidate(ctx, "alice"))

	assert.False(t, mr.Exists("activities:alice:title:ASC"))
	assert.False(t, mr.Exists("activities:alice:date_completed:ASC"))
	assert.True(t, mr.Exists("activities:alice2:title:ASC"))
}
