package recency

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_RoundTrip(t *testing.T) {
	url := os.Getenv("JOBMATCH_TEST_REDIS_URL")
	if url == "" {
		t.Skip("JOBMATCH_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	store := NewRedisStore(client, "jobmatch-test:", nil)
	t.Cleanup(func() { client.Del(context.Background(), store.Key()) })

	c := Load(ctx, store, Options{Now: clock})
	c.MarkAsShown(posting("https://example.com/1"), "ahmed")
	c.MarkAsShown(posting("https://example.com/2"), "sara")
	require.NoError(t, c.Save(ctx))

	reloaded := Load(ctx, store, Options{Now: clock})
	assert.Equal(t, 2, reloaded.Len())
	assert.True(t, reloaded.WasShownRecently(posting("https://example.com/2"), "sara", 3))

	// Saving fewer entries drops the rest
	reloaded.Forget("https://example.com/1")
	require.NoError(t, reloaded.Save(ctx))

	entries, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "https://example.com/2", entries[0].URL)
}
