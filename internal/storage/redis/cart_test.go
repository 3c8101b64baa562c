package redis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steelhaven/storefront/internal/domain/cart"
)

func setupTestRedis(t *testing.T) (*CartPersister, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCartPersister(client), mr
}

func testLines() []cart.Line {
	return []cart.Line{
		{ID: "p1", Name: "Katana", Price: decimal.RequireFromString("599.00"), ImageURL: "katana.jpg", Quantity: 2},
		{ID: "p2", Name: "Tanto", Price: decimal.RequireFromString("149.00"), Quantity: 1},
	}
}

func TestCartPersister_RoundTrip(t *testing.T) {
	p, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, p.Save(ctx, "sess-1", testLines()))

	got, err := p.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Same ids, quantities, prices, images after the round trip.
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, 2, got[0].Quantity)
	assert.True(t, decimal.RequireFromString("599.00").Equal(got[0].Price))
	assert.Equal(t, "katana.jpg", got[0].ImageURL)
	assert.Equal(t, "p2", got[1].ID)
}

func TestCartPersister_LoadMissingKey(t *testing.T) {
	p, _ := setupTestRedis(t)

	got, err := p.Load(context.Background(), "never-saved")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCartPersister_LoadMalformedPayload(t *testing.T) {
	p, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(cartKey("sess-1"), "{not json"))

	got, err := p.Load(context.Background(), "sess-1")
	require.NoError(t, err, "malformed persisted cart fails open")
	assert.Empty(t, got)
}

func TestCartPersister_Delete(t *testing.T) {
	p, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, p.Save(ctx, "sess-1", testLines()))
	require.NoError(t, p.Delete(ctx, "sess-1"))

	assert.False(t, mr.Exists(cartKey("sess-1")))
}

func TestCartPersister_SaveSetsTTL(t *testing.T) {
	p, mr := setupTestRedis(t)

	require.NoError(t, p.Save(context.Background(), "sess-1", testLines()))

	assert.Greater(t, mr.TTL(cartKey("sess-1")).Seconds(), float64(0))
}

func TestCartPersister_StoreIntegration(t *testing.T) {
	p, mr := setupTestRedis(t)
	ctx := context.Background()

	s := cart.NewStore(ctx, "sess-1", p)
	s.AddItem(ctx, cart.Line{ID: "p1", Name: "Katana", Price: decimal.NewFromInt(599)}, 2)
	s.AddItem(ctx, cart.Line{ID: "p2", Name: "Tanto", Price: decimal.NewFromInt(149)}, 1)

	// A fresh store for the same session sees the persisted state.
	restored := cart.NewStore(ctx, "sess-1", p)
	assert.Equal(t, 3, restored.Count())
	assert.True(t, decimal.NewFromInt(1347).Equal(restored.Subtotal()))

	// The stored payload is a plain JSON array of lines.
	raw, err := mr.Get(cartKey("sess-1"))
	require.NoError(t, err)
	var lines []cart.Line
	require.NoError(t, json.Unmarshal([]byte(raw), &lines))
	assert.Len(t, lines, 2)
}
