// Package redis implements cart persistence on a Redis key-value store.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/steelhaven/storefront/internal/domain/cart"
)

// DefaultTTL is how long an untouched cart survives. Every write refreshes it.
const DefaultTTL = 30 * 24 * time.Hour

var _ cart.Persister = (*CartPersister)(nil)

// CartPersister stores each session's full line list as one JSON blob under
// cart:<session>. Concurrent writers to the same session are last-write-wins.
type CartPersister struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartPersister creates a persister with the default TTL.
func NewCartPersister(client *redis.Client) *CartPersister {
	return &CartPersister{client: client, ttl: DefaultTTL}
}

// Save serializes and writes the whole line list, refreshing the TTL.
func (p *CartPersister) Save(ctx context.Context, session string, lines []cart.Line) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshaling cart lines: %w", err)
	}
	if err := p.client.Set(ctx, cartKey(session), data, p.ttl).Err(); err != nil {
		return fmt.Errorf("writing cart %q: %w", session, err)
	}
	return nil
}

// Load reads and deserializes the line list. A missing key or a malformed
// payload is an empty cart, not an error: persisted cart state fails open.
func (p *CartPersister) Load(ctx context.Context, session string) ([]cart.Line, error) {
	data, err := p.client.Get(ctx, cartKey(session)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cart %q: %w", session, err)
	}

	var lines []cart.Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, nil
	}
	return lines, nil
}

// Delete removes the session's cart key.
func (p *CartPersister) Delete(ctx context.Context, session string) error {
	if err := p.client.Del(ctx, cartKey(session)).Err(); err != nil {
		return fmt.Errorf("deleting cart %q: %w", session, err)
	}
	return nil
}

func cartKey(session string) string {
	return "cart:" + session
}
