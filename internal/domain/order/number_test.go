package order

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewNumber_Format(t *testing.T) {
	now := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

	n := NewNumber(now)

	assert.Regexp(t, `^ORD-20260830-[0-9A-Z]{6}$`, n)
	assert.True(t, strings.HasPrefix(n, "ORD-20260830-"))
}

func TestNewNumber_SuffixVaries(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{})
	for range 100 {
		seen[NewNumber(now)] = struct{}{}
	}
	// Collisions over 100 draws from a 36^6 space would indicate a broken
	// random source rather than bad luck.
	assert.Greater(t, len(seen), 95)
}
