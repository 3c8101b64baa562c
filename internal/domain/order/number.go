package order

import (
	"crypto/rand"
	"fmt"
	"time"
)

// numberAlphabet is the uppercase base-36 set used for the random suffix.
const numberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// suffixLength is the number of random characters after the date stamp.
const suffixLength = 6

// NewNumber generates a human-readable order number of the form
// ORD-YYYYMMDD-XXXXXX. Uniqueness is probabilistic only; the repository
// enforces it with a unique constraint and callers retry on conflict.
func NewNumber(now time.Time) string {
	buf := make([]byte, suffixLength)
	// rand.Read on crypto/rand never fails on supported platforms.
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = numberAlphabet[int(b)%len(numberAlphabet)]
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), buf)
}
