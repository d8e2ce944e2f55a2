package orders

import (
	"crypto/rand"
	"fmt"
	"time"
)

const numberSuffixAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// GenerateOrderNumber produces a human-readable order number of the form
// <prefix>-YYYYMMDD-XXXXXX. The suffix is drawn from a crockford-style
// alphabet that avoids ambiguous characters. Uniqueness is enforced by the
// database index; callers retry on collision.
func GenerateOrderNumber(prefix string, now time.Time) (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random suffix: %w", err)
	}
	for i, b := range buf {
		buf[i] = numberSuffixAlphabet[int(b)%len(numberSuffixAlphabet)]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102"), string(buf)), nil
}
