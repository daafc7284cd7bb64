package utils

import (
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
)

// GenerateReferralCode returns a random code of the requested length over
// the base58 alphabet. Base58 drops 0, O, I and l, which keeps codes
// unambiguous when users type them into the bot by hand.
func GenerateReferralCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("code length must be positive")
	}

	for {
		buf := make([]byte, length)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		encoded := base58.Encode(buf)
		if len(encoded) >= length {
			return encoded[:length], nil
		}
	}
}
