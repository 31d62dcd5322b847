package mock

import (
	"crypto/rand"
	"fmt"
)

const idSuffixLength = 6

// randomSuffix returns a short random alphanumeric string for generated ids.
func randomSuffix(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, length)

	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random id: %w", err)
	}

	for i := 0; i < length; i++ {
		b[i] = charset[b[i]%byte(len(charset))]
	}

	return string(b), nil
}
