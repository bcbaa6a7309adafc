// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"math/big"
)

const lowerAlphanumeric = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateUserHandle returns a public customer handle such as "user_k3x9a1z".
func GenerateUserHandle() (string, error) {
	suffix, err := randomFrom(lowerAlphanumeric, 7)
	if err != nil {
		return "", err
	}
	return "user_" + suffix, nil
}

func randomFrom(charset string, length int) (string, error) {
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}
