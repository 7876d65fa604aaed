package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	tokenAlphabet   = "0123456789abcdefghijklmnopqrstuvwxyz"
	tokenSegmentLen = 13
)

var tokenBase = big.NewInt(int64(len(tokenAlphabet)))

// NewVerificationToken returns two random base-36 segments of 13 characters,
// drawn from crypto/rand.
func NewVerificationToken() (string, error) {
	buf := make([]byte, 2*tokenSegmentLen)
	for i := range buf {
		n, err := rand.Int(rand.Reader, tokenBase)
		if err != nil {
			return "", fmt.Errorf("token: %w", err)
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}
