package test

import "math/rand/v2"

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"

// RandomToken returns an opaque token of minLen to maxLen characters, suitable for
// bearer and CSRF values in tests.
func RandomToken(minLen, maxLen int) string {
	minLen = max(minLen, 1)
	maxLen = max(maxLen, minLen)
	n := minLen + rand.IntN(maxLen-minLen+1)
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = tokenAlphabet[rand.IntN(len(tokenAlphabet))]
	}
	return string(buf)
}
