package test

import (
	"fmt"
	"math/rand/v2"
)

const asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomASCIIString returns a pseudo-random alphanumeric string with length in [minLen, maxLen].
func RandomASCIIString(minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	length := minLen + rand.IntN(maxLen-minLen+1)
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = asciiLetters[rand.IntN(len(asciiLetters))]
	}
	return string(buf)
}

// RandomOrderNumber returns a well-formed order number that is unlikely to exist.
func RandomOrderNumber() string {
	return fmt.Sprintf("R%09d", rand.IntN(1_000_000_000))
}
