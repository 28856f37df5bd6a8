package model

import (
	"math/rand/v2"
	"strings"
)

// GenerateNumber returns prefix followed by n random decimal digits.
func GenerateNumber(prefix string, n int) string {
	var b strings.Builder
	b.Grow(len(prefix) + n)
	b.WriteString(prefix)
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}
