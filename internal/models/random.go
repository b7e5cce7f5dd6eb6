package models

import "math/rand"

const tokenAlphabet = "qwertyuiopasdfghjklzxcvbnm1234567890"

// RandomToken returns n random lowercase alphanumerics. Used for canary
// prefixes, cache busters and bucket-sizing filler payloads.
func RandomToken(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = tokenAlphabet[rand.Intn(len(tokenAlphabet))]
	}
	return string(b)
}
