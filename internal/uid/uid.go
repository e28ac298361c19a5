// Package uid generates short random identifiers for sessions, users,
// and combat characters.
//
// Identifiers are drawn from a fixed 36-character alphabet. At length 5
// the space is 36^5 (~60M) ids; collision probability is treated as
// negligible for the handful of concurrent sessions a single process
// hosts.
package uid

import (
	"crypto/rand"
)

// Alphabet is the fixed character set identifiers are drawn from.
const Alphabet = "1234567890abcdefghijklmnopqrstuvwxyz"

// Length of a short identifier.
const Length = 5

// LongLength of a long identifier.
const LongLength = 64

// New returns a new short identifier.
func New() string {
	return generate(Length)
}

// NewLong returns a new long identifier.
func NewLong() string {
	return generate(LongLength)
}

func generate(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; if it does the
		// process has no usable entropy source and cannot mint ids at all.
		panic("uid: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(buf)
}
