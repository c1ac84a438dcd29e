// Package token generates the opaque identifiers attached to every
// participation attempt. A token is both the storage key of the record and
// the tracking value passed to the offer network.
package token

import (
	"crypto/rand"
	"io"
	mrand "math/rand/v2"
	"strconv"
	"time"
)

const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	// SuffixLength is the number of random characters after the timestamp.
	SuffixLength = 10
)

// Generator builds tokens of the form <base36 unix nanos>-<random suffix>.
type Generator struct {
	now    func() time.Time
	random io.Reader
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now, random: rand.Reader}
}

// NewGeneratorWith is used by tests to pin the clock or the random source.
func NewGeneratorWith(now func() time.Time, random io.Reader) *Generator {
	if now == nil {
		now = time.Now
	}
	if random == nil {
		random = rand.Reader
	}
	return &Generator{now: now, random: random}
}

// Generate never fails. If the random source errors the suffix is drawn
// from math/rand instead.
func (g *Generator) Generate() string {
	ts := strconv.FormatInt(g.now().UnixNano(), 36)

	buf := make([]byte, SuffixLength)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		for i := range buf {
			buf[i] = byte(mrand.IntN(256))
		}
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}

	return ts + "-" + string(buf)
}

var defaultGenerator = NewGenerator()

// Generate returns a new token from the default generator.
func Generate() string {
	return defaultGenerator.Generate()
}
