package id

import (
	"crypto/rand"
	"encoding/hex"
)

// Generator creates opaque identifiers. Session, project and task ids are
// never parsed; only compared for equality.
type Generator interface {
	New() string
}

type RandomHex struct{}

func (RandomHex) New() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// Prefixed tags generated ids with a short kind marker ("sess-", "task-")
// so daemon logs stay readable.
type Prefixed struct {
	Prefix string
	Inner  Generator
}

func (p Prefixed) New() string {
	inner := p.Inner
	if inner == nil {
		inner = RandomHex{}
	}
	return p.Prefix + inner.New()
}
