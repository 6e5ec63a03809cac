// Package idgen hands out task identifiers that are unique for the lifetime of a store.
package idgen

import (
	"fmt"
	"math/big"
	"sync"

	nanoid "github.com/jaevor/go-nanoid"
)

type Allocator interface {
	// Next returns an identifier this allocator has never returned or reserved before.
	Next() string
	// Reserve marks an identifier loaded from storage as taken.
	Reserve(id string)
}

const (
	StrategySequence = "sequence"
	StrategyNanoID   = "nanoid"
)

const DefaultNanoIDLength = 12

var one = big.NewInt(1)

func New(strategy string) (Allocator, error) {
	switch strategy {
	case "", StrategySequence:
		return NewSequence(), nil
	case StrategyNanoID:
		return NewNanoID(DefaultNanoIDLength)
	}
	return nil, fmt.Errorf("unknown id strategy %q", strategy)
}

// Sequence issues 1, 2, 3, ... and skips past any reserved numeric id.
// The counter is unbounded, so a huge id loaded from storage never makes it wrap.
type Sequence struct {
	mtx  sync.Mutex
	last *big.Int
}

func NewSequence() *Sequence {
	return &Sequence{last: new(big.Int)}
}

func (s *Sequence) Next() string {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.last.Add(s.last, one)
	return s.last.String()
}

func (s *Sequence) Reserve(id string) {
	n, ok := new(big.Int).SetString(id, 10)
	if !ok || n.Sign() <= 0 {
		return
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()
	if n.Cmp(s.last) > 0 {
		s.last = n
	}
}

// NanoID issues random URL-safe tokens and regenerates on the (unlikely) collision.
type NanoID struct {
	mtx  sync.Mutex
	gen  func() string
	used map[string]struct{}
}

func NewNanoID(length int) (*NanoID, error) {
	gen, err := nanoid.Standard(length)
	if err != nil {
		return nil, fmt.Errorf("nanoid generator: %w", err)
	}
	return newNanoID(gen), nil
}

func newNanoID(gen func() string) *NanoID {
	return &NanoID{
		gen:  gen,
		used: make(map[string]struct{}),
	}
}

func (n *NanoID) Next() string {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	for {
		id := n.gen()
		if _, taken := n.used[id]; taken {
			continue
		}
		n.used[id] = struct{}{}
		return id
	}
}

func (n *NanoID) Reserve(id string) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	n.used[id] = struct{}{}
}
