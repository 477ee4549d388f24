// Package dice rolls the six-sided die used for every turn.
//
// Rolls come from a math/rand source. The source is seeded from crypto/rand
// unless a fixed seed is requested, which makes a whole match reproducible.
// No fairness or anti-cheat guarantee is made beyond uniformity.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"sync"
)

// Sides is the number of faces on the game die.
const Sides = 6

// ErrInvalidSides indicates a die was requested with fewer than one face.
var ErrInvalidSides = errors.New("die must have at least one side")

// Roller produces independent die values.
type Roller interface {
	Roll() int
}

// RollerFunc adapts a function to Roller.
type RollerFunc func() int

func (f RollerFunc) Roll() int { return f() }

// Die is a seeded die safe for concurrent use.
type Die struct {
	mu    sync.Mutex
	rng   *rand.Rand
	sides int
	seed  int64
}

// New returns a six-sided die seeded with seed.
func New(seed int64) *Die {
	d, _ := NewWithSides(seed, Sides)
	return d
}

// NewWithSides returns a die with the given number of sides.
func NewWithSides(seed int64, sides int) (*Die, error) {
	if sides <= 0 {
		return nil, ErrInvalidSides
	}
	return &Die{
		rng:   rand.New(rand.NewSource(seed)),
		sides: sides,
		seed:  seed,
	}, nil
}

// NewRandom returns a six-sided die seeded from crypto/rand. A zero seed
// argument asks for a random seed; any other value is used as is.
func NewRandom(seed int64) (*Die, error) {
	if seed == 0 {
		var err error
		seed, err = NewSeed()
		if err != nil {
			return nil, err
		}
	}
	return New(seed), nil
}

// Roll returns a value in [1, sides].
func (d *Die) Roll() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Intn(d.sides) + 1
}

// Seed reports the seed the die was created with.
func (d *Die) Seed() int64 {
	return d.seed
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
