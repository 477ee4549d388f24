package dice

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

// TestRollStaysInRange ensures every roll is a face of the die.
func TestRollStaysInRange(t *testing.T) {
	d := New(7)
	for i := 0; i < 10000; i++ {
		v := d.Roll()
		if v < 1 || v > Sides {
			t.Fatalf("roll %d out of range: %d", i, v)
		}
	}
}

// TestRollIsDeterministicForSeed ensures the same seed replays the same rolls.
func TestRollIsDeterministicForSeed(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	d := New(99)
	for i := 0; i < 50; i++ {
		want := rng.Intn(Sides) + 1
		if got := d.Roll(); got != want {
			t.Fatalf("roll %d = %d, want %d", i, got, want)
		}
	}
	if d.Seed() != 99 {
		t.Fatalf("expected seed 99, got %d", d.Seed())
	}
}

// TestRollDistributionIsUniform runs a chi-squared test over many rolls.
func TestRollDistributionIsUniform(t *testing.T) {
	const samples = 60000
	d := New(2024)
	counts := make([]int, Sides+1)
	for i := 0; i < samples; i++ {
		counts[d.Roll()]++
	}

	expected := float64(samples) / Sides
	chi := 0.0
	for face := 1; face <= Sides; face++ {
		diff := float64(counts[face]) - expected
		chi += diff * diff / expected
	}
	// 5 degrees of freedom; p=0.001 critical value is 20.52.
	if chi > 20.52 || math.IsNaN(chi) {
		t.Fatalf("distribution not uniform: chi2=%.2f counts=%v", chi, counts[1:])
	}
}

// TestNewWithSidesRejectsInvalid ensures zero and negative sides are rejected.
func TestNewWithSidesRejectsInvalid(t *testing.T) {
	for _, sides := range []int{0, -3} {
		if _, err := NewWithSides(1, sides); !errors.Is(err, ErrInvalidSides) {
			t.Fatalf("NewWithSides(%d) error = %v, want %v", sides, err, ErrInvalidSides)
		}
	}
}

// TestNewRandomKeepsExplicitSeed ensures a non-zero seed is not replaced.
func TestNewRandomKeepsExplicitSeed(t *testing.T) {
	d, err := NewRandom(5)
	if err != nil {
		t.Fatalf("NewRandom returned error: %v", err)
	}
	if d.Seed() != 5 {
		t.Fatalf("expected seed 5, got %d", d.Seed())
	}
}

func TestNewSeed(t *testing.T) {
	if _, err := NewSeed(); err != nil {
		t.Fatalf("NewSeed returned error: %v", err)
	}
}

func TestRollerFunc(t *testing.T) {
	var r Roller = RollerFunc(func() int { return 4 })
	if r.Roll() != 4 {
		t.Fatalf("expected 4")
	}
}
