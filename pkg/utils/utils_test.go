package utils

import (
	"strings"
	"testing"
)

func TestRandSourceDeterministic(t *testing.T) {
	a := NewRandSource(42)
	b := NewRandSource(42)

	for i := 0; i < 100; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("same seed diverged at draw %d", i)
		}
	}
}

func TestRandSourceUniformRange(t *testing.T) {
	r := NewRandSource(7)
	for i := 0; i < 1000; i++ {
		v := r.UniformFloat64(0.5, 2.5)
		if v < 0.5 || v >= 2.5 {
			t.Fatalf("uniform draw %f out of [0.5, 2.5)", v)
		}
	}
}

func TestGenerateIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateID()
		if seen[id] {
			t.Fatalf("duplicate ID: %s", id)
		}
		seen[id] = true
	}
}

func TestGenerateRunIDPrefix(t *testing.T) {
	id := GenerateRunID()
	if !strings.HasPrefix(id, "run-") {
		t.Fatalf("expected run- prefix, got %s", id)
	}
	if id == GenerateRunID() {
		t.Fatalf("expected distinct run IDs")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name             string
		value, min, max  float64
		want             float64
	}{
		{"below", -1, 0, 10, 0},
		{"inside", 5, 0, 10, 5},
		{"above", 15, 0, 10, 10},
		{"at min", 0, 0, 10, 0},
		{"at max", 10, 0, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.value, tt.min, tt.max); got != tt.want {
				t.Fatalf("Clamp(%f, %f, %f) = %f, want %f", tt.value, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(1.52, 1.5, 0.05) {
		t.Fatalf("1.52 should be within 5%% of 1.5")
	}
	if WithinTolerance(1.6, 1.5, 0.05) {
		t.Fatalf("1.6 should not be within 5%% of 1.5")
	}
	if !WithinTolerance(0, 0, 0.05) {
		t.Fatalf("zero should match zero reference")
	}
	if WithinTolerance(0.1, 0, 0.05) {
		t.Fatalf("nonzero should not match zero reference")
	}
}
