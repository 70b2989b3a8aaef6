package model

import (
	"errors"
	"testing"
)

func TestTypeRegistryDedupByName(t *testing.T) {
	reg := NewTypeRegistry()

	first, err := NewEnum("Bypass", []EnumValue{
		{Symbol: "ACC", Ordinal: 0},
		{Symbol: "SOUR", Ordinal: 1},
	})
	if err != nil {
		t.Fatalf("NewEnum failed: %v", err)
	}
	second, err := NewEnum("Bypass", []EnumValue{
		{Symbol: "ACC", Ordinal: 0},
		{Symbol: "SOUR", Ordinal: 1},
	})
	if err != nil {
		t.Fatalf("NewEnum failed: %v", err)
	}

	got1, err := reg.Register(first)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	got2, err := reg.Register(second)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if got1 != first {
		t.Error("first registration should return the descriptor itself")
	}
	// Re-registration by name must reuse, not clone: object identity.
	if got2 != first {
		t.Error("second registration should return the original instance")
	}
}

func TestTypeRegistryRejectsConflictingRedefinition(t *testing.T) {
	reg := NewTypeRegistry()

	first, err := NewEnum("Bypass", []EnumValue{
		{Symbol: "ACC", Ordinal: 0},
		{Symbol: "SOUR", Ordinal: 1},
	})
	if err != nil {
		t.Fatalf("NewEnum failed: %v", err)
	}
	conflicting, err := NewEnum("Bypass", []EnumValue{
		{Symbol: "ACC", Ordinal: 0},
		{Symbol: "HOLD", Ordinal: 1},
	})
	if err != nil {
		t.Fatalf("NewEnum failed: %v", err)
	}

	if _, err := reg.Register(first); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := reg.Register(conflicting); !errors.Is(err, ErrTypeRedefined) {
		t.Errorf("expected ErrTypeRedefined, got %v", err)
	}
}

func TestTypeRegistryScalarInterning(t *testing.T) {
	reg := NewTypeRegistry()

	a := reg.Scalar(KindFloat)
	b, err := reg.Register(NewScalar(KindFloat))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if a != b {
		t.Error("scalars of the same kind should be interned")
	}
}

func TestRegistryLookup(t *testing.T) {
	types := NewTypeRegistry()
	nodes := []*Node{
		{Kind: KindAttribute, Mnemonic: "SOUR:VOLT:LEV", Name: "voltage_level", Writable: true},
		{Kind: KindCommand, Mnemonic: "FETC", Name: "fetch"},
	}

	reg, err := NewRegistry(nodes, types)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	n, err := reg.Lookup("SOUR:VOLT:LEV")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if n.Name != "voltage_level" {
		t.Errorf("name = %q, want voltage_level", n.Name)
	}

	if _, err := reg.Lookup("NO:SUCH:PATH"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}

	paths := reg.Paths()
	if len(paths) != 2 || paths[0] != "FETC" {
		t.Errorf("Paths = %v", paths)
	}
}

func TestRegistryRejectsDuplicatePaths(t *testing.T) {
	nodes := []*Node{
		{Kind: KindAttribute, Mnemonic: "OUTP:STAT"},
		{Kind: KindAttribute, Mnemonic: "OUTP:STAT"},
	}

	_, err := NewRegistry(nodes, NewTypeRegistry())
	if !errors.Is(err, ErrDuplicatePath) {
		t.Errorf("expected ErrDuplicatePath, got %v", err)
	}
}

func TestRangeContains(t *testing.T) {
	r := &Range{Min: -210, Max: 210}

	tests := []struct {
		v    float64
		want bool
	}{
		{-210, true},
		{210, true},
		{0, true},
		{-210.0001, false},
		{210.0001, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.v); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}
