package core

import (
	"testing"
)

// TestNewHashDeterministic tests that identical inputs hash identically
func TestNewHashDeterministic(t *testing.T) {
	a := NewHash([]byte("store,date,weekly_sales"))
	b := NewHash([]byte("store,date,weekly_sales"))
	if a != b {
		t.Errorf("Expected identical hashes, got %s and %s", a, b)
	}
	if len(a.String()) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(a.String()))
	}
}

// TestNewHashDistinguishesInputs tests that different inputs hash differently
func TestNewHashDistinguishesInputs(t *testing.T) {
	a := NewHash([]byte("1,05-02-2010,24000"))
	b := NewHash([]byte("1,05-02-2010,24001"))
	if a == b {
		t.Error("Expected different hashes for different inputs")
	}
}

// TestHashIsEmpty tests hash emptiness check
func TestHashIsEmpty(t *testing.T) {
	if !Hash("").IsEmpty() {
		t.Error("Expected empty hash to be empty")
	}
	if NewHash(nil).IsEmpty() {
		t.Error("Expected hash of empty input to still be non-empty")
	}
}
