// Package sign includes tests for the record signature function.
package sign

import (
	"regexp"
	"testing"
)

// TestSignDeterministic ensures repeated signing yields the same digest.
func TestSignDeterministic(t *testing.T) {
	t.Parallel()

	s := New()
	first := s.Sign("2026-02-10", "10:20", "120-3")
	second := s.Sign("2026-02-10", "10:20", "120-3")
	if first != second {
		t.Fatalf("Sign() not deterministic: %s vs %s", first, second)
	}
	if !regexp.MustCompile(`^[0-9a-f]{64}$`).MatchString(first) {
		t.Fatalf("Sign() = %q, want lowercase hex sha256", first)
	}
}

// TestSignFieldSensitivity ensures any field change produces a new digest.
func TestSignFieldSensitivity(t *testing.T) {
	t.Parallel()

	s := New()
	base := s.Sign("2026-02-10", "10:20", "120-3")
	variants := []string{
		s.Sign("2026-02-11", "10:20", "120-3"),
		s.Sign("2026-02-10", "11:50", "120-3"),
		s.Sign("2026-02-10", "10:20", "120-4"),
		s.Sign("2026-02-10", "", "120-3"),
		s.Sign("2026-02-10", "10:20", "120-3 "),
	}
	for i, v := range variants {
		if v == base {
			t.Fatalf("variant %d collided with base signature", i)
		}
	}
}

// TestSignEmptyTimeStable pins the digest layout with an absent time.
func TestSignEmptyTimeStable(t *testing.T) {
	t.Parallel()

	s := New()
	if s.Sign("2026-02-10", "", "205") != s.Sign("2026-02-10", "", "205") {
		t.Fatal("empty-time signatures must be stable")
	}
}
