package system

import (
	"testing"
	"time"
)

func TestNowIsUTCAndCurrent(t *testing.T) {
	t.Parallel()

	c := New()
	now := c.Now()
	if now.Location() != time.UTC {
		t.Fatalf("Now() location = %v, want UTC", now.Location())
	}
	if time.Since(now) > time.Minute {
		t.Fatalf("Now() = %v, too far from wall clock", now)
	}
}
