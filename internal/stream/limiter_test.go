package stream

import "testing"

func TestLimiterPerIP(t *testing.T) {
	l := newLimiter(2)

	if !l.acquire("10.0.0.1") || !l.acquire("10.0.0.1") {
		t.Fatal("first two acquires should succeed")
	}
	if l.acquire("10.0.0.1") {
		t.Error("third acquire for the same IP should fail")
	}
	// Other IPs are unaffected.
	if !l.acquire("10.0.0.2") {
		t.Error("acquire for a different IP should succeed")
	}

	l.release("10.0.0.1")
	if !l.acquire("10.0.0.1") {
		t.Error("acquire after release should succeed")
	}
}

func TestLimiterCount(t *testing.T) {
	l := newLimiter(5)
	if l.count("10.0.0.1") != 0 {
		t.Error("count for unknown IP should be 0")
	}
	l.acquire("10.0.0.1")
	l.acquire("10.0.0.1")
	if got := l.count("10.0.0.1"); got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
	l.release("10.0.0.1")
	l.release("10.0.0.1")
	if got := l.count("10.0.0.1"); got != 0 {
		t.Errorf("count after releases = %d, want 0", got)
	}
}

func TestLimiterGlobalCap(t *testing.T) {
	l := newLimiter(5)
	l.maxTotal = 3

	for i := 0; i < 3; i++ {
		if !l.acquire("10.0.0.1") {
			t.Fatalf("acquire %d should succeed", i)
		}
	}
	if l.acquire("10.0.0.2") {
		t.Error("acquire past the global cap should fail")
	}
}
