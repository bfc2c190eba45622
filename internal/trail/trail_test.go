package trail

import "testing"

func TestBufferAppendBelowCap(t *testing.T) {
	b := NewBuffer(5)
	for i := 0; i < 3; i++ {
		b.Append(float64(i), float64(-i))
	}

	if b.Len() != 3 {
		t.Errorf("Len = %d, want 3", b.Len())
	}
	pts := b.Points()
	if pts[0].Lon != 0 || pts[2].Lon != 2 {
		t.Errorf("order wrong: %+v", pts)
	}
}

// TestBufferEviction fills past the cap and checks the oldest points fall off
// while order is preserved.
func TestBufferEviction(t *testing.T) {
	b := NewBuffer(3)
	for i := 0; i < 7; i++ {
		b.Append(float64(i), 0)
	}

	if b.Len() != 3 {
		t.Fatalf("Len = %d, want 3", b.Len())
	}
	pts := b.Points()
	for i, want := range []float64{4, 5, 6} {
		if pts[i].Lon != want {
			t.Errorf("pts[%d].Lon = %v, want %v", i, pts[i].Lon, want)
		}
	}
}

// Points must be a copy: appending after the read must not change what the
// reader already holds.
func TestBufferPointsIsCopy(t *testing.T) {
	b := NewBuffer(2)
	b.Append(1, 1)
	b.Append(2, 2)

	pts := b.Points()
	b.Append(3, 3) // evicts (1,1)

	if pts[0].Lon != 1 {
		t.Errorf("snapshot mutated: pts[0].Lon = %v, want 1", pts[0].Lon)
	}
}

func TestBufferDefaultCap(t *testing.T) {
	b := NewBuffer(0)
	if b.Cap() != 200 {
		t.Errorf("default cap = %d, want 200", b.Cap())
	}
}
