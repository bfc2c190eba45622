// Package trail keeps the bounded history of recent live positions that the
// map renders as a polyline behind the tracked object.
package trail

// Point is a (longitude, latitude) pair, in the order map geometry expects.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Buffer is a bounded FIFO of trail points. Append order is arrival order;
// once the cap is reached the oldest point is evicted first. Not safe for
// concurrent use — the engine loop is the single owner.
type Buffer struct {
	points []Point
	cap    int
}

// NewBuffer creates a Buffer holding at most cap points.
func NewBuffer(cap int) *Buffer {
	if cap <= 0 {
		cap = 200
	}
	return &Buffer{
		points: make([]Point, 0, cap),
		cap:    cap,
	}
}

// Append pushes a new point, evicting the oldest if the buffer is full.
func (b *Buffer) Append(lon, lat float64) {
	if len(b.points) >= b.cap {
		n := copy(b.points, b.points[1:])
		b.points = b.points[:n]
	}
	b.points = append(b.points, Point{Lon: lon, Lat: lat})
}

// Len returns the current number of points.
func (b *Buffer) Len() int {
	return len(b.points)
}

// Cap returns the maximum number of points retained.
func (b *Buffer) Cap() int {
	return b.cap
}

// Points returns a copy of the trail, oldest first.
func (b *Buffer) Points() []Point {
	out := make([]Point, len(b.points))
	copy(out, b.points)
	return out
}
