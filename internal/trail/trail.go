// Package trail keeps a bounded polyline of each body's recent positions.
//
// A [Trail] is a fixed-capacity ring buffer: appending to a full trail evicts
// the oldest point. Points that add little to the rendered shape overwrite the
// last recorded point instead of being appended, so slow arcs do not fill the
// buffer with near-duplicates.
//
// Trails are a rendering aid only; nothing in the physics reads them.
package trail

import (
	"github.com/gammazero/deque"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// Capacity is the default number of points a trail holds.
	Capacity = 1024

	// MinimumAngle is the threshold the dot product of the two backward
	// difference vectors must exceed for a point to be appended.
	MinimumAngle = 1.48341872
)

type Trail struct {
	points   deque.Deque[mgl64.Vec3]
	capacity int
}

// New returns an empty trail. A non-positive capacity selects [Capacity].
func New(capacity int) *Trail {
	if capacity <= 0 {
		capacity = Capacity
	}
	return &Trail{capacity: capacity}
}

func (t *Trail) Capacity() int { return t.capacity }
func (t *Trail) Len() int      { return t.points.Len() }

// Record offers p as the newest point of the trail.
//
// With last = trail[-1]-p and prev = trail[-2]-p (prev = last when only one
// point is held), p is appended when last·prev exceeds MinimumAngle. Otherwise
// the last point is moved to p, unless it is the only point.
func (t *Trail) Record(p mgl64.Vec3) {
	n := t.points.Len()
	if n == 0 {
		t.push(p)
		return
	}

	last := t.points.Back().Sub(p)
	prev := last
	if n > 1 {
		prev = t.points.At(n - 2).Sub(p)
	}

	if last.Dot(prev) > MinimumAngle {
		t.push(p)
		return
	}
	if n > 1 {
		t.points.Set(n-1, p)
	}
}

func (t *Trail) push(p mgl64.Vec3) {
	if t.points.Len() >= t.capacity {
		t.points.PopFront()
	}
	t.points.PushBack(p)
}

// Last returns the most recent point, if any.
func (t *Trail) Last() (mgl64.Vec3, bool) {
	if t.points.Len() == 0 {
		return mgl64.Vec3{}, false
	}
	return t.points.Back(), true
}

// Points copies the trail, oldest first.
func (t *Trail) Points() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, t.points.Len())
	for i := range out {
		out[i] = t.points.At(i)
	}
	return out
}

func (t *Trail) Clear() { t.points.Clear() }

// Tracked is anything that owns a trail and a current position.
type Tracked interface {
	Point() mgl64.Vec3
	History() *Trail
}

// RecordAll records the current position of every item that has a trail.
func RecordAll[T Tracked](items []T) {
	for _, it := range items {
		if tr := it.History(); tr != nil {
			tr.Record(it.Point())
		}
	}
}
