package clock

import (
	"math"
	"testing"
	"time"
)

func TestAdvance(t *testing.T) {
	c := New()
	if dt := c.Advance(0.5); dt != 0.5 {
		t.Errorf("Advance at speed 1 = %f, want 0.5", dt)
	}

	c.Faster()
	c.MuchFaster()
	if c.Speed() != 20 {
		t.Fatalf("Speed() = %f, want 20", c.Speed())
	}
	if dt := c.Advance(0.1); math.Abs(dt-2) > 1e-12 {
		t.Errorf("Advance at speed 20 = %f, want 2", dt)
	}
	if math.Abs(c.SimTime()-2.5) > 1e-12 {
		t.Errorf("SimTime() = %f, want 2.5", c.SimTime())
	}
	if math.Abs(c.Seconds()-2.5*86400) > 1e-6 {
		t.Errorf("Seconds() = %f", c.Seconds())
	}
}

func TestSpeedFactors(t *testing.T) {
	tests := []struct {
		name string
		op   func(*Clock)
		want float64
	}{
		{"faster", (*Clock).Faster, 2},
		{"slower", (*Clock).Slower, 0.5},
		{"much faster", (*Clock).MuchFaster, 10},
		{"much slower", (*Clock).MuchSlower, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			tt.op(c)
			if math.Abs(c.Speed()-tt.want) > 1e-15 {
				t.Errorf("Speed() = %g, want %g", c.Speed(), tt.want)
			}
		})
	}
}

func TestRepeatedSlowdownApproachesHalt(t *testing.T) {
	c := New()
	for i := 0; i < 30; i++ {
		c.MuchSlower()
	}
	if dt := c.Advance(1); dt <= 0 || dt > 1e-29 {
		t.Errorf("expected a near-zero positive step, got %g", dt)
	}
}

func TestPause(t *testing.T) {
	c := New()
	c.Advance(1)
	c.Pause()

	for i := 0; i < 10; i++ {
		if dt := c.Advance(1); dt != 0 {
			t.Fatalf("paused Advance returned %f", dt)
		}
	}
	if c.SimTime() != 1 {
		t.Errorf("SimTime moved while paused: %f", c.SimTime())
	}
	if c.RealElapsed() != 11 {
		t.Errorf("RealElapsed() = %f, want 11", c.RealElapsed())
	}

	c.TogglePause()
	if c.Paused() {
		t.Error("expected running after toggle")
	}
}

func TestDate(t *testing.T) {
	c := New()
	want := time.Date(2022, time.November, 25, 0, 0, 0, 0, time.UTC)
	if d := c.Date(); d.Sub(want).Abs() > time.Second {
		t.Errorf("Date() at zero = %v, want %v", d, want)
	}

	c.SetSpeed(36.5)
	c.Advance(1)
	if d := c.Date(); d.Sub(want.AddDate(0, 0, 36)).Abs() > 13*time.Hour {
		t.Errorf("Date() after 36.5 days = %v", d)
	}
}

func TestNewAt(t *testing.T) {
	epoch := time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)
	c := NewAt(epoch)
	if d := c.Epoch(); d.Sub(epoch).Abs() > time.Second {
		t.Errorf("Epoch() = %v, want %v", d, epoch)
	}
}

func TestReset(t *testing.T) {
	c := New()
	c.MuchFaster()
	c.Advance(3)
	c.Pause()
	c.Reset()

	if c.Speed() != 1 || c.Paused() || c.SimTime() != 0 || c.RealElapsed() != 0 {
		t.Errorf("Reset left speed=%f paused=%v simTime=%f", c.Speed(), c.Paused(), c.SimTime())
	}
}
