// Package clock owns simulated time: the speed multiplier, the pause flag
// and the elapsed simulated time since the epoch.
//
// One real second at speed 1 advances the simulation by one day, the time
// unit of the scaled gravity constant.
package clock

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// EpochJD is the Julian day of SimTime zero, 2022-11-25 00:00 UTC.
const EpochJD = 2459908.5

const (
	DefaultSpeed  = 1.0
	secondsPerDay = 86400.0
)

type Clock struct {
	speed   float64
	paused  bool
	simTime float64 // days
	real    float64 // seconds, counted while paused too
	epochJD float64
}

func New() *Clock {
	return &Clock{speed: DefaultSpeed, epochJD: EpochJD}
}

// NewAt returns a clock whose SimTime zero is the given instant.
func NewAt(epoch time.Time) *Clock {
	return &Clock{speed: DefaultSpeed, epochJD: julian.TimeToJD(epoch)}
}

// Advance consumes realDt seconds of wall time and returns the effective
// step for the integrator. It returns zero while paused.
func (c *Clock) Advance(realDt float64) float64 {
	c.real += realDt
	if c.paused {
		return 0
	}
	dt := realDt * c.speed
	c.simTime += dt
	return dt
}

func (c *Clock) Speed() float64 { return c.speed }

// SetSpeed sets the multiplier. No bounds are enforced.
func (c *Clock) SetSpeed(s float64) { c.speed = s }

func (c *Clock) Faster()     { c.speed *= 2 }
func (c *Clock) Slower()     { c.speed /= 2 }
func (c *Clock) MuchFaster() { c.speed *= 10 }
func (c *Clock) MuchSlower() { c.speed /= 10 }

func (c *Clock) Pause()       { c.paused = true }
func (c *Clock) Resume()      { c.paused = false }
func (c *Clock) TogglePause() { c.paused = !c.paused }
func (c *Clock) Paused() bool { return c.paused }

// SimTime returns elapsed simulated days since the epoch.
func (c *Clock) SimTime() float64 { return c.simTime }

func (c *Clock) Seconds() float64 { return c.simTime * secondsPerDay }

// RealElapsed returns wall seconds fed to Advance since the last reset.
func (c *Clock) RealElapsed() float64 { return c.real }

// Date returns the calendar instant for the current SimTime in UTC.
func (c *Clock) Date() time.Time {
	return julian.JDToTime(c.epochJD + c.simTime).UTC()
}

func (c *Clock) Epoch() time.Time {
	return julian.JDToTime(c.epochJD).UTC()
}

// Reset restores speed 1, unpaused, SimTime zero. The epoch is kept.
func (c *Clock) Reset() {
	c.speed = DefaultSpeed
	c.paused = false
	c.simTime = 0
	c.real = 0
}
