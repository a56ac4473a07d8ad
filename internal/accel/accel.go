// Package accel scales relative pointer motion by a velocity dependent,
// time decayed multiplier.
//
// Coarse clients (touch pads on phones, game controllers) report small
// integer deltas at a low rate. Scaling them by the logarithm of their speed
// keeps slow motion precise and lets fast flicks cover the screen, and the
// blended history makes consecutive samples ramp smoothly.
package accel

import (
	"math"
	"time"
)

// Params tunes the acceleration curve
type Params struct {
	// Gain scales ln(speed) into the instantaneous multiplier
	Gain float64 `json:"gain"`

	// Blend is the weight of the newest sample against the decayed history
	Blend float64 `json:"blend"`

	// DecayRate is the per millisecond exponential decay of the history
	DecayRate float64 `json:"decay_rate"`
}

// DefaultParams returns the stock curve
func DefaultParams() Params {
	return Params{
		Gain:      7.5,
		Blend:     0.30,
		DecayRate: 2.0,
	}
}

// State is the decay state of one session. The zero value is a fresh session.
type State struct {
	LastTimestamp  time.Time
	LastMultiplier float64
}

// Engine applies Params to motion vectors
type Engine struct {
	params  Params
	enabled bool
	now     func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithClock replaces the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Disabled makes the engine pass vectors through unchanged
func Disabled() Option {
	return func(e *Engine) {
		e.enabled = false
	}
}

// New creates an engine
func New(params Params, opts ...Option) *Engine {
	e := &Engine{
		params:  params,
		enabled: true,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply scales (dx, dy) and updates st. It returns the scaled vector and
// the multiplier used; a zero vector is returned as is with multiplier 1.
func (e *Engine) Apply(st *State, dx, dy int) (int, int, float64) {
	if !e.enabled {
		return dx, dy, 1
	}

	speed := math.Hypot(float64(dx), float64(dy))
	if speed == 0 {
		return dx, dy, 1
	}

	now := e.now()
	dt := float64(now.Sub(st.LastTimestamp).Milliseconds())
	if dt < 0 {
		dt = 0
	}
	st.LastTimestamp = now

	// exp overflows to +Inf for long pauses, which zeroes the history
	st.LastMultiplier /= math.Exp(e.params.DecayRate * dt)

	m := math.Log(speed) * e.params.Gain
	m = m*e.params.Blend + st.LastMultiplier*(1-e.params.Blend)
	m = math.Max(m, 1.0)
	st.LastMultiplier = m

	return int(float64(dx) * m), int(float64(dy) * m), m
}
