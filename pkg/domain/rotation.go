package domain

import (
	"math"
	"time"
)

// Phase tags the rotation state machine.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseSqueezing Phase = "squeezing"
	PhaseTurning   Phase = "turning"
	PhaseEnlarging Phase = "enlarging"
)

// Share of the total rotation duration spent in each phase.
const (
	SqueezeShare = 0.2
	TurnShare    = 0.6
	EnlargeShare = 0.2
)

// Default rotation settings.
const (
	DefaultRotationDuration = 600 * time.Millisecond
	DefaultSqueezeFactor    = 0.7
)

// RotationConfig parameterises the squeeze-turn-enlarge cycle.
type RotationConfig struct {
	Duration time.Duration
	Squeeze  float64
}

// DefaultRotationConfig returns the default cycle settings.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{Duration: DefaultRotationDuration, Squeeze: DefaultSqueezeFactor}
}

// Validate checks the squeeze factor and duration.
func (c RotationConfig) Validate() error {
	if c.Duration < 0 {
		return &ConfigError{Field: "rotation_duration", Reason: "must not be negative", Value: c.Duration}
	}
	if !(c.Squeeze > 0 && c.Squeeze < 1) {
		return &ConfigError{Field: "squeeze", Reason: "must be between 0 and 1 (exclusive)", Value: c.Squeeze}
	}
	return nil
}

// RotationState is the explicit value of the rotation state machine.
// It is advanced by a pure step function and never mutated in place.
type RotationState struct {
	Phase Phase `json:"phase"`

	// Angle is the stage rotation in degrees. It is only normalised to [0, 360)
	// when a cycle completes.
	Angle float64 `json:"angle"`
	// Counter is the rotation applied to counter-rotated layers (tokens, border labels).
	Counter float64 `json:"counter"`
	// Scale is the phase scale factor, 1 when idle.
	Scale float64 `json:"scale"`

	// Delta is the in-flight stage delta in degrees.
	Delta int `json:"delta,omitempty"`
	// From and CounterFrom are the angles at the start of the turn.
	From        float64 `json:"from,omitempty"`
	CounterFrom float64 `json:"counter_from,omitempty"`
	// CounterDelta is the quantised counter-rotation for the in-flight turn.
	CounterDelta int `json:"counter_delta,omitempty"`
	// Progress is the accumulated amount for the current phase.
	Progress float64 `json:"progress,omitempty"`

	// Pending holds requests that arrived while a cycle was in flight.
	Pending []int `json:"pending,omitempty"`
}

// NewRotationState returns an idle state at angle 0.
func NewRotationState() RotationState {
	return RotationState{Phase: PhaseIdle, Scale: 1}
}

// Idle reports whether no cycle is running or queued.
func (s RotationState) Idle() bool {
	return s.Phase == PhaseIdle && len(s.Pending) == 0
}

// Quadrant returns floor(((angle+45) mod 360) / 90), using a non-negative modulo.
func Quadrant(angle float64) int {
	a := math.Mod(angle+45, 360)
	if a < 0 {
		a += 360
	}
	return int(math.Floor(a/90)) % 4
}

// CounterTurn returns the counter-rotation in degrees that keeps counter-rotated layers
// axis-aligned after the stage turns from `from` by delta degrees: one quarter turn per
// quadrant boundary crossed, four per complete stage revolution, in the opposite sense.
func CounterTurn(from float64, delta int) int {
	full := delta / 360
	start := Quadrant(from)
	end := Quadrant(from + float64(delta))
	q := end - start
	switch {
	case delta > 0 && q < 0:
		q += 4
	case delta < 0 && q > 0:
		q -= 4
	}
	return -90 * (4*full + q)
}

// NormalizeAngle maps an angle to [0, 360).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	// math.Mod keeps the sign, so -720 comes back as -0.
	if a == 0 || a == 360 {
		return 0
	}
	return a
}
