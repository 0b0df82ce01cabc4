package runtime

import (
	"time"

	"github.com/aretw0/boardwalk/pkg/domain"
)

// PhaseChange records one transition of the rotation state machine.
type PhaseChange struct {
	From domain.Phase
	To   domain.Phase
}

// RequestRotation starts a squeeze-turn-enlarge cycle of delta degrees, or queues it
// behind the cycle in flight. A zero delta is ignored.
func RequestRotation(s domain.RotationState, delta int) (domain.RotationState, []PhaseChange) {
	if delta == 0 {
		return s, nil
	}
	if s.Phase != domain.PhaseIdle {
		s.Pending = append(append([]int(nil), s.Pending...), delta)
		return s, nil
	}
	return begin(s, delta), []PhaseChange{{From: domain.PhaseIdle, To: domain.PhaseSqueezing}}
}

// StepRotation advances the state machine by elapsed milliseconds. It is pure: the
// returned state is a new value. At most one phase completes per step; a completed
// phase snaps to its exact target and the surplus time is not carried over.
func StepRotation(s domain.RotationState, elapsed float64, cfg domain.RotationConfig) (domain.RotationState, []PhaseChange) {
	total := float64(cfg.Duration) / float64(time.Millisecond)
	squeezeAmount := 1 - cfg.Squeeze

	switch s.Phase {
	case domain.PhaseSqueezing:
		if advance(&s, elapsed, squeezeAmount, total*domain.SqueezeShare) {
			s.Scale = cfg.Squeeze
			s.Phase = domain.PhaseTurning
			s.Progress = 0
			s.From = s.Angle
			s.CounterFrom = s.Counter
			s.CounterDelta = domain.CounterTurn(s.Angle, s.Delta)
			return s, []PhaseChange{{From: domain.PhaseSqueezing, To: domain.PhaseTurning}}
		}
		s.Scale = 1 - s.Progress

	case domain.PhaseTurning:
		amount := float64(s.Delta)
		if amount < 0 {
			amount = -amount
		}
		if advance(&s, elapsed, amount, total*domain.TurnShare) {
			s.Angle = s.From + float64(s.Delta)
			s.Counter = s.CounterFrom + float64(s.CounterDelta)
			s.Phase = domain.PhaseEnlarging
			s.Progress = 0
			return s, []PhaseChange{{From: domain.PhaseTurning, To: domain.PhaseEnlarging}}
		}
		frac := s.Progress / amount
		s.Angle = s.From + float64(s.Delta)*frac
		s.Counter = s.CounterFrom + float64(s.CounterDelta)*frac

	case domain.PhaseEnlarging:
		if advance(&s, elapsed, squeezeAmount, total*domain.EnlargeShare) {
			changes := []PhaseChange{{From: domain.PhaseEnlarging, To: domain.PhaseIdle}}
			s = settle(s)
			if len(s.Pending) > 0 {
				next := s.Pending[0]
				s.Pending = append([]int(nil), s.Pending[1:]...)
				if len(s.Pending) == 0 {
					s.Pending = nil
				}
				s = begin(s, next)
				changes = append(changes, PhaseChange{From: domain.PhaseIdle, To: domain.PhaseSqueezing})
			}
			return s, changes
		}
		s.Scale = cfg.Squeeze + s.Progress
	}
	return s, nil
}

// advance accumulates elapsed * (amount / duration) and reports whether the phase is done.
// A non-positive duration completes the phase immediately.
func advance(s *domain.RotationState, elapsed, amount, duration float64) bool {
	if duration <= 0 || amount <= 0 {
		return true
	}
	if elapsed > 0 {
		s.Progress += elapsed * (amount / duration)
	}
	return s.Progress >= amount
}

func begin(s domain.RotationState, delta int) domain.RotationState {
	s.Phase = domain.PhaseSqueezing
	s.Delta = delta
	s.Progress = 0
	s.Scale = 1
	return s
}

// settle closes a cycle: scale back to exactly 1 and angles normalised to [0, 360).
func settle(s domain.RotationState) domain.RotationState {
	s.Phase = domain.PhaseIdle
	s.Scale = 1
	s.Angle = domain.NormalizeAngle(s.Angle)
	s.Counter = domain.NormalizeAngle(s.Counter)
	s.Delta = 0
	s.From = 0
	s.CounterFrom = 0
	s.CounterDelta = 0
	s.Progress = 0
	return s
}

// SetRotation jumps an idle state to an absolute angle, with the counter-rotation that
// keeps counter-rotated layers upright for that angle.
func SetRotation(s domain.RotationState, angle float64) domain.RotationState {
	s = settle(s)
	s.Angle = domain.NormalizeAngle(angle)
	s.Counter = domain.NormalizeAngle(float64(-90 * domain.Quadrant(s.Angle)))
	return s
}
