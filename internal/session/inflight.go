package session

import (
	"time"

	"go.uber.org/zap"
)

// Op identifies an asynchronous operation awaiting a host acknowledgment.
// While an Op is in flight its control is locked against duplicate
// submission; a safety deadline force-clears the flag if the host never
// answers, so a lost message cannot wedge the UI permanently.
type Op int

const (
	// Instruction-driven slide edit sent to the host.
	OpEdit Op = iota
	// Animation-group persistence.
	OpAnimate
	// Asynchronous slide insertion.
	OpInsertSlide
)

func (o Op) String() string {
	switch o {
	case OpEdit:
		return "edit"
	case OpAnimate:
		return "animate"
	case OpInsertSlide:
		return "insertSlide"
	}
	return "unknown"
}

const (
	// Safety timeout for edit/animate acknowledgments.
	opTimeout = 120 * time.Second
	// Slide insertion regenerates content host-side, so it gets longer.
	insertTimeout = 180 * time.Second
)

func timeoutFor(op Op) time.Duration {
	if op == OpInsertSlide {
		return insertTimeout
	}
	return opTimeout
}

type inflight struct {
	active   bool
	deadline time.Time
}

// BeginOp marks op in flight. Returns false (and changes nothing) if the op
// is already outstanding; the caller must not submit a duplicate.
func (s *Session) BeginOp(op Op, now time.Time) bool {
	f := s.ops[op]
	if f != nil && f.active {
		return false
	}
	s.ops[op] = &inflight{active: true, deadline: now.Add(timeoutFor(op))}
	return true
}

// AckOp clears op after a host reply (success or failure alike).
func (s *Session) AckOp(op Op) {
	if f := s.ops[op]; f != nil {
		f.active = false
	}
}

func (s *Session) OpInFlight(op Op) bool {
	f := s.ops[op]
	return f != nil && f.active
}

// Tick sweeps in-flight deadlines and force-clears any that elapsed without
// an acknowledgment. Expired ops are returned so the caller can surface the
// condition; each is also logged as a warning.
func (s *Session) Tick(now time.Time) []Op {
	var expired []Op
	for op, f := range s.ops {
		if f.active && now.After(f.deadline) {
			f.active = false
			expired = append(expired, op)
			s.log.Warn("operation timed out waiting for host acknowledgment; clearing flag",
				zap.String("op", op.String()),
				zap.Duration("timeout", timeoutFor(op)))
		}
	}
	return expired
}
