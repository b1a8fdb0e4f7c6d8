package plan

import "context"

// Strategy decides when the planner has drawn enough lines. Done is called
// before every step with the anchor order planned so far.
type Strategy interface {
	Done(p *Planner, order []int) bool
}

// StrategyFunc adapts an ordinary function to the Strategy interface.
type StrategyFunc func(p *Planner, order []int) bool

// Done calls f(p, order).
func (f StrategyFunc) Done(p *Planner, order []int) bool { return f(p, order) }

// FixedCount completes once the given number of lines has been planned.
type FixedCount int

// Done implements Strategy.
func (n FixedCount) Done(_ *Planner, order []int) bool {
	return len(order) > int(n)
}

// Defaults for LossThreshold.
const (
	DefaultLossWait    = 100
	DefaultLossMinWait = 20
	DefaultLossCeiling = 3000
)

// LossThreshold completes once the total residual drops below Target.
//
// Computing the loss scans the whole buffer, so it only happens every Wait
// steps. After each check Wait is halved down to MinWait, checking more often
// as the plan grows. Ceiling is a hard stop on the order length.
type LossThreshold struct {
	Target  float64
	Wait    int
	MinWait int
	Ceiling int

	current int
}

// NewLossThreshold returns a LossThreshold with the default ceiling and
// minimum wait.
func NewLossThreshold(wait int, target float64) *LossThreshold {
	return &LossThreshold{
		Target:  target,
		Wait:    wait,
		MinWait: DefaultLossMinWait,
		Ceiling: DefaultLossCeiling,
	}
}

// Done implements Strategy.
func (l *LossThreshold) Done(p *Planner, order []int) bool {
	if l.Ceiling > 0 && len(order) > l.Ceiling {
		return true
	}

	if l.current >= l.Wait {
		if p.Loss() < l.Target {
			return true
		}
		l.Wait = max(l.Wait/2, l.MinWait)
		l.current = 0
	}

	l.current++
	return false
}

// WithContext completes as soon as ctx is done, or when s completes.
func WithContext(ctx context.Context, s Strategy) Strategy {
	return StrategyFunc(func(p *Planner, order []int) bool {
		if ctx.Err() != nil {
			return true
		}
		return s.Done(p, order)
	})
}

// Progress describes the planner state after a strategy consultation.
type Progress struct {
	Lines int
	Done  bool
}

// Observe calls fn after every consultation of s.
func Observe(s Strategy, fn func(Progress)) Strategy {
	return StrategyFunc(func(p *Planner, order []int) bool {
		done := s.Done(p, order)
		fn(Progress{Lines: len(order) - 1, Done: done})
		return done
	})
}
