package schedule

import (
	"fmt"
	"math"
)

// LearningRule is the optimizer-side collaborator of a scheduler. The
// training loop applies the scheduled rate through SetLearningRate; the
// warm-restart scheduler calls Reset at restart epochs so the rule can
// clear its momentum (or other accumulated) state.
type LearningRule interface {
	SetLearningRate(rate float64)
	Reset()
}

// Scheduler computes the learning rate for a training epoch. Update is
// called once per epoch by the owning training loop with the absolute
// epoch index; the returned rate is applied to the rule by the caller.
type Scheduler interface {
	Update(rule LearningRule, epochNumber int) (float64, error)
}

// ConstantScheduler always returns the same learning rate.
type ConstantScheduler struct {
	rate float64
}

// NewConstantScheduler creates a scheduler that holds the rate fixed.
func NewConstantScheduler(rate float64) *ConstantScheduler {
	return &ConstantScheduler{rate: rate}
}

// Update returns the configured rate. The epoch number and rule are
// accepted for interface uniformity and ignored.
func (s *ConstantScheduler) Update(rule LearningRule, epochNumber int) (float64, error) {
	return s.rate, nil
}

// WarmRestartScheduler implements cosine annealing with warm restarts
// (SGDR, https://arxiv.org/abs/1608.03983). Within a cycle the rate
// decays along a half cosine from the cycle's peak toward minRate; at a
// restart the rate jumps back to the peak, the cycle length is multiplied
// by expansionFactor, and the peak is discounted by discountFactor once
// per completed cycle.
//
// Cycle position and the discount exponent are recomputed from the
// absolute epoch number against the original basePeriod on every call,
// while the restart cadence runs off the expanding period. This matches
// the schedule definition exactly; do not "unify" the two period notions.
type WarmRestartScheduler struct {
	minRate         float64
	maxRate         float64
	basePeriod      int
	discountFactor  float64
	expansionFactor float64

	cycleCount      int     // restarts seen so far
	positionInCycle int     // epochs since the last restart
	currentPeriod   float64 // length of the current cycle, grows at restarts
	nextRestart     float64 // absolute epoch of the next restart
}

// NewWarmRestartScheduler creates a warm-restart cosine scheduler.
// basePeriod is the length of the first cycle in epochs and must be
// positive; minRate must not exceed maxRate. The effective peak
// (maxRate * discountFactor^cycle) may fall below minRate for small
// discount factors; that is the caller's choice and is not validated.
// Restarts fire on exact equality with the (float) next-restart epoch,
// so a non-integer expansionFactor can place restarts between integer
// epochs and silently skip them.
func NewWarmRestartScheduler(minRate, maxRate float64, basePeriod int, discountFactor, expansionFactor float64) (*WarmRestartScheduler, error) {
	if basePeriod <= 0 {
		return nil, fmt.Errorf("%w: base period %d", ErrInvalidPeriod, basePeriod)
	}
	if minRate > maxRate {
		return nil, fmt.Errorf("%w: min rate %g exceeds max rate %g", ErrInvalidRateBounds, minRate, maxRate)
	}

	return &WarmRestartScheduler{
		minRate:         minRate,
		maxRate:         maxRate,
		basePeriod:      basePeriod,
		discountFactor:  discountFactor,
		expansionFactor: expansionFactor,
		currentPeriod:   float64(basePeriod),
		nextRestart:     float64(basePeriod),
	}, nil
}

// Update computes the learning rate for the given absolute epoch number.
// When the epoch lands exactly on a restart boundary the cycle state is
// advanced and rule.Reset is invoked (a nil rule skips the callback, which
// lets the schedule be inspected without an optimizer).
func (s *WarmRestartScheduler) Update(rule LearningRule, epochNumber int) (float64, error) {
	if epochNumber < 0 {
		return 0, fmt.Errorf("%w: epoch %d", ErrNegativeEpoch, epochNumber)
	}

	s.positionInCycle = epochNumber % s.basePeriod
	s.cycleCount = epochNumber / s.basePeriod

	// Discount the peak once per completed cycle. Repeated multiplication
	// rather than Pow keeps the exact rounding of the schedule definition.
	effectiveMax := s.maxRate
	for i := 0; i < s.cycleCount; i++ {
		effectiveMax *= s.discountFactor
	}

	if float64(epochNumber) == s.nextRestart {
		s.currentPeriod *= s.expansionFactor
		s.nextRestart += s.currentPeriod
		s.cycleCount++
		s.positionInCycle = 0
		if rule != nil {
			rule.Reset()
		}
	}

	rate := s.minRate + 0.5*(effectiveMax-s.minRate)*(1+math.Cos(math.Pi*float64(s.positionInCycle)/float64(s.basePeriod)))
	s.positionInCycle++

	return rate, nil
}

// CycleCount returns the stored cycle index: the discount exponent used by
// the most recent Update, advanced by one when that call fired a restart.
func (s *WarmRestartScheduler) CycleCount() int {
	return s.cycleCount
}

// NextRestart returns the absolute epoch at which the next restart fires.
func (s *WarmRestartScheduler) NextRestart() float64 {
	return s.nextRestart
}
