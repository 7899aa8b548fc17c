package optim

import (
	"fmt"

	"gorgonia.org/tensor"
)

// MomentumSGD applies classical momentum updates to a fixed set of
// parameter tensors:
//
//	v = momentum*v - lr*grad
//	w = w + v
//
// It implements schedule.LearningRule: the training loop pushes the
// scheduled rate through SetLearningRate, and the warm-restart scheduler
// calls Reset at restart epochs, which zeroes the velocity buffers.
type MomentumSGD struct {
	learningRate float64
	momentum     float64
	params       []*tensor.Dense
	velocity     []*tensor.Dense
}

// NewMomentumSGD creates a momentum rule over the given parameter tensors.
// The rule keeps one velocity buffer per parameter, shaped to match.
func NewMomentumSGD(params []*tensor.Dense, learningRate, momentum float64) (*MomentumSGD, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("no parameters to optimize")
	}

	velocity := make([]*tensor.Dense, len(params))
	for i, p := range params {
		velocity[i] = tensor.New(tensor.Of(p.Dtype()), tensor.WithShape(p.Shape()...))
	}

	return &MomentumSGD{
		learningRate: learningRate,
		momentum:     momentum,
		params:       params,
		velocity:     velocity,
	}, nil
}

// SetLearningRate updates the rate used by subsequent Step calls.
func (o *MomentumSGD) SetLearningRate(rate float64) {
	o.learningRate = rate
}

// LearningRate returns the rate currently in effect.
func (o *MomentumSGD) LearningRate() float64 {
	return o.learningRate
}

// Reset zeroes all velocity buffers. Called by the scheduler at warm
// restarts so stale momentum does not drag the re-peaked rate.
func (o *MomentumSGD) Reset() {
	for _, v := range o.velocity {
		v.Zero()
	}
}

// Step applies one momentum update. grads must align one-to-one with the
// parameter tensors passed at construction; the gradients themselves are
// not modified.
func (o *MomentumSGD) Step(grads []*tensor.Dense) error {
	if len(grads) != len(o.params) {
		return fmt.Errorf("gradient count %d does not match parameter count %d", len(grads), len(o.params))
	}

	for i, g := range grads {
		if !g.Shape().Eq(o.params[i].Shape()) {
			return fmt.Errorf("gradient %d shape %v does not match parameter shape %v", i, g.Shape(), o.params[i].Shape())
		}

		if _, err := o.velocity[i].MulScalar(o.momentum, true, tensor.UseUnsafe()); err != nil {
			return fmt.Errorf("velocity decay failed: %w", err)
		}
		step, err := g.MulScalar(o.learningRate, true)
		if err != nil {
			return fmt.Errorf("gradient scaling failed: %w", err)
		}
		if _, err := o.velocity[i].Sub(step, tensor.UseUnsafe()); err != nil {
			return fmt.Errorf("velocity update failed: %w", err)
		}
		if _, err := o.params[i].Add(o.velocity[i], tensor.UseUnsafe()); err != nil {
			return fmt.Errorf("parameter update failed: %w", err)
		}
	}

	return nil
}
