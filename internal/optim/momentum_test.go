package optim

import (
	"math"
	"testing"

	"gorgonia.org/tensor"

	"github.com/thyrook/annealer/internal/schedule"
)

func almostEqual(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func TestMomentumSGDStep(t *testing.T) {
	param := tensor.New(tensor.WithShape(2), tensor.WithBacking([]float64{1.0, 2.0}))
	grad := tensor.New(tensor.WithShape(2), tensor.WithBacking([]float64{0.5, 0.5}))

	rule, err := NewMomentumSGD([]*tensor.Dense{param}, 0.1, 0.9)
	if err != nil {
		t.Fatalf("NewMomentumSGD failed: %v", err)
	}

	// First step: v = -lr*g = -0.05, w = {0.95, 1.95}.
	if err := rule.Step([]*tensor.Dense{grad}); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if got := param.Data().([]float64); !almostEqual(got, []float64{0.95, 1.95}, 1e-12) {
		t.Errorf("after step 1, params = %v; want [0.95 1.95]", got)
	}

	// Second step accumulates momentum: v = 0.9*(-0.05) - 0.05 = -0.095.
	if err := rule.Step([]*tensor.Dense{grad}); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if got := param.Data().([]float64); !almostEqual(got, []float64{0.855, 1.855}, 1e-12) {
		t.Errorf("after step 2, params = %v; want [0.855 1.855]", got)
	}
}

func TestMomentumSGDReset(t *testing.T) {
	param := tensor.New(tensor.WithShape(2), tensor.WithBacking([]float64{1.0, 2.0}))
	grad := tensor.New(tensor.WithShape(2), tensor.WithBacking([]float64{0.5, 0.5}))

	rule, err := NewMomentumSGD([]*tensor.Dense{param}, 0.1, 0.9)
	if err != nil {
		t.Fatalf("NewMomentumSGD failed: %v", err)
	}

	if err := rule.Step([]*tensor.Dense{grad}); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	rule.Reset()

	// With velocity cleared the next step behaves like the first one.
	if err := rule.Step([]*tensor.Dense{grad}); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if got := param.Data().([]float64); !almostEqual(got, []float64{0.90, 1.90}, 1e-12) {
		t.Errorf("after reset+step, params = %v; want [0.90 1.90]", got)
	}
}

func TestMomentumSGDSetLearningRate(t *testing.T) {
	param := tensor.New(tensor.WithShape(1), tensor.WithBacking([]float64{1.0}))
	grad := tensor.New(tensor.WithShape(1), tensor.WithBacking([]float64{1.0}))

	rule, err := NewMomentumSGD([]*tensor.Dense{param}, 0.1, 0.0)
	if err != nil {
		t.Fatalf("NewMomentumSGD failed: %v", err)
	}

	rule.SetLearningRate(0.5)
	if rule.LearningRate() != 0.5 {
		t.Errorf("LearningRate() = %v; want 0.5", rule.LearningRate())
	}

	if err := rule.Step([]*tensor.Dense{grad}); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if got := param.Data().([]float64); !almostEqual(got, []float64{0.5}, 1e-12) {
		t.Errorf("params = %v; want [0.5]", got)
	}
}

func TestMomentumSGDValidation(t *testing.T) {
	if _, err := NewMomentumSGD(nil, 0.1, 0.9); err == nil {
		t.Error("expected error for empty parameter list")
	}

	param := tensor.New(tensor.WithShape(2), tensor.WithBacking([]float64{1.0, 2.0}))
	rule, err := NewMomentumSGD([]*tensor.Dense{param}, 0.1, 0.9)
	if err != nil {
		t.Fatalf("NewMomentumSGD failed: %v", err)
	}

	if err := rule.Step(nil); err == nil {
		t.Error("expected error for mismatched gradient count")
	}

	badGrad := tensor.New(tensor.WithShape(3), tensor.WithBacking([]float64{1, 2, 3}))
	if err := rule.Step([]*tensor.Dense{badGrad}); err == nil {
		t.Error("expected error for mismatched gradient shape")
	}
}

func TestMomentumSGDImplementsLearningRule(t *testing.T) {
	var _ schedule.LearningRule = (*MomentumSGD)(nil)
}
