package model

import (
	"fmt"

	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// MLP is a small dense regression network used to exercise the learning
// rate schedule end to end: input -> hidden (ReLU) -> output, trained
// against a mean squared error loss. Gradients are produced by gorgonia's
// autodiff; the actual weight updates are applied externally by a
// learning rule over the learnable tensors.
type MLP struct {
	g      *gorgonia.ExprGraph
	input  *gorgonia.Node
	target *gorgonia.Node

	fc1W *gorgonia.Node
	fc1B *gorgonia.Node
	fc2W *gorgonia.Node
	fc2B *gorgonia.Node

	output  *gorgonia.Node
	loss    *gorgonia.Node
	lossVal gorgonia.Value

	vm gorgonia.VM

	inputSize  int
	hiddenSize int
	outputSize int
	batchSize  int
}

// NewMLP builds the network graph for a fixed batch size and compiles a
// tape machine with gradients bound to the learnables.
func NewMLP(inputSize, hiddenSize, outputSize, batchSize int) (*MLP, error) {
	if inputSize <= 0 || hiddenSize <= 0 || outputSize <= 0 || batchSize <= 0 {
		return nil, fmt.Errorf("invalid dimensions: input=%d hidden=%d output=%d batch=%d", inputSize, hiddenSize, outputSize, batchSize)
	}

	g := gorgonia.NewGraph()

	input := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(batchSize, inputSize), gorgonia.WithName("input"))
	target := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(batchSize, outputSize), gorgonia.WithName("target"))

	fc1W := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(inputSize, hiddenSize), gorgonia.WithName("fc1_w"), gorgonia.WithInit(gorgonia.GlorotU(1.0)))
	fc1B := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(1, hiddenSize), gorgonia.WithName("fc1_b"), gorgonia.WithInit(gorgonia.Zeroes()))
	fc2W := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(hiddenSize, outputSize), gorgonia.WithName("fc2_w"), gorgonia.WithInit(gorgonia.GlorotU(1.0)))
	fc2B := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(1, outputSize), gorgonia.WithName("fc2_b"), gorgonia.WithInit(gorgonia.Zeroes()))

	h, err := gorgonia.Mul(input, fc1W)
	if err != nil {
		return nil, fmt.Errorf("fc1 failed: %w", err)
	}
	h = gorgonia.Must(gorgonia.BroadcastAdd(h, fc1B, nil, []byte{0}))
	h = gorgonia.Must(gorgonia.Rectify(h))

	out, err := gorgonia.Mul(h, fc2W)
	if err != nil {
		return nil, fmt.Errorf("fc2 failed: %w", err)
	}
	out = gorgonia.Must(gorgonia.BroadcastAdd(out, fc2B, nil, []byte{0}))

	diff := gorgonia.Must(gorgonia.Sub(out, target))
	loss := gorgonia.Must(gorgonia.Mean(gorgonia.Must(gorgonia.Square(diff))))

	m := &MLP{
		g:          g,
		input:      input,
		target:     target,
		fc1W:       fc1W,
		fc1B:       fc1B,
		fc2W:       fc2W,
		fc2B:       fc2B,
		output:     out,
		loss:       loss,
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
		outputSize: outputSize,
		batchSize:  batchSize,
	}

	gorgonia.Read(m.loss, &m.lossVal)

	if _, err := gorgonia.Grad(loss, m.Learnables()...); err != nil {
		return nil, fmt.Errorf("failed to compute gradients: %w", err)
	}

	m.vm = gorgonia.NewTapeMachine(g, gorgonia.BindDualValues(m.Learnables()...))

	return m, nil
}

// Learnables returns the trainable nodes of the network.
func (m *MLP) Learnables() gorgonia.Nodes {
	return gorgonia.Nodes{m.fc1W, m.fc1B, m.fc2W, m.fc2B}
}

// LearnableTensors returns the backing tensors of the learnables, in the
// same order as Learnables. Updating them in place updates the network.
func (m *MLP) LearnableTensors() []*tensor.Dense {
	nodes := m.Learnables()
	ts := make([]*tensor.Dense, len(nodes))
	for i, n := range nodes {
		ts[i] = n.Value().(*tensor.Dense)
	}
	return ts
}

// Gradients returns the gradient tensors of the learnables from the most
// recent Step, in the same order as Learnables.
func (m *MLP) Gradients() ([]*tensor.Dense, error) {
	nodes := m.Learnables()
	grads := make([]*tensor.Dense, len(nodes))
	for i, n := range nodes {
		gv, err := n.Grad()
		if err != nil {
			return nil, fmt.Errorf("gradient for %s unavailable: %w", n.Name(), err)
		}
		grads[i] = gv.(*tensor.Dense)
	}
	return grads, nil
}

// BatchSize returns the fixed batch size the graph was compiled for.
func (m *MLP) BatchSize() int {
	return m.batchSize
}

// Step runs one forward/backward pass over a full batch and returns the
// batch loss. inputs must hold batchSize*inputSize values in row-major
// order, targets batchSize*outputSize.
func (m *MLP) Step(inputs, targets []float64) (float64, error) {
	if len(inputs) != m.batchSize*m.inputSize {
		return 0, fmt.Errorf("expected %d input values, got %d", m.batchSize*m.inputSize, len(inputs))
	}
	if len(targets) != m.batchSize*m.outputSize {
		return 0, fmt.Errorf("expected %d target values, got %d", m.batchSize*m.outputSize, len(targets))
	}

	inputT := tensor.New(tensor.WithShape(m.batchSize, m.inputSize), tensor.WithBacking(inputs))
	targetT := tensor.New(tensor.WithShape(m.batchSize, m.outputSize), tensor.WithBacking(targets))

	if err := gorgonia.Let(m.input, inputT); err != nil {
		return 0, fmt.Errorf("failed to bind input: %w", err)
	}
	if err := gorgonia.Let(m.target, targetT); err != nil {
		return 0, fmt.Errorf("failed to bind target: %w", err)
	}

	m.vm.Reset()
	if err := m.vm.RunAll(); err != nil {
		return 0, fmt.Errorf("forward/backward pass failed: %w", err)
	}

	return m.lossVal.Data().(float64), nil
}

// Close releases the tape machine.
func (m *MLP) Close() error {
	return m.vm.Close()
}
