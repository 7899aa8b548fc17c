package training

import "math/rand"

// BatchGenerator walks a dataset in full batches. The model graph is
// compiled for a fixed batch size, so a ragged tail smaller than the
// batch is skipped for the epoch (it comes back after the next shuffle).
type BatchGenerator struct {
	inputs  [][]float64
	targets [][]float64
	idx     int
}

// NewBatchGenerator creates a batch generator over parallel slices.
func NewBatchGenerator(inputs [][]float64, targets [][]float64) *BatchGenerator {
	return &BatchGenerator{
		inputs:  inputs,
		targets: targets,
	}
}

// NextBatch returns the next full batch, or ok=false when the epoch is
// exhausted (which also rewinds for the next epoch).
func (bg *BatchGenerator) NextBatch(batchSize int) ([][]float64, [][]float64, bool) {
	if bg.idx+batchSize > len(bg.inputs) {
		bg.idx = 0
		return nil, nil, false
	}

	inputs := bg.inputs[bg.idx : bg.idx+batchSize]
	targets := bg.targets[bg.idx : bg.idx+batchSize]
	bg.idx += batchSize

	return inputs, targets, true
}

// Shuffle reorders the data in place and rewinds the generator.
func (bg *BatchGenerator) Shuffle(rng *rand.Rand) {
	n := len(bg.inputs)
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		bg.inputs[i], bg.inputs[j] = bg.inputs[j], bg.inputs[i]
		bg.targets[i], bg.targets[j] = bg.targets[j], bg.targets[i]
	}
	bg.idx = 0
}

// GenerateSyntheticData builds a learnable regression set: inputs are
// uniform random and targets come from a fixed random linear map, so a
// small network can actually reduce the loss during demos and tests.
func GenerateSyntheticData(numSamples, inputSize, outputSize int, seed int64) ([][]float64, [][]float64) {
	rng := rand.New(rand.NewSource(seed))

	weights := make([][]float64, inputSize)
	for i := range weights {
		weights[i] = make([]float64, outputSize)
		for j := range weights[i] {
			weights[i][j] = rng.NormFloat64()
		}
	}

	inputs := make([][]float64, numSamples)
	targets := make([][]float64, numSamples)
	for s := 0; s < numSamples; s++ {
		input := make([]float64, inputSize)
		for i := range input {
			input[i] = rng.Float64()
		}
		target := make([]float64, outputSize)
		for j := 0; j < outputSize; j++ {
			for i := 0; i < inputSize; i++ {
				target[j] += weights[i][j] * input[i]
			}
		}
		inputs[s] = input
		targets[s] = target
	}

	return inputs, targets
}
