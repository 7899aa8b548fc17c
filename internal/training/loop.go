package training

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gorgonia.org/tensor"

	"github.com/thyrook/annealer/internal/model"
	"github.com/thyrook/annealer/internal/schedule"
)

// Optimizer is the learning rule the loop drives: schedulable (the
// scheduler sets its rate and resets it at restarts) and able to apply
// gradient steps to the model's parameters.
type Optimizer interface {
	schedule.LearningRule
	Step(grads []*tensor.Dense) error
}

// Config holds training loop settings.
type Config struct {
	Epochs  int
	Seed    int64
	Verbose bool
}

// DefaultConfig returns default training loop settings.
func DefaultConfig() *Config {
	return &Config{
		Epochs:  30,
		Seed:    42,
		Verbose: true,
	}
}

// Metrics tracks one epoch of training.
type Metrics struct {
	Epoch        int
	LearningRate float64
	Loss         float64
	Restarts     int
	Duration     time.Duration
}

// MetricsCallback is called after each epoch.
type MetricsCallback func(m *Metrics)

// countingRule forwards Reset to the wrapped optimizer and counts the
// restarts the scheduler fires.
type countingRule struct {
	Optimizer
	resets int
}

func (c *countingRule) Reset() {
	c.resets++
	c.Optimizer.Reset()
}

// Loop runs epochs of training, asking the scheduler for the learning
// rate once per epoch and applying it to the rule before the epoch's
// batches run.
type Loop struct {
	model     *model.MLP
	rule      *countingRule
	scheduler schedule.Scheduler
	config    *Config
	logger    *zap.Logger
	history   []Metrics
}

// NewLoop wires a model, a learning rule and a scheduler into a training
// loop. A nil config uses defaults; a nil logger disables logging.
func NewLoop(m *model.MLP, rule Optimizer, scheduler schedule.Scheduler, config *Config, logger *zap.Logger) (*Loop, error) {
	if m == nil {
		return nil, fmt.Errorf("model is nil")
	}
	if rule == nil {
		return nil, fmt.Errorf("learning rule is nil")
	}
	if scheduler == nil {
		return nil, fmt.Errorf("scheduler is nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Loop{
		model:     m,
		rule:      &countingRule{Optimizer: rule},
		scheduler: scheduler,
		config:    config,
		logger:    logger,
	}, nil
}

// Run trains over the dataset for the configured number of epochs.
// One scheduler update per epoch, then shuffled full batches through the
// model with gradient steps applied by the rule.
func (l *Loop) Run(inputs, targets [][]float64, callback MetricsCallback) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no training data")
	}
	if len(inputs) != len(targets) {
		return fmt.Errorf("inputs and targets length mismatch: %d vs %d", len(inputs), len(targets))
	}
	batchSize := l.model.BatchSize()
	if len(inputs) < batchSize {
		return fmt.Errorf("dataset smaller than batch size %d", batchSize)
	}

	rng := rand.New(rand.NewSource(l.config.Seed))
	batchGen := NewBatchGenerator(inputs, targets)

	for epoch := 0; epoch < l.config.Epochs; epoch++ {
		start := time.Now()

		rate, err := l.scheduler.Update(l.rule, epoch)
		if err != nil {
			return fmt.Errorf("scheduler update failed at epoch %d: %w", epoch, err)
		}
		l.rule.SetLearningRate(rate)

		batchGen.Shuffle(rng)
		epochLoss := 0.0
		batchCount := 0

		for {
			batchInputs, batchTargets, ok := batchGen.NextBatch(batchSize)
			if !ok {
				break
			}

			loss, err := l.model.Step(flatten(batchInputs), flatten(batchTargets))
			if err != nil {
				return fmt.Errorf("training step failed at epoch %d: %w", epoch, err)
			}
			grads, err := l.model.Gradients()
			if err != nil {
				return fmt.Errorf("gradient read failed at epoch %d: %w", epoch, err)
			}
			if err := l.rule.Step(grads); err != nil {
				return fmt.Errorf("optimizer step failed at epoch %d: %w", epoch, err)
			}

			epochLoss += loss
			batchCount++
		}

		metrics := Metrics{
			Epoch:        epoch,
			LearningRate: rate,
			Loss:         epochLoss / float64(batchCount),
			Restarts:     l.rule.resets,
			Duration:     time.Since(start),
		}
		l.history = append(l.history, metrics)

		if l.config.Verbose {
			l.logger.Info("epoch complete",
				zap.Int("epoch", metrics.Epoch),
				zap.Float64("learning_rate", metrics.LearningRate),
				zap.Float64("loss", metrics.Loss),
				zap.Int("restarts", metrics.Restarts),
				zap.Duration("duration", metrics.Duration),
			)
		}

		if callback != nil {
			m := metrics
			callback(&m)
		}
	}

	return nil
}

// History returns the per-epoch metrics recorded so far.
func (l *Loop) History() []Metrics {
	return l.history
}

// Restarts returns how many warm restarts have fired.
func (l *Loop) Restarts() int {
	return l.rule.resets
}

func flatten(rows [][]float64) []float64 {
	if len(rows) == 0 {
		return nil
	}
	flat := make([]float64, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		flat = append(flat, row...)
	}
	return flat
}
