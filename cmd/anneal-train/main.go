package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/thyrook/annealer/internal/config"
	"github.com/thyrook/annealer/internal/logging"
	"github.com/thyrook/annealer/internal/model"
	"github.com/thyrook/annealer/internal/optim"
	"github.com/thyrook/annealer/internal/schedule"
	"github.com/thyrook/annealer/internal/training"
)

func main() {
	// Command-line flags
	configPath := flag.String("config", "config.json", "Path to configuration file")
	policy := flag.String("policy", "", "Scheduler policy: constant or warm_restart (overrides config)")
	epochs := flag.Int("epochs", 0, "Number of training epochs (overrides config)")
	batchSize := flag.Int("batch-size", 0, "Batch size for training (overrides config)")
	minRate := flag.Float64("min-lr", -1, "Minimum learning rate (overrides config)")
	maxRate := flag.Float64("max-lr", -1, "Maximum learning rate (overrides config)")
	basePeriod := flag.Int("period", 0, "Epochs in the first cosine cycle (overrides config)")
	discount := flag.Float64("discount", -1, "Peak discount factor per restart (overrides config)")
	expansion := flag.Float64("expansion", -1, "Period expansion factor per restart (overrides config)")
	rate := flag.Float64("lr", -1, "Fixed rate for the constant policy (overrides config)")

	flag.Parse()

	fmt.Println("Warm Restart Annealing Training Demo")
	fmt.Println("====================================")
	fmt.Println()

	cfg := config.LoadOrDefault(*configPath)
	applyOverrides(cfg, *policy, *epochs, *batchSize, *minRate, *maxRate, *basePeriod, *discount, *expansion, *rate)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Interface.LogPath, cfg.Interface.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	fmt.Println("Configuration:")
	fmt.Printf("  Policy:          %s\n", cfg.Scheduler.Policy)
	if cfg.Scheduler.Policy == config.PolicyConstant {
		fmt.Printf("  Rate:            %.6f\n", cfg.Scheduler.Rate)
	} else {
		fmt.Printf("  LR range:        [%.6f, %.6f]\n", cfg.Scheduler.MinRate, cfg.Scheduler.MaxRate)
		fmt.Printf("  Base period:     %d epochs\n", cfg.Scheduler.BasePeriod)
		fmt.Printf("  Discount:        %.2f per restart\n", cfg.Scheduler.DiscountFactor)
		fmt.Printf("  Expansion:       %.2f per restart\n", cfg.Scheduler.ExpansionFactor)
	}
	fmt.Printf("  Epochs:          %d\n", cfg.Training.Epochs)
	fmt.Printf("  Batch size:      %d\n", cfg.Training.BatchSize)
	fmt.Printf("  Samples:         %d\n", cfg.Training.Samples)
	fmt.Println()

	scheduler, err := buildScheduler(cfg.Scheduler)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build scheduler: %v\n", err)
		os.Exit(1)
	}

	mlp, err := model.NewMLP(cfg.Training.InputSize, cfg.Training.HiddenSize, cfg.Training.OutputSize, cfg.Training.BatchSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create model: %v\n", err)
		os.Exit(1)
	}
	defer mlp.Close()

	rule, err := optim.NewMomentumSGD(mlp.LearnableTensors(), 0, cfg.Training.Momentum)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create learning rule: %v\n", err)
		os.Exit(1)
	}

	loop, err := training.NewLoop(mlp, rule, scheduler, &training.Config{
		Epochs:  cfg.Training.Epochs,
		Seed:    cfg.Training.Seed,
		Verbose: true,
	}, logger.GetZapLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create training loop: %v\n", err)
		os.Exit(1)
	}

	inputs, targets := training.GenerateSyntheticData(cfg.Training.Samples, cfg.Training.InputSize, cfg.Training.OutputSize, cfg.Training.Seed)

	logger.Info("training starting",
		zap.String("policy", cfg.Scheduler.Policy),
		zap.Int("epochs", cfg.Training.Epochs),
		zap.Int("samples", cfg.Training.Samples),
	)

	if err := loop.Run(inputs, targets, nil); err != nil {
		logger.Error("training failed", zap.Error(err))
		os.Exit(1)
	}

	history := loop.History()
	final := history[len(history)-1]
	logger.Info("training complete",
		zap.Int("epochs", len(history)),
		zap.Int("restarts", loop.Restarts()),
		zap.Float64("initial_loss", history[0].Loss),
		zap.Float64("final_loss", final.Loss),
	)

	fmt.Println()
	fmt.Printf("Done: %d epochs, %d restarts, loss %.6f -> %.6f\n",
		len(history), loop.Restarts(), history[0].Loss, final.Loss)
}

// applyOverrides folds set command-line flags into the loaded config.
func applyOverrides(cfg *config.Config, policy string, epochs, batchSize int, minRate, maxRate float64, basePeriod int, discount, expansion, rate float64) {
	if policy != "" {
		cfg.Scheduler.Policy = policy
	}
	if epochs > 0 {
		cfg.Training.Epochs = epochs
	}
	if batchSize > 0 {
		cfg.Training.BatchSize = batchSize
	}
	if minRate >= 0 {
		cfg.Scheduler.MinRate = minRate
	}
	if maxRate >= 0 {
		cfg.Scheduler.MaxRate = maxRate
	}
	if basePeriod > 0 {
		cfg.Scheduler.BasePeriod = basePeriod
	}
	if discount >= 0 {
		cfg.Scheduler.DiscountFactor = discount
	}
	if expansion >= 0 {
		cfg.Scheduler.ExpansionFactor = expansion
	}
	if rate >= 0 {
		cfg.Scheduler.Rate = rate
	}
}

func buildScheduler(cfg config.SchedulerConfig) (schedule.Scheduler, error) {
	switch cfg.Policy {
	case config.PolicyConstant:
		return schedule.NewConstantScheduler(cfg.Rate), nil
	case config.PolicyWarmRestart:
		return schedule.NewWarmRestartScheduler(cfg.MinRate, cfg.MaxRate, cfg.BasePeriod, cfg.DiscountFactor, cfg.ExpansionFactor)
	default:
		return nil, fmt.Errorf("unknown scheduler policy %q", cfg.Policy)
	}
}
