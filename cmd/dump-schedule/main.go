package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/thyrook/annealer/internal/schedule"
)

// Emits the learning rate per epoch as CSV for plotting or inspection.
func main() {
	epochs := flag.Int("epochs", 100, "Number of epochs to dump")
	minRate := flag.Float64("min-lr", 0.0001, "Minimum learning rate")
	maxRate := flag.Float64("max-lr", 0.05, "Maximum learning rate")
	basePeriod := flag.Int("period", 10, "Epochs in the first cosine cycle")
	discount := flag.Float64("discount", 1.0, "Peak discount factor per restart")
	expansion := flag.Float64("expansion", 1.0, "Period expansion factor per restart")

	flag.Parse()

	scheduler, err := schedule.NewWarmRestartScheduler(*minRate, *maxRate, *basePeriod, *discount, *expansion)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build scheduler: %v\n", err)
		os.Exit(1)
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"epoch", "learning_rate"}); err != nil {
		fmt.Fprintf(os.Stderr, "Write failed: %v\n", err)
		os.Exit(1)
	}

	for epoch := 0; epoch < *epochs; epoch++ {
		// No learning rule attached; restarts still advance the schedule.
		rate, err := scheduler.Update(nil, epoch)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Update failed at epoch %d: %v\n", epoch, err)
			os.Exit(1)
		}

		record := []string{
			strconv.Itoa(epoch),
			strconv.FormatFloat(rate, 'g', -1, 64),
		}
		if err := w.Write(record); err != nil {
			fmt.Fprintf(os.Stderr, "Write failed: %v\n", err)
			os.Exit(1)
		}
	}
}
