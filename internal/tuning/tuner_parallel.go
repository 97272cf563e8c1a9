package tuning

import (
	"context"
	"fmt"
	"sync"

	"github.com/GripSim-25-26J-441/control-core/internal/sim"
	"github.com/GripSim-25-26J-441/control-core/pkg/models"
)

// evaluateParallel fans candidate evaluation out over a worker pool.
// Runs are pure so no state is shared; results are reassembled by
// candidate index, which keeps selection identical to the sequential
// path.
func (t *Tuner) evaluateParallel(ctx context.Context, candidates []models.PIDGains, simInput func(models.PIDGains) sim.Input) ([]candidateRun, error) {
	workers := t.workers
	if workers > len(candidates) {
		workers = len(candidates)
	}

	jobs := make(chan int)
	results := make([]candidateRun, len(candidates))
	errs := make([]error, len(candidates))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				run, err := sim.Simulate(simInput(candidates[i]))
				if err != nil {
					errs[i] = fmt.Errorf("candidate %d (kp=%g ki=%g kd=%g): %w",
						i, candidates[i].Kp, candidates[i].Ki, candidates[i].Kd, err)
					continue
				}
				results[i] = candidateRun{index: i, run: run, cost: t.cost.Evaluate(run)}
			}
		}()
	}

	cancelled := false
dispatch:
	for i := range candidates {
		select {
		case <-ctx.Done():
			cancelled = true
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if cancelled {
		return nil, fmt.Errorf("tuning cancelled: %w", ctx.Err())
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
