package bed

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"mbr/model"
	"mbr/solver"
)

// SweepResult is the outcome of one scenario in a sweep. Profiles is nil
// when the case did not converge.
type SweepResult struct {
	Index    int
	Scenario model.Scenario
	Result   solver.Result
	Profiles *model.Profiles
	Elapsed  time.Duration
	Err      error
}

// RunSweep solves a batch of scenarios on a fixed pool of workers and
// returns the outcomes in input order. Every worker builds its own model,
// so cases share nothing and the pool scales with cores.
func RunSweep(scenarios []model.Scenario, workers int) []SweepResult {
	if workers < 1 {
		workers = 1
	}
	if workers > len(scenarios) {
		workers = len(scenarios)
	}
	results := make([]SweepResult, len(scenarios))
	tasks := make(chan int, len(scenarios))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for idx := range tasks {
				start := time.Now()
				mb, res, err := RunScenario(scenarios[idx], nil)
				out := SweepResult{
					Index:    idx,
					Scenario: scenarios[idx],
					Result:   res,
					Elapsed:  time.Since(start),
					Err:      err,
				}
				if err == nil {
					p := mb.Profiles()
					out.Profiles = &p
				}
				results[idx] = out
				log.WithFields(log.Fields{
					"worker":  w,
					"case":    idx,
					"elapsed": out.Elapsed,
					"ok":      err == nil,
				}).Debug("sweep case finished")
			}
		}(w)
	}

	for i := range scenarios {
		tasks <- i
	}
	close(tasks)
	wg.Wait()
	return results
}
