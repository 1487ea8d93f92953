package eval

import (
	"context"
	"fmt"
	"sync"

	"github.com/botirk38/softcosine/logger"
	"github.com/botirk38/softcosine/types"
)

// Task is one retrieval problem: a query, its candidate documents and the
// positions of the relevant ones.
type Task struct {
	Name     string
	Query    types.SparseVector
	Corpus   []types.SparseVector
	Relevant []int
}

// Result is the outcome of one strategy on one task.
type Result struct {
	Task             int
	Strategy         string
	Ranking          []int
	AveragePrecision float64
	Err              error
}

type job struct {
	task     int
	strategy int
}

// Run evaluates every strategy on every task using up to workers goroutines.
// Results are ordered by task, then by strategy. Per-task failures are
// reported in Result.Err; Run itself only fails on bad arguments or
// cancellation.
func Run(ctx context.Context, strategies []Strategy, tasks []Task, workers int) ([]Result, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("%w: at least one strategy is required", types.ErrConfiguration)
	}
	if workers <= 0 {
		return nil, fmt.Errorf("%w: workers must be positive", types.ErrConfiguration)
	}

	results := make([]Result, len(tasks)*len(strategies))
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.task*len(strategies)+j.strategy] = evaluate(ctx, j.task, tasks[j.task], strategies[j.strategy])
			}
		}()
	}

feed:
	for t := range tasks {
		for s := range strategies {
			select {
			case jobs <- job{task: t, strategy: s}:
			case <-ctx.Done():
				break feed
			}
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Debug("eval: %d tasks x %d strategies done", len(tasks), len(strategies))
	return results, nil
}

func evaluate(ctx context.Context, i int, task Task, s Strategy) Result {
	r := Result{Task: i, Strategy: s.Name()}
	scores, err := s.Scores(ctx, task.Query, task.Corpus)
	if err != nil {
		r.Err = fmt.Errorf("task %d (%s): %w", i, task.Name, err)
		return r
	}
	r.Ranking = Rank(scores)
	r.AveragePrecision = AveragePrecision(r.Ranking, task.Relevant)
	return r
}
