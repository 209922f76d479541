// Package runner provides the bounded-concurrency task runner used by
// parallel and branch batches.
package runner

import (
	"context"
	"sync"
)

// Task is one unit of batch work.
type Task func(ctx context.Context) (any, error)

// Run executes all tasks concurrently with at most limit in flight
// (limit <= 0 means unlimited) and returns their results in task order,
// regardless of completion order.
//
// The first task error is returned as soon as it occurs; Run does not
// wait for the remaining tasks. They continue running in the background
// and their results are discarded; there is no cancellation at this
// layer.
func Run(ctx context.Context, limit int, tasks []Task) ([]any, error) {
	results := make([]any, len(tasks))
	if len(tasks) == 0 {
		return results, nil
	}

	var sem chan struct{}
	if limit > 0 {
		sem = make(chan struct{}, limit)
	}

	var wg sync.WaitGroup
	errc := make(chan error, 1)

	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			out, err := task(ctx)
			if err != nil {
				select {
				case errc <- err:
				default:
				}
				return
			}
			// Index slots are disjoint, no lock needed.
			results[i] = out
		}(i, task)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case err := <-errc:
		return nil, err
	case <-done:
		// A failure may have raced with the last completion.
		select {
		case err := <-errc:
			return nil, err
		default:
		}
		return results, nil
	}
}
