package async

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// Result is the outcome of one Task. Results keep the order of the tasks
// they were produced from.
type Result struct {
	Name string
	Err  error
}

// RunBounded executes tasks with at most limit running at once and waits for
// all of them. A limit below 1 runs the tasks one after another in order.
//
// Example:
//
//	results := RunBounded(ctx, 4, tasks)
//	if err := Errors(results); err != nil {
//	    return err
//	}
func RunBounded(ctx context.Context, limit int, tasks []Task) []Result {
	results := make([]Result, len(tasks))
	if len(tasks) == 0 {
		return results
	}
	if limit < 1 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)

	for i, task := range tasks {
		results[i].Name = task.Name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Err = task.Func(ctx)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Errors folds the failed results into one error, or returns nil when every
// task succeeded.
func Errors(results []Result) error {
	var failed []string
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r.Name)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d tasks failed: %s", len(failed), len(results), strings.Join(failed, ", "))
}
