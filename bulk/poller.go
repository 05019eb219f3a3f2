package bulk

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"time"

	"github.com/dmitrijs2005/sforce/logging"
	"github.com/sethvargo/go-retry"
)

// errStillProcessing marks a poll attempt that found the batch not yet
// terminal, so the retry loop sleeps and tries again.
var errStillProcessing = errors.New("batch still processing")

// poller waits for submitted batches to reach a terminal state and fetches
// their results. Batches are handled by a fixed-size worker pool; polls of
// one batch are strictly sequential.
type poller struct {
	runner   *Runner
	interval time.Duration
	workers  int
	maxPolls int
	log      logging.Logger
}

// collect polls every batch to a terminal state and returns the per-batch
// results indexed by submission order. The first transport-level failure
// cancels the remaining polls and is returned.
func (p *poller) collect(ctx context.Context, batches []Batch, op Operation) ([][]Record, error) {
	if len(batches) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := p.workers
	if workers > len(batches) {
		workers = len(batches)
	}

	jobs := make(chan int)
	results := make([][]Record, len(batches))
	errs := make([]error, len(batches))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = p.await(ctx, batches[i], op)
				if errs[i] != nil {
					cancel()
				}
			}
		}()
	}

feed:
	for i := range batches {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	// Prefer a real failure over the cancellation noise it caused elsewhere.
	for _, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			return nil, err
		}
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// await polls one batch until the server reports a terminal state, then
// drains its result. Failed and Not Processed batches are drained too: their
// partial results are data, not an error.
func (p *poller) await(ctx context.Context, b Batch, op Operation) ([]Record, error) {
	var state State

	backoff := retry.NewConstant(p.interval)
	if p.maxPolls > 0 {
		backoff = retry.WithMaxRetries(uint64(p.maxPolls), backoff)
	}

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		cur, err := p.runner.batchState(ctx, b)
		if err != nil {
			// Transport failures stop the loop; only "not done yet" retries.
			return err
		}
		state = cur
		p.log.Debug(ctx, "batch poll", "job", b.JobID, "batch", b.ID, "state", string(cur))
		if !cur.Terminal() {
			return retry.RetryableError(errStillProcessing)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errStillProcessing) {
			return nil, fmt.Errorf("batch %s of job %s still %s after %d polls: %w",
				b.ID, b.JobID, state, p.maxPolls, errStillProcessing)
		}
		return nil, err
	}

	if state != StateCompleted {
		p.log.Warn(ctx, "batch ended without completing", "job", b.JobID, "batch", b.ID, "state", string(state))
	}
	return p.runner.batchResults(ctx, b, op)
}
