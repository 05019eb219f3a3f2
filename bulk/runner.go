package bulk

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sforce/logging"
	"github.com/dmitrijs2005/sforce/sferr"
	"github.com/dmitrijs2005/sforce/transport"
)

const (
	// MaxBatchSize is the server-side per-batch record limit.
	MaxBatchSize = 10000
	// DefaultBatchSize is used when no batch size is requested.
	DefaultBatchSize = 10000
	// DefaultPollInterval is the delay between status polls of one batch.
	DefaultPollInterval = 5 * time.Second
	// DefaultWorkers bounds the batch-polling worker pool.
	DefaultWorkers = 4
)

// Options tune one Runner. The zero value gets the defaults above.
type Options struct {
	// Serial asks the server to process batches in order instead of in
	// parallel.
	Serial bool
	// BatchSize is the requested records-per-batch, capped at MaxBatchSize.
	BatchSize int
	// PollInterval is the fixed delay between status polls of one batch.
	PollInterval time.Duration
	// Workers is the size of the polling worker pool.
	Workers int
	// MaxPolls caps status polls per batch. Zero matches the platform
	// client's historical behavior of polling until a terminal state, which
	// makes context cancellation the only way out of a stuck batch.
	MaxPolls int
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.BatchSize > MaxBatchSize {
		o.BatchSize = MaxBatchSize
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	return o
}

// Sender issues one authenticated API call. *transport.Dispatcher satisfies
// it; tests substitute fakes.
type Sender interface {
	Send(ctx context.Context, req transport.Request) (*transport.Response, error)
}

// Runner executes bulk operations against one object type.
type Runner struct {
	object string
	send   Sender
	log    logging.Logger
	opts   Options
}

// NewRunner binds a Runner to an object type.
func NewRunner(object string, send Sender, log logging.Logger, opts Options) *Runner {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Runner{
		object: object,
		send:   send,
		log:    log.With("object", object),
		opts:   opts.withDefaults(),
	}
}

// Insert bulk-inserts the records and returns per-record results in input
// order.
func (r *Runner) Insert(ctx context.Context, records []Record) ([]Record, error) {
	return r.mutate(ctx, OpInsert, records, "")
}

// Update bulk-updates the records; each record must carry its Id.
func (r *Runner) Update(ctx context.Context, records []Record) ([]Record, error) {
	return r.mutate(ctx, OpUpdate, records, "")
}

// Upsert matches records on externalIDField, updating hits and inserting the
// rest. The field is required: omitting it is a configuration error.
func (r *Runner) Upsert(ctx context.Context, records []Record, externalIDField string) ([]Record, error) {
	if externalIDField == "" {
		return nil, sferr.Configuration("upsert on %s requires an external id field", r.object)
	}
	return r.mutate(ctx, OpUpsert, records, externalIDField)
}

// Delete soft-deletes the records identified by their Id fields.
func (r *Runner) Delete(ctx context.Context, records []Record) ([]Record, error) {
	return r.mutate(ctx, OpDelete, records, "")
}

// HardDelete permanently deletes the records, bypassing the recycle bin.
func (r *Runner) HardDelete(ctx context.Context, records []Record) ([]Record, error) {
	return r.mutate(ctx, OpHardDelete, records, "")
}

// Query runs a bulk SOQL query and returns all result records.
func (r *Runner) Query(ctx context.Context, soql string) ([]Record, error) {
	return r.runQuery(ctx, OpQuery, soql)
}

// QueryAll is Query including deleted and archived records.
func (r *Runner) QueryAll(ctx context.Context, soql string) ([]Record, error) {
	return r.runQuery(ctx, OpQueryAll, soql)
}

// mutate runs the full mutation lifecycle: create job, submit one batch per
// chunk in input order, close the job, poll every batch to a terminal state
// and concatenate the per-batch results in submission order.
func (r *Runner) mutate(ctx context.Context, op Operation, records []Record, externalIDField string) ([]Record, error) {
	job, err := r.createJob(ctx, op, externalIDField)
	if err != nil {
		return nil, err
	}

	var batches []Batch
	for _, chunk := range chunkRecords(records, r.opts.BatchSize) {
		body, err := json.Marshal(chunk)
		if err != nil {
			return nil, fmt.Errorf("encoding batch for job %s: %w", job.ID, err)
		}
		b, err := r.addBatch(ctx, job.ID, body)
		if err != nil {
			return nil, err
		}
		r.log.Debug(ctx, "batch submitted", "job", job.ID, "batch", b.ID, "records", len(chunk))
		batches = append(batches, b)
	}

	// The job is closed as soon as the last batch is in; batches may still
	// be processing.
	if err := r.closeJob(ctx, job.ID); err != nil {
		return nil, err
	}

	if len(batches) == 0 {
		return []Record{}, nil
	}

	perBatch, err := r.poller().collect(ctx, batches, op)
	if err != nil {
		return nil, err
	}

	results := make([]Record, 0, len(records))
	for _, part := range perBatch {
		results = append(results, part...)
	}
	return results, nil
}

// runQuery submits the SOQL string as the single batch of a query job.
func (r *Runner) runQuery(ctx context.Context, op Operation, soql string) ([]Record, error) {
	job, err := r.createJob(ctx, op, "")
	if err != nil {
		return nil, err
	}

	// Query payloads go over the wire as the raw string, not JSON.
	b, err := r.addBatch(ctx, job.ID, []byte(soql))
	if err != nil {
		return nil, err
	}

	if err := r.closeJob(ctx, job.ID); err != nil {
		return nil, err
	}

	perBatch, err := r.poller().collect(ctx, []Batch{b}, op)
	if err != nil {
		return nil, err
	}
	if perBatch[0] == nil {
		return []Record{}, nil
	}
	return perBatch[0], nil
}

func (r *Runner) poller() *poller {
	return &poller{
		runner:   r,
		interval: r.opts.PollInterval,
		workers:  r.opts.Workers,
		maxPolls: r.opts.MaxPolls,
		log:      r.log,
	}
}

// chunkRecords partitions records into consecutive chunks of at most size,
// preserving order. An empty input yields no chunks.
func chunkRecords(records []Record, size int) [][]Record {
	var chunks [][]Record
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[start:end])
	}
	return chunks
}
