// Package bulk drives the asynchronous Bulk API job protocol: create a job,
// submit batches, close the job, poll every batch to a terminal state and
// assemble the results in submission order.
//
// # Overview
//
// A Runner is bound to one object type and a Sender (normally the transport
// dispatcher). Mutation operations partition the input records into bounded
// batches; query operations submit the SOQL string as a single batch and then
// fetch each server-side result set separately, because large query results
// are split into multiple result-set ids.
//
// Batch states only ever come from server polling responses; the client never
// assigns one itself. A batch that ends Failed or Not Processed is still
// drained for whatever partial result the server provides — per-record
// rejections are data for the caller to inspect, not transport errors.
//
// Concurrency
//
// Outstanding batches are polled by a bounded worker pool so that N batches
// do not serialize behind one another's polling sleeps. Within one batch,
// poll attempts are strictly sequential with a fixed delay. No lock is held
// across a poll sleep. Polling honors context cancellation and an optional
// MaxPolls cap; with MaxPolls zero it continues until a terminal state.
package bulk
