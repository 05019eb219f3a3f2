package bulk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/sforce/transport"
)

// Operation is a Bulk API job operation.
type Operation string

const (
	OpInsert     Operation = "insert"
	OpUpdate     Operation = "update"
	OpUpsert     Operation = "upsert"
	OpDelete     Operation = "delete"
	OpHardDelete Operation = "hardDelete"
	OpQuery      Operation = "query"
	OpQueryAll   Operation = "queryAll"
)

// mutation reports whether the operation carries record payloads rather than
// a query string.
func (o Operation) mutation() bool {
	return o != OpQuery && o != OpQueryAll
}

// State is a server-reported batch state.
type State string

const (
	StateQueued       State = "Queued"
	StateInProgress   State = "InProgress"
	StateCompleted    State = "Completed"
	StateFailed       State = "Failed"
	StateNotProcessed State = "Not Processed"
)

// Terminal reports whether the server will never advance the batch further.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateNotProcessed
}

// Record is a single record map, both for submitted payloads and for results.
type Record = map[string]any

// Job mirrors the server's job resource.
type Job struct {
	ID        string    `json:"id"`
	Object    string    `json:"object"`
	Operation Operation `json:"operation"`
	State     string    `json:"state"`
}

// Batch mirrors the server's batch resource.
type Batch struct {
	ID    string `json:"id"`
	JobID string `json:"jobId"`
	State State  `json:"state"`
}

// createJobRequest is the job creation wire payload. The field shapes are a
// server contract: concurrencyMode is 0 (parallel) or 1 (serial), contentType
// is always JSON, and externalIdFieldName appears only for upserts.
type createJobRequest struct {
	Operation           Operation `json:"operation"`
	Object              string    `json:"object"`
	ConcurrencyMode     int       `json:"concurrencyMode"`
	ContentType         string    `json:"contentType"`
	ExternalIDFieldName string    `json:"externalIdFieldName,omitempty"`
}

func (r *Runner) createJob(ctx context.Context, op Operation, externalIDField string) (Job, error) {
	payload := createJobRequest{
		Operation:   op,
		Object:      r.object,
		ContentType: "JSON",
	}
	if r.opts.Serial {
		payload.ConcurrencyMode = 1
	}
	if op == OpUpsert {
		payload.ExternalIDFieldName = externalIDField
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("encoding job payload: %w", err)
	}

	resp, err := r.send.Send(ctx, transport.Request{
		Method:   http.MethodPost,
		API:      transport.APIBulk,
		Endpoint: "job",
		Body:     body,
		Name:     r.object,
	})
	if err != nil {
		return Job{}, err
	}

	var job Job
	if err := resp.JSON(&job); err != nil {
		return Job{}, fmt.Errorf("decoding job response: %w", err)
	}

	r.log.Info(ctx, "bulk job created", "job", job.ID, "object", r.object, "operation", string(op))
	return job, nil
}

func (r *Runner) closeJob(ctx context.Context, jobID string) error {
	body, _ := json.Marshal(map[string]string{"state": "Closed"})

	_, err := r.send.Send(ctx, transport.Request{
		Method:   http.MethodPost,
		API:      transport.APIBulk,
		Endpoint: "job/" + jobID,
		Body:     body,
		Name:     r.object,
	})
	if err != nil {
		return err
	}
	r.log.Info(ctx, "bulk job closed", "job", jobID)
	return nil
}

// addBatch submits one batch body to an open job. The body is a JSON array of
// records for mutation operations and a raw SOQL string for queries.
func (r *Runner) addBatch(ctx context.Context, jobID string, body []byte) (Batch, error) {
	resp, err := r.send.Send(ctx, transport.Request{
		Method:   http.MethodPost,
		API:      transport.APIBulk,
		Endpoint: "job/" + jobID + "/batch",
		Body:     body,
		Name:     r.object,
	})
	if err != nil {
		return Batch{}, err
	}

	var b Batch
	if err := resp.JSON(&b); err != nil {
		return Batch{}, fmt.Errorf("decoding batch response: %w", err)
	}
	if b.JobID == "" {
		b.JobID = jobID
	}
	return b, nil
}

// batchState reads the current server-side state of a batch.
func (r *Runner) batchState(ctx context.Context, b Batch) (State, error) {
	resp, err := r.send.Send(ctx, transport.Request{
		Method:   http.MethodGet,
		API:      transport.APIBulk,
		Endpoint: "job/" + b.JobID + "/batch/" + b.ID,
		Name:     r.object,
	})
	if err != nil {
		return "", err
	}

	var cur Batch
	if err := resp.JSON(&cur); err != nil {
		return "", fmt.Errorf("decoding batch status: %w", err)
	}
	return cur.State, nil
}

// batchResults retrieves the result of a terminal batch. Mutation batches
// yield their per-record results directly; query batches yield result-set
// ids, each fetched with a separate call and appended in server order.
func (r *Runner) batchResults(ctx context.Context, b Batch, op Operation) ([]Record, error) {
	endpoint := "job/" + b.JobID + "/batch/" + b.ID + "/result"

	resp, err := r.send.Send(ctx, transport.Request{
		Method:   http.MethodGet,
		API:      transport.APIBulk,
		Endpoint: endpoint,
		Name:     r.object,
	})
	if err != nil {
		return nil, err
	}

	if op.mutation() {
		var records []Record
		if err := resp.JSON(&records); err != nil {
			return nil, fmt.Errorf("decoding batch result: %w", err)
		}
		return records, nil
	}

	var resultSets []string
	if err := resp.JSON(&resultSets); err != nil {
		return nil, fmt.Errorf("decoding result-set ids: %w", err)
	}

	var records []Record
	for _, rs := range resultSets {
		setResp, err := r.send.Send(ctx, transport.Request{
			Method:   http.MethodGet,
			API:      transport.APIBulk,
			Endpoint: endpoint + "/" + rs,
			Name:     r.object,
		})
		if err != nil {
			return nil, err
		}
		var part []Record
		if err := setResp.JSON(&part); err != nil {
			return nil, fmt.Errorf("decoding result set %s: %w", rs, err)
		}
		records = append(records, part...)
	}
	return records, nil
}
