package sforce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/sforce/transport"
)

// SObjectClient is a handle on one Salesforce object type, e.g. Lead or
// Contact. Handles are cheap; build one per call site as needed.
type SObjectClient struct {
	name       string
	base       string
	dispatcher *transport.Dispatcher
}

// SObject returns a handle for the given object type name.
func (c *Client) SObject(name string) *SObjectClient {
	return &SObjectClient{
		name:       name,
		base:       "sobjects/" + name + "/",
		dispatcher: c.dispatcher,
	}
}

// Name returns the object type name the handle is bound to.
func (s *SObjectClient) Name() string { return s.name }

func (s *SObjectClient) get(ctx context.Context, endpoint string, query url.Values) (Record, error) {
	resp, err := s.dispatcher.Send(ctx, transport.Request{
		Method:   http.MethodGet,
		API:      transport.APIBase,
		Endpoint: endpoint,
		Query:    query,
		Name:     s.name,
	})
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := resp.JSON(&rec); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", s.name, err)
	}
	return rec, nil
}

// Metadata returns the object's basic metadata.
func (s *SObjectClient) Metadata(ctx context.Context) (Record, error) {
	return s.get(ctx, s.base, nil)
}

// Describe returns the object's full describe result.
func (s *SObjectClient) Describe(ctx context.Context) (Record, error) {
	return s.get(ctx, s.base+"describe", nil)
}

// DescribeLayout returns the layout for the given record id.
func (s *SObjectClient) DescribeLayout(ctx context.Context, recordID string) (Record, error) {
	return s.get(ctx, s.base+"describe/layouts/"+recordID, nil)
}

// Get fetches a record by id.
func (s *SObjectClient) Get(ctx context.Context, recordID string) (Record, error) {
	return s.get(ctx, s.base+recordID, nil)
}

// GetByCustomID fetches the record whose external id field holds the given
// value. An ambiguous match surfaces as sferr.ErrMoreThanOneRecord.
func (s *SObjectClient) GetByCustomID(ctx context.Context, field, value string) (Record, error) {
	return s.get(ctx, s.base+field+"/"+url.PathEscape(value), nil)
}

// Create inserts a new record and returns the server's creation result
// (id, success, errors).
func (s *SObjectClient) Create(ctx context.Context, record Record) (Record, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encoding %s record: %w", s.name, err)
	}
	resp, err := s.dispatcher.Send(ctx, transport.Request{
		Method:   http.MethodPost,
		API:      transport.APIBase,
		Endpoint: s.base,
		Body:     body,
		Name:     s.name,
	})
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := resp.JSON(&rec); err != nil {
		return nil, fmt.Errorf("decoding %s creation result: %w", s.name, err)
	}
	return rec, nil
}

// Update patches the record by id and returns the HTTP status code
// (204 on success).
func (s *SObjectClient) Update(ctx context.Context, recordID string, record Record) (int, error) {
	return s.writeNoContent(ctx, http.MethodPatch, s.base+recordID, record)
}

// Upsert creates or updates the record matched by the external id field and
// value, returning the HTTP status code.
func (s *SObjectClient) Upsert(ctx context.Context, field, value string, record Record) (int, error) {
	return s.writeNoContent(ctx, http.MethodPatch, s.base+field+"/"+url.PathEscape(value), record)
}

// Delete removes the record by id and returns the HTTP status code.
func (s *SObjectClient) Delete(ctx context.Context, recordID string) (int, error) {
	resp, err := s.dispatcher.Send(ctx, transport.Request{
		Method:   http.MethodDelete,
		API:      transport.APIBase,
		Endpoint: s.base + recordID,
		Name:     s.name,
	})
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}

// Deleted lists records deleted in the window [start, end].
func (s *SObjectClient) Deleted(ctx context.Context, start, end time.Time) (Record, error) {
	return s.get(ctx, s.base+"deleted/", windowQuery(start, end))
}

// Updated lists records modified or added in the window [start, end].
func (s *SObjectClient) Updated(ctx context.Context, start, end time.Time) (Record, error) {
	return s.get(ctx, s.base+"updated/", windowQuery(start, end))
}

func (s *SObjectClient) writeNoContent(ctx context.Context, method, endpoint string, record Record) (int, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return 0, fmt.Errorf("encoding %s record: %w", s.name, err)
	}
	resp, err := s.dispatcher.Send(ctx, transport.Request{
		Method:   method,
		API:      transport.APIBase,
		Endpoint: endpoint,
		Body:     body,
		Name:     s.name,
	})
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}

func windowQuery(start, end time.Time) url.Values {
	return url.Values{
		"start": {start.Format(time.RFC3339)},
		"end":   {end.Format(time.RFC3339)},
	}
}
