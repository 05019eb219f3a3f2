package sforce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/sforce/transport"
)

// QueryResult is one page of a SOQL query. When Done is false,
// NextRecordsURL points at the next page; QueryMore follows it.
type QueryResult struct {
	TotalSize      int      `json:"totalSize"`
	Done           bool     `json:"done"`
	NextRecordsURL string   `json:"nextRecordsUrl,omitempty"`
	Records        []Record `json:"records"`
}

// Query runs a SOQL query and returns the first page of results.
func (c *Client) Query(ctx context.Context, soql string) (QueryResult, error) {
	return c.queryEndpoint(ctx, "query/", soql)
}

// QueryMore fetches the page a previous result pointed at. The locator is
// the NextRecordsURL value, a path relative to the instance root.
func (c *Client) QueryMore(ctx context.Context, locator string) (QueryResult, error) {
	full, err := c.dispatcher.InstanceURL(ctx, locator)
	if err != nil {
		return QueryResult{}, err
	}
	resp, err := c.dispatcher.SendURL(ctx, full, transport.Request{Method: http.MethodGet})
	if err != nil {
		return QueryResult{}, err
	}
	return decodeQueryResult(resp)
}

// QueryAll runs a SOQL query and follows pagination until the result is
// complete, returning every record in one slice. Deleted and archived
// records are included when includeDeleted is true.
func (c *Client) QueryAll(ctx context.Context, soql string, includeDeleted bool) ([]Record, error) {
	endpoint := "query/"
	if includeDeleted {
		endpoint = "queryAll/"
	}

	page, err := c.queryEndpoint(ctx, endpoint, soql)
	if err != nil {
		return nil, err
	}

	records := page.Records
	for !page.Done {
		if page.NextRecordsURL == "" {
			return nil, fmt.Errorf("query result not done but no next records locator")
		}
		page, err = c.QueryMore(ctx, page.NextRecordsURL)
		if err != nil {
			return nil, err
		}
		records = append(records, page.Records...)
	}
	return records, nil
}

func (c *Client) queryEndpoint(ctx context.Context, endpoint, soql string) (QueryResult, error) {
	resp, err := c.dispatcher.Send(ctx, transport.Request{
		Method:   http.MethodGet,
		API:      transport.APIBase,
		Endpoint: endpoint,
		Query:    url.Values{"q": {soql}},
	})
	if err != nil {
		return QueryResult{}, err
	}
	return decodeQueryResult(resp)
}

func decodeQueryResult(resp *transport.Response) (QueryResult, error) {
	var out QueryResult
	if err := resp.JSON(&out); err != nil {
		return QueryResult{}, fmt.Errorf("decoding query result: %w", err)
	}
	return out, nil
}

// Search runs a raw SOSL search, e.g. `FIND {Waldo}`.
func (c *Client) Search(ctx context.Context, sosl string) (Record, error) {
	return c.getRecord(ctx, transport.APIBase, "search/", url.Values{"q": {sosl}})
}

// QuickSearch wraps the given text in a FIND clause and runs it.
func (c *Client) QuickSearch(ctx context.Context, text string) (Record, error) {
	return c.Search(ctx, fmt.Sprintf("FIND {%s}", text))
}

// Limits reports the org's API limits and current consumption.
func (c *Client) Limits(ctx context.Context) (Record, error) {
	return c.getRecord(ctx, transport.APIBase, "limits/", nil)
}

// Describe returns the global describe listing every available object.
func (c *Client) Describe(ctx context.Context) (Record, error) {
	return c.getRecord(ctx, transport.APIBase, "sobjects/", nil)
}

// APExecute calls a custom Apex REST endpoint. Method defaults to GET when
// empty; a non-nil body is sent as JSON.
func (c *Client) APExecute(ctx context.Context, method, action string, body any) (Record, error) {
	return c.execute(ctx, transport.APIApex, method, action, body)
}

// ToolingExecute calls a Tooling API endpoint, e.g. "executeAnonymous/".
func (c *Client) ToolingExecute(ctx context.Context, method, action string, body any) (Record, error) {
	return c.execute(ctx, transport.APITooling, method, action, body)
}

func (c *Client) execute(ctx context.Context, api transport.API, method, action string, body any) (Record, error) {
	if method == "" {
		method = http.MethodGet
	}
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}
	resp, err := c.dispatcher.Send(ctx, transport.Request{
		Method:   method,
		API:      api,
		Endpoint: strings.TrimPrefix(action, "/"),
		Body:     payload,
	})
	if err != nil {
		return nil, err
	}
	return decodeLooseRecord(resp)
}

func (c *Client) getRecord(ctx context.Context, api transport.API, endpoint string, query url.Values) (Record, error) {
	resp, err := c.dispatcher.Send(ctx, transport.Request{
		Method:   http.MethodGet,
		API:      api,
		Endpoint: endpoint,
		Query:    query,
	})
	if err != nil {
		return nil, err
	}
	return decodeLooseRecord(resp)
}

// decodeLooseRecord tolerates endpoints that answer with a bare JSON value
// instead of an object, wrapping non-objects under a "result" key.
func decodeLooseRecord(resp *transport.Response) (Record, error) {
	if len(resp.Body) == 0 {
		return Record{}, nil
	}
	var rec Record
	if err := resp.JSON(&rec); err == nil {
		return rec, nil
	}
	var v any
	if err := json.Unmarshal(resp.Body, &v); err != nil {
		return nil, fmt.Errorf("decoding response from %s: %w", resp.URL, err)
	}
	return Record{"result": v}, nil
}
