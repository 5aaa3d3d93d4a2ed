// Package remote executes delegated requests against a GraphQL endpoint over
// HTTP. The wire format is the standard JSON envelope: {query, variables,
// operationName} out, {data, errors} back.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	eventbus "github.com/hanpama/stitch/internal/eventbus"
	events "github.com/hanpama/stitch/internal/events"
	executor "github.com/hanpama/stitch/internal/executor"
	language "github.com/hanpama/stitch/internal/language"
	transform "github.com/hanpama/stitch/internal/transform"
)

// Executor sends delegated requests to one subschema endpoint. Safe for
// concurrent use.
type Executor struct {
	endpoint string
	client   *http.Client
	header   http.Header
}

type Option func(*Executor)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(e *Executor) { e.client = c }
}

// WithHeader adds a static header to every request, for endpoint credentials.
func WithHeader(key, value string) Option {
	return func(e *Executor) { e.header.Add(key, value) }
}

func New(endpoint string, opts ...Option) *Executor {
	e := &Executor{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		header:   http.Header{},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

type headersKey struct{}

// WithHeaders returns a context carrying per-request headers forwarded to
// every subschema the request delegates to, for end-user credentials.
func WithHeaders(ctx context.Context, h http.Header) context.Context {
	return context.WithValue(ctx, headersKey{}, h)
}

func headersFrom(ctx context.Context) http.Header {
	h, _ := ctx.Value(headersKey{}).(http.Header)
	return h
}

// HeadersFromContext returns the forwarded headers carried by ctx, if any.
func HeadersFromContext(ctx context.Context) http.Header { return headersFrom(ctx) }

type wireRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type wireError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path"`
	Extensions map[string]any `json:"extensions"`
}

type wireResponse struct {
	Data   any         `json:"data"`
	Errors []wireError `json:"errors"`
}

func (e *Executor) Execute(ctx context.Context, req *transform.Request) *executor.ExecutionResult {
	query := language.FormatQuery(req.Document)

	eventbus.Publish(ctx, events.SubschemaRequestStart{Endpoint: e.endpoint, Query: query})
	start := time.Now()

	res, status, err := e.roundTrip(ctx, query, req.Variables)

	eventbus.Publish(ctx, events.SubschemaRequestFinish{
		Endpoint:   e.endpoint,
		Query:      query,
		StatusCode: status,
		Err:        err,
		Duration:   time.Since(start),
	})

	if err != nil {
		return &executor.ExecutionResult{Errors: []executor.GraphQLError{{Message: err.Error()}}}
	}
	return res
}

func (e *Executor) roundTrip(ctx context.Context, query string, variables map[string]any) (*executor.ExecutionResult, int, error) {
	body, err := json.Marshal(wireRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, 0, fmt.Errorf("encoding request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for key, values := range e.header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	for key, values := range headersFrom(ctx) {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decoding response (%s): %w", resp.Status, err)
	}
	if resp.StatusCode != http.StatusOK && wire.Data == nil && len(wire.Errors) == 0 {
		return nil, resp.StatusCode, fmt.Errorf("subschema returned %s", resp.Status)
	}

	out := &executor.ExecutionResult{Data: wire.Data}
	for _, we := range wire.Errors {
		out.Errors = append(out.Errors, executor.GraphQLError{
			Message:    we.Message,
			Path:       normalizePath(we.Path),
			Extensions: we.Extensions,
		})
	}
	return out, resp.StatusCode, nil
}

// normalizePath converts JSON-decoded path elements to the executor's
// representation: float64 indexes become ints.
func normalizePath(in []any) executor.Path {
	if len(in) == 0 {
		return nil
	}
	out := make(executor.Path, len(in))
	for i, elem := range in {
		if f, ok := elem.(float64); ok {
			out[i] = int(f)
			continue
		}
		out[i] = elem
	}
	return out
}
