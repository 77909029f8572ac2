// Package sparql talks the SPARQL 1.1 protocol to query and update
// endpoints.
//
// Request bodies come from text templates embedded in the binary, see
// Templates. Responses are decoded from the SPARQL JSON results format.
package sparql

import (
	"context"
	"errors"
	"fmt"
)

// Client issues SPARQL requests against an endpoint.
type Client interface {
	// Query runs a read-only query. Each default graph is passed as a
	// default-graph-uri protocol parameter, scoping the query to it.
	Query(ctx context.Context, endpoint, query string, defaultGraphs ...string) (*Results, error)

	// Update runs an update request.
	Update(ctx context.Context, endpoint, update string) error
}

var ErrUnexpectedStatus = errors.New("sparql: unexpected response status")

// StatusError reports a non-2xx answer from an endpoint.
type StatusError struct {
	Endpoint string
	Code     int
	Status   string
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("sparql: %s: %s", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("sparql: %s: %s: %s", e.Endpoint, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }
