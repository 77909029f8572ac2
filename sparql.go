package rdfstore

import "github.com/vliz-be-opsci/rdfstore/internal/sparql"

// Results holds the solutions of a SELECT query.
// Re-exported from internal/sparql for convenience.
type Results = sparql.Results

// Binding maps variable names to the terms of one solution.
type Binding = sparql.Binding

// Client issues SPARQL protocol requests on behalf of a RemoteStore.
type Client = sparql.Client

// Templates renders the update and admin requests of a RemoteStore.
type Templates = sparql.Templates

// StatusError reports a non-2xx answer from an endpoint.
type StatusError = sparql.StatusError

// NewTemplates parses the built-in request templates.
func NewTemplates() (*Templates, error) {
	return sparql.NewTemplates()
}

// newHTTPClient returns the default protocol client, built from o.
func newHTTPClient(o *Options) Client {
	return sparql.NewHTTPClient(
		sparql.WithHTTPClient(o.HTTPClient),
		sparql.WithUserAgent(o.UserAgent),
		sparql.WithLogger(o.Logger),
	)
}
