package rdfstore

import (
	"context"
	"fmt"
	"time"

	"github.com/vliz-be-opsci/rdfstore/graph"
)

// Store is the contract shared by every triple store.
//
// An empty namedGraph stands for the default graph on writes and for the
// union of all graphs on reads.
type Store interface {
	// Select runs a SELECT query, scoped to namedGraph when one is given.
	Select(ctx context.Context, query string, namedGraph string) (*Results, error)

	// Insert adds the triples of g and refreshes the last-modified record
	// of namedGraph.
	Insert(ctx context.Context, g *graph.Graph, namedGraph string) error

	// DropGraph removes the data of namedGraph. Dropping an unknown graph
	// is not an error; the last-modified record is refreshed either way.
	DropGraph(ctx context.Context, namedGraph string) error

	// LastModified returns the recorded timestamp of namedGraph. The
	// boolean is false when the graph is not tracked.
	LastModified(ctx context.Context, namedGraph string) (time.Time, bool, error)

	// NamedGraphs lists every graph carrying a last-modified record.
	NamedGraphs(ctx context.Context) ([]string, error)

	// ForgetGraph removes the last-modified record of namedGraph and leaves
	// its data alone. Forgetting an untracked graph is not an error.
	ForgetGraph(ctx context.Context, namedGraph string) error
}

// VerifyMaxAge reports whether namedGraph was modified no longer than
// maxAge ago. An untracked graph is never fresh.
func VerifyMaxAge(ctx context.Context, s Store, namedGraph string, maxAge time.Duration) (bool, error) {
	ts, ok, err := s.LastModified(ctx, namedGraph)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return time.Since(ts) <= maxAge, nil
}

// prepare runs the configured cleaner and replaces blank nodes by fresh
// skolem IRIs. The input graph is left untouched.
func prepare(g *graph.Graph, o *Options) (*graph.Graph, error) {
	if g == nil {
		return graph.New(), nil
	}
	if o.Cleaner != nil {
		cleaned, err := o.Cleaner.Apply(g)
		if err != nil {
			return nil, fmt.Errorf("clean: %w", err)
		}
		g = cleaned
	}
	return graph.Skolemize(g, o.SkolemBase), nil
}
