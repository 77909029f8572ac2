package rdfstore

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/geoknoesis/rdf-go/rdf"
	"go.uber.org/zap"

	"github.com/vliz-be-opsci/rdfstore/graph"
	"github.com/vliz-be-opsci/rdfstore/internal/batch"
	"github.com/vliz-be-opsci/rdfstore/internal/sparql"
)

// RemoteStore talks to a SPARQL endpoint pair. Last-modified records are
// kept in the admin graph of the write endpoint and read back through the
// read endpoint.
type RemoteStore struct {
	read  string
	write string

	opts   *Options
	client Client
	tmpl   *Templates
}

var _ Store = (*RemoteStore)(nil)

// NewRemoteStore creates a store reading from read and writing to write.
// An empty write endpoint makes the store read-only.
func NewRemoteStore(read, write string, opts ...Option) (*RemoteStore, error) {
	if read == "" {
		return nil, ErrNoReadEndpoint
	}
	o := buildOptions(opts)

	tmpl := o.Templates
	if tmpl == nil {
		var err error
		if tmpl, err = NewTemplates(); err != nil {
			return nil, err
		}
	}
	client := o.Client
	if client == nil {
		client = newHTTPClient(o)
	}

	return &RemoteStore{
		read:   read,
		write:  write,
		opts:   o,
		client: client,
		tmpl:   tmpl,
	}, nil
}

// ReadOnly reports whether the store lacks a write endpoint.
func (r *RemoteStore) ReadOnly() bool { return r.write == "" }

func (r *RemoteStore) Endpoints() (read, write string) { return r.read, r.write }

func (r *RemoteStore) Select(ctx context.Context, query string, namedGraph string) (*Results, error) {
	var scope []string
	if namedGraph != "" {
		scope = append(scope, namedGraph)
	}
	res, err := r.client.Query(ctx, r.read, query, scope...)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	return res, nil
}

// Insert sends g as a sequence of INSERT DATA requests, one per batch, and
// refreshes the admin record once every batch went through. A failure
// halfway leaves the earlier batches in place.
func (r *RemoteStore) Insert(ctx context.Context, g *graph.Graph, namedGraph string) error {
	if r.ReadOnly() {
		return fmt.Errorf("insert: %w", ErrReadOnly)
	}
	prepared, err := prepare(g, r.opts)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	batches, err := batch.FromGraph(prepared, r.opts.BatchSize)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	for i, body := range batches {
		update, err := r.tmpl.Render(sparql.TmplInsertData, sparql.InsertData{Graph: namedGraph, Body: body})
		if err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		if err := r.client.Update(ctx, r.write, update); err != nil {
			return fmt.Errorf("insert batch %d/%d: %w", i+1, len(batches), err)
		}
	}
	r.opts.Logger.Debug("inserted triples",
		zap.String("graph", namedGraph),
		zap.Int("triples", prepared.Len()),
		zap.Int("batches", len(batches)),
	)

	if namedGraph == "" {
		return nil
	}
	return r.touch(ctx, namedGraph)
}

func (r *RemoteStore) DropGraph(ctx context.Context, namedGraph string) error {
	if namedGraph == "" {
		return fmt.Errorf("drop graph: %w", ErrGraphRequired)
	}
	if r.ReadOnly() {
		return fmt.Errorf("drop graph: %w", ErrReadOnly)
	}
	update, err := r.tmpl.Render(sparql.TmplDropGraph, sparql.GraphData{Graph: namedGraph})
	if err != nil {
		return fmt.Errorf("drop graph: %w", err)
	}
	if err := r.client.Update(ctx, r.write, update); err != nil {
		return fmt.Errorf("drop graph: %w", err)
	}
	return r.touch(ctx, namedGraph)
}

// LastModified returns the latest admin record of namedGraph.
func (r *RemoteStore) LastModified(ctx context.Context, namedGraph string) (time.Time, bool, error) {
	if namedGraph == "" {
		return time.Time{}, false, nil
	}
	res, err := r.adminQuery(ctx, sparql.TmplLastmod, namedGraph)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last modified: %w", err)
	}

	var latest time.Time
	found := false
	for _, term := range res.Column("lastmod") {
		ts, err := parseTimestamp(term)
		if err != nil {
			r.opts.Logger.Warn("skipping admin record", zap.String("graph", namedGraph), zap.Error(err))
			continue
		}
		if !found || ts.After(latest) {
			latest, found = ts, true
		}
	}
	return latest, found, nil
}

func (r *RemoteStore) NamedGraphs(ctx context.Context) ([]string, error) {
	res, err := r.adminQuery(ctx, sparql.TmplNamedGraphs, "")
	if err != nil {
		return nil, fmt.Errorf("named graphs: %w", err)
	}
	var out []string
	for _, term := range res.Column("graph") {
		if iri, ok := term.(rdf.IRI); ok {
			out = append(out, iri.Value)
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func (r *RemoteStore) ForgetGraph(ctx context.Context, namedGraph string) error {
	if namedGraph == "" {
		return fmt.Errorf("forget graph: %w", ErrGraphRequired)
	}
	if r.ReadOnly() {
		return fmt.Errorf("forget graph: %w", ErrReadOnly)
	}
	update, err := r.tmpl.Render(sparql.TmplForgetGraph, r.adminData(namedGraph))
	if err != nil {
		return fmt.Errorf("forget graph: %w", err)
	}
	if err := r.client.Update(ctx, r.write, update); err != nil {
		return fmt.Errorf("forget graph: %w", err)
	}
	return nil
}

func (r *RemoteStore) adminData(namedGraph string) sparql.AdminData {
	return sparql.AdminData{
		AdminGraph: r.opts.AdminGraph,
		Predicate:  r.opts.LastModifiedPredicate,
		Graph:      namedGraph,
	}
}

func (r *RemoteStore) adminQuery(ctx context.Context, name, namedGraph string) (*Results, error) {
	q, err := r.tmpl.Render(name, r.adminData(namedGraph))
	if err != nil {
		return nil, err
	}
	return r.client.Query(ctx, r.read, q)
}

// touch replaces the admin record of namedGraph in a single update.
func (r *RemoteStore) touch(ctx context.Context, namedGraph string) error {
	data := r.adminData(namedGraph)
	data.Timestamp = timestampLiteral(r.opts.Clock())
	update, err := r.tmpl.Render(sparql.TmplUpdateLastmod, data)
	if err != nil {
		return fmt.Errorf("update admin record: %w", err)
	}
	if err := r.client.Update(ctx, r.write, update); err != nil {
		return fmt.Errorf("update admin record: %w", err)
	}
	return nil
}
