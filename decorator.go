package rdfstore

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vliz-be-opsci/rdfstore/graph"
)

// Decorator forwards every Store call to an inner store. Embed it to
// override a subset of the methods.
type Decorator struct {
	inner Store
}

var _ Store = (*Decorator)(nil)

func NewDecorator(s Store) *Decorator {
	return &Decorator{inner: s}
}

// Unwrap returns the decorated store.
func (d *Decorator) Unwrap() Store { return d.inner }

func (d *Decorator) Select(ctx context.Context, query string, namedGraph string) (*Results, error) {
	return d.inner.Select(ctx, query, namedGraph)
}

func (d *Decorator) Insert(ctx context.Context, g *graph.Graph, namedGraph string) error {
	return d.inner.Insert(ctx, g, namedGraph)
}

func (d *Decorator) DropGraph(ctx context.Context, namedGraph string) error {
	return d.inner.DropGraph(ctx, namedGraph)
}

func (d *Decorator) LastModified(ctx context.Context, namedGraph string) (time.Time, bool, error) {
	return d.inner.LastModified(ctx, namedGraph)
}

func (d *Decorator) NamedGraphs(ctx context.Context) ([]string, error) {
	return d.inner.NamedGraphs(ctx)
}

func (d *Decorator) ForgetGraph(ctx context.Context, namedGraph string) error {
	return d.inner.ForgetGraph(ctx, namedGraph)
}

// NamedGraphStore binds a store to one named graph. It still satisfies
// Store, so the unbound methods stay reachable.
type NamedGraphStore struct {
	*Decorator
	name string
}

func NewNamedGraphStore(s Store, name string) *NamedGraphStore {
	return &NamedGraphStore{Decorator: NewDecorator(s), name: name}
}

func (n *NamedGraphStore) Name() string { return n.name }

func (n *NamedGraphStore) Query(ctx context.Context, query string) (*Results, error) {
	return n.Select(ctx, query, n.name)
}

func (n *NamedGraphStore) Add(ctx context.Context, g *graph.Graph) error {
	return n.Insert(ctx, g, n.name)
}

func (n *NamedGraphStore) Drop(ctx context.Context) error {
	return n.DropGraph(ctx, n.name)
}

func (n *NamedGraphStore) Forget(ctx context.Context) error {
	return n.ForgetGraph(ctx, n.name)
}

// Modified returns the last-modified record of the bound graph.
func (n *NamedGraphStore) Modified(ctx context.Context) (time.Time, bool, error) {
	return n.LastModified(ctx, n.name)
}

// Fresh reports whether the bound graph was modified within maxAge.
func (n *NamedGraphStore) Fresh(ctx context.Context, maxAge time.Duration) (bool, error) {
	return VerifyMaxAge(ctx, n, n.name, maxAge)
}

// LoggingStore logs every call with its duration and outcome.
type LoggingStore struct {
	*Decorator
	logger *zap.Logger
}

func NewLoggingStore(s Store, logger *zap.Logger) *LoggingStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingStore{Decorator: NewDecorator(s), logger: logger}
}

func (l *LoggingStore) log(op, namedGraph string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("op", op),
		zap.String("graph", namedGraph),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		l.logger.Error("store call failed", append(fields, zap.Error(err))...)
		return
	}
	l.logger.Info("store call", fields...)
}

func (l *LoggingStore) Select(ctx context.Context, query string, namedGraph string) (*Results, error) {
	start := time.Now()
	res, err := l.Decorator.Select(ctx, query, namedGraph)
	l.log("select", namedGraph, start, err, zap.Int("solutions", res.Len()))
	return res, err
}

func (l *LoggingStore) Insert(ctx context.Context, g *graph.Graph, namedGraph string) error {
	start := time.Now()
	err := l.Decorator.Insert(ctx, g, namedGraph)
	l.log("insert", namedGraph, start, err, zap.Int("triples", g.Len()))
	return err
}

func (l *LoggingStore) DropGraph(ctx context.Context, namedGraph string) error {
	start := time.Now()
	err := l.Decorator.DropGraph(ctx, namedGraph)
	l.log("drop", namedGraph, start, err)
	return err
}

func (l *LoggingStore) LastModified(ctx context.Context, namedGraph string) (time.Time, bool, error) {
	start := time.Now()
	ts, ok, err := l.Decorator.LastModified(ctx, namedGraph)
	l.log("lastmod", namedGraph, start, err, zap.Bool("tracked", ok))
	return ts, ok, err
}

func (l *LoggingStore) NamedGraphs(ctx context.Context) ([]string, error) {
	start := time.Now()
	names, err := l.Decorator.NamedGraphs(ctx)
	l.log("named_graphs", "", start, err, zap.Int("graphs", len(names)))
	return names, err
}

func (l *LoggingStore) ForgetGraph(ctx context.Context, namedGraph string) error {
	start := time.Now()
	err := l.Decorator.ForgetGraph(ctx, namedGraph)
	l.log("forget", namedGraph, start, err)
	return err
}
