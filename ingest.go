package rdfstore

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/vliz-be-opsci/rdfstore/graph"
	"github.com/vliz-be-opsci/rdfstore/internal/compression"
)

// DefaultConcurrency is the number of files InsertFiles loads in parallel.
const DefaultConcurrency = 4

// IngestOptions configures InsertFiles.
type IngestOptions struct {
	// Target maps a file path to the named graph it is inserted into.
	Target      func(path string) string
	Concurrency int
	Loader      *graph.CachingLoader
	Logger      *zap.Logger
}

type IngestOption func(*IngestOptions)

// IntoGraph inserts every file into namedGraph.
func IntoGraph(namedGraph string) IngestOption {
	return func(o *IngestOptions) {
		o.Target = func(string) string { return namedGraph }
	}
}

// IntoMappedGraphs inserts each file into the graph m derives from the file
// name without its serialisation and compression extensions.
func IntoMappedGraphs(m *GraphNameMapper) IngestOption {
	return func(o *IngestOptions) {
		o.Target = func(path string) string { return m.KeyToGraph(FileKey(path)) }
	}
}

func WithIngestConcurrency(n int) IngestOption {
	return func(o *IngestOptions) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

// WithIngestLoader shares a JSON-LD document loader across files.
func WithIngestLoader(l *graph.CachingLoader) IngestOption {
	return func(o *IngestOptions) { o.Loader = l }
}

func WithIngestLogger(l *zap.Logger) IngestOption {
	return func(o *IngestOptions) {
		if l != nil {
			o.Logger = l
		}
	}
}

// FileKey strips directories and extensions from path.
func FileKey(path string) string {
	base := filepath.Base(strings.TrimSuffix(path, compression.Ext))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// InsertFiles parses and inserts paths concurrently. The first failure
// cancels the files not yet started.
func InsertFiles(ctx context.Context, s Store, paths []string, opts ...IngestOption) error {
	o := &IngestOptions{
		Target:      func(string) string { return "" },
		Concurrency: DefaultConcurrency,
		Logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.Loader == nil {
		o.Loader = graph.NewCachingLoader(nil)
	}

	p := pool.New().WithMaxGoroutines(o.Concurrency).WithContext(ctx).WithCancelOnError()
	for _, path := range paths {
		p.Go(func(ctx context.Context) error {
			g, err := graph.ParseFile(ctx, path, "", graph.WithDocumentLoader(o.Loader))
			if err != nil {
				return err
			}
			ng := o.Target(path)
			if err := s.Insert(ctx, g, ng); err != nil {
				return fmt.Errorf("insert %s: %w", path, err)
			}
			o.Logger.Info("inserted file",
				zap.String("path", path),
				zap.String("graph", ng),
				zap.Int("triples", g.Len()),
			)
			return nil
		})
	}
	return p.Wait()
}
