package rdfstore

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vliz-be-opsci/rdfstore/clean"
	"github.com/vliz-be-opsci/rdfstore/graph"
	"github.com/vliz-be-opsci/rdfstore/internal/batch"
)

// DefaultQueryCacheSize is the number of parsed queries a MemoryStore keeps.
const DefaultQueryCacheSize = 64

// Options configures a store.
type Options struct {
	BatchSize             int
	AdminGraph            string
	LastModifiedPredicate string
	SkolemBase            string
	Cleaner               *clean.Chain
	Logger                *zap.Logger
	Client                Client
	Templates             *Templates
	HTTPClient            *http.Client
	UserAgent             string
	QueryCacheSize        int
	ReadOnly              bool
	Clock                 func() time.Time
}

// Option is a functional option for configuring a store.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		BatchSize:             batch.DefaultMaxSize,
		AdminGraph:            DefaultAdminGraph,
		LastModifiedPredicate: DefaultLastModifiedPredicate,
		SkolemBase:            graph.DefaultSkolemBase,
		Logger:                zap.NewNop(),
		UserAgent:             "rdfstore",
		QueryCacheSize:        DefaultQueryCacheSize,
		Clock:                 time.Now,
	}
}

func buildOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithBatchSize bounds the size in bytes of each update request body.
func WithBatchSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.BatchSize = n
		}
	}
}

// WithAdminGraph sets the named graph holding last-modified records.
func WithAdminGraph(iri string) Option {
	return func(o *Options) {
		if iri != "" {
			o.AdminGraph = iri
		}
	}
}

// WithLastModifiedPredicate sets the predicate of last-modified records.
func WithLastModifiedPredicate(iri string) Option {
	return func(o *Options) {
		if iri != "" {
			o.LastModifiedPredicate = iri
		}
	}
}

// WithSkolemBase sets the IRI prefix blank nodes are replaced with on insert.
func WithSkolemBase(base string) Option {
	return func(o *Options) {
		if base != "" {
			o.SkolemBase = base
		}
	}
}

// WithCleaner runs c over every graph before it is inserted.
func WithCleaner(c *clean.Chain) Option {
	return func(o *Options) { o.Cleaner = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithClient sets the SPARQL protocol client used by RemoteStore.
func WithClient(c Client) Option {
	return func(o *Options) { o.Client = c }
}

// WithTemplates sets the request templates used by RemoteStore.
func WithTemplates(t *Templates) Option {
	return func(o *Options) { o.Templates = t }
}

// WithHTTPClient sets the HTTP client of the default SPARQL client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) { o.HTTPClient = c }
}

func WithUserAgent(ua string) Option {
	return func(o *Options) {
		if ua != "" {
			o.UserAgent = ua
		}
	}
}

// WithQueryCacheSize sets how many parsed queries a MemoryStore keeps. Zero
// disables the cache.
func WithQueryCacheSize(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.QueryCacheSize = n
		}
	}
}

// WithReadOnly makes Open ignore any write endpoint.
func WithReadOnly() Option {
	return func(o *Options) { o.ReadOnly = true }
}

// WithClock overrides the time source of last-modified records.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Clock = now
		}
	}
}
