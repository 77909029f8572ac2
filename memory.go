package rdfstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/geoknoesis/rdf-go/rdf"
	"go.uber.org/zap"

	"github.com/vliz-be-opsci/rdfstore/graph"
	"github.com/vliz-be-opsci/rdfstore/internal/query"
)

// MemoryStore keeps every partition in process.
//
// The default partition and each named partition are separate graphs; an
// aggregate graph holds their union and answers unscoped queries.
type MemoryStore struct {
	opts    *Options
	queries *query.Cache

	mu        sync.RWMutex
	def       *graph.Graph
	named     map[string]*graph.Graph
	aggregate *graph.Graph
	admin     map[string]time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{
		opts:      o,
		queries:   query.NewCache(o.QueryCacheSize),
		def:       graph.New(),
		named:     make(map[string]*graph.Graph),
		aggregate: graph.New(),
		admin:     make(map[string]time.Time),
	}
}

// Select evaluates query against the aggregate, or against the named
// partition. Unknown partitions yield no solutions.
func (m *MemoryStore) Select(ctx context.Context, q string, namedGraph string) (*Results, error) {
	parsed, err := m.queries.Parse(q)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	target := m.aggregate
	if namedGraph != "" {
		target = m.named[namedGraph]
	}
	res, err := parsed.Eval(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	return res, nil
}

func (m *MemoryStore) Insert(ctx context.Context, g *graph.Graph, namedGraph string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	prepared, err := prepare(g, m.opts)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	target := m.def
	if namedGraph != "" {
		target = m.named[namedGraph]
		if target == nil {
			target = graph.New()
			m.named[namedGraph] = target
		}
	}
	target.Merge(prepared)
	m.aggregate.Merge(prepared)
	if namedGraph != "" {
		m.touch(namedGraph)
	}

	m.opts.Logger.Debug("inserted triples",
		zap.String("graph", namedGraph),
		zap.Int("triples", prepared.Len()),
	)
	return nil
}

// DropGraph removes the partition. Triples it shares with another partition
// stay visible in the aggregate.
func (m *MemoryStore) DropGraph(ctx context.Context, namedGraph string) error {
	if namedGraph == "" {
		return fmt.Errorf("drop graph: %w", ErrGraphRequired)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if part, ok := m.named[namedGraph]; ok {
		delete(m.named, namedGraph)
		for t := range part.All() {
			if !m.heldElsewhere(t) {
				m.aggregate.Remove(t)
			}
		}
	}
	m.touch(namedGraph)
	return nil
}

func (m *MemoryStore) heldElsewhere(t rdf.Triple) bool {
	if m.def.Has(t) {
		return true
	}
	for _, part := range m.named {
		if part.Has(t) {
			return true
		}
	}
	return false
}

func (m *MemoryStore) LastModified(ctx context.Context, namedGraph string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ts, ok := m.admin[namedGraph]
	return ts, ok, nil
}

func (m *MemoryStore) NamedGraphs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.admin)), nil
}

func (m *MemoryStore) ForgetGraph(ctx context.Context, namedGraph string) error {
	if namedGraph == "" {
		return fmt.Errorf("forget graph: %w", ErrGraphRequired)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.admin, namedGraph)
	return nil
}

// AdminGraph renders the last-modified records as the triples a RemoteStore
// would hold in its admin graph.
func (m *MemoryStore) AdminGraph() *graph.Graph {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g := graph.New()
	for ng, ts := range m.admin {
		g.Add(adminRecord(ng, m.opts.LastModifiedPredicate, ts))
	}
	return g
}

// Graph returns a copy of the named partition, or of the aggregate when
// namedGraph is empty.
func (m *MemoryStore) Graph(namedGraph string) *graph.Graph {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if namedGraph == "" {
		return m.aggregate.Clone()
	}
	return m.named[namedGraph].Clone()
}

// touch must be called with mu held.
func (m *MemoryStore) touch(namedGraph string) {
	m.admin[namedGraph] = m.opts.Clock().UTC()
}
