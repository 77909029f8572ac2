package rdfstore

import (
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/vliz-be-opsci/rdfstore/graph"
	"github.com/vliz-be-opsci/rdfstore/internal/query"
)

// fakeEndpoint interprets the requests a RemoteStore renders and keeps the
// resulting quads in memory.
type fakeEndpoint struct {
	adminGraph string

	mu      sync.Mutex
	graphs  map[string]*graph.Graph
	updates []string
	queries []fakeQuery

	// failUpdate, when set, is consulted before every update is applied.
	failUpdate func(n int, update string) error
}

type fakeQuery struct {
	endpoint      string
	query         string
	defaultGraphs []string
}

var _ Client = (*fakeEndpoint)(nil)

var (
	graphHeader = regexp.MustCompile(`GRAPH <([^>]*)> \{`)
	adminLine   = regexp.MustCompile(`GRAPH <([^>]*)> \{ (<[^>]*> <[^>]*> .*) \}`)
)

func newFakeEndpoint() *fakeEndpoint {
	return &fakeEndpoint{
		adminGraph: DefaultAdminGraph,
		graphs:     make(map[string]*graph.Graph),
	}
}

func (f *fakeEndpoint) partition(name string) *graph.Graph {
	g := f.graphs[name]
	if g == nil {
		g = graph.New()
		f.graphs[name] = g
	}
	return g
}

func (f *fakeEndpoint) Update(ctx context.Context, endpoint, update string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failUpdate != nil {
		if err := f.failUpdate(len(f.updates), update); err != nil {
			return err
		}
	}
	f.updates = append(f.updates, update)

	switch {
	case strings.HasPrefix(update, "INSERT DATA {"):
		target := ""
		if m := graphHeader.FindStringSubmatch(update); m != nil {
			target = m[1]
		}
		var body []string
		for _, line := range strings.Split(update, "\n") {
			if strings.HasSuffix(line, " .") {
				body = append(body, line)
			}
		}
		g, err := graph.ParseString(ctx, strings.Join(body, "\n"), rdf.FormatNTriples)
		if err != nil {
			return err
		}
		f.partition(target).Merge(g)

	case strings.HasPrefix(update, "DROP SILENT GRAPH"):
		name := strings.Trim(strings.TrimSpace(strings.TrimPrefix(update, "DROP SILENT GRAPH")), "<>")
		delete(f.graphs, name)

	case strings.HasPrefix(update, "DELETE {"):
		matches := adminLine.FindAllStringSubmatch(update, -1)
		record := matches[len(matches)-1]
		t, err := graph.ParseString(ctx, record[2]+" .", rdf.FormatNTriples)
		if err != nil {
			return err
		}
		admin := f.partition(record[1])
		for tr := range t.All() {
			f.removeRecords(admin, tr.S, tr.P)
			admin.Add(tr)
		}

	case strings.HasPrefix(update, "DELETE WHERE"):
		m := adminLine.FindStringSubmatch(update)
		fields := strings.Fields(m[2])
		s := rdf.IRI{Value: strings.Trim(fields[0], "<>")}
		p := rdf.IRI{Value: strings.Trim(fields[1], "<>")}
		f.removeRecords(f.partition(m[1]), s, p)

	default:
		return fmt.Errorf("fake endpoint: unexpected update %q", update)
	}
	return nil
}

func (f *fakeEndpoint) removeRecords(admin *graph.Graph, s rdf.Term, p rdf.IRI) {
	for _, t := range slices.Collect(admin.Match(s, &p, nil)) {
		admin.Remove(t)
	}
}

func (f *fakeEndpoint) Query(ctx context.Context, endpoint, q string, defaultGraphs ...string) (*Results, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, fakeQuery{endpoint: endpoint, query: q, defaultGraphs: defaultGraphs})

	switch {
	case strings.HasPrefix(q, "SELECT ?lastmod"):
		m := adminLine.FindStringSubmatch(q)
		fields := strings.Fields(m[2])
		s := rdf.IRI{Value: strings.Trim(fields[0], "<>")}
		p := rdf.IRI{Value: strings.Trim(fields[1], "<>")}
		res := &Results{Vars: []string{"lastmod"}}
		for t := range f.graphs[m[1]].Match(s, &p, nil) {
			res.Bindings = append(res.Bindings, Binding{"lastmod": t.O})
		}
		return res, nil

	case strings.HasPrefix(q, "SELECT DISTINCT ?graph"):
		res := &Results{Vars: []string{"graph"}}
		for _, s := range f.graphs[f.adminGraph].Subjects() {
			res.Bindings = append(res.Bindings, Binding{"graph": s})
		}
		return res, nil
	}

	target := graph.New()
	if len(defaultGraphs) > 0 {
		for _, name := range defaultGraphs {
			target.Merge(f.graphs[name])
		}
	} else {
		for _, name := range slices.Sorted(maps.Keys(f.graphs)) {
			if name != f.adminGraph {
				target.Merge(f.graphs[name])
			}
		}
	}
	return query.Select(ctx, target, q)
}

func (f *fakeEndpoint) updateCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, u := range f.updates {
		if strings.HasPrefix(u, prefix) {
			n++
		}
	}
	return n
}
