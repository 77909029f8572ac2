package clean

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/vliz-be-opsci/rdfstore/graph"
)

// Builtin refers to a registered step by name.
type Builtin string

// Level reports the level of the registered step, or -1 when the name is
// not registered.
func (b Builtin) Level() Level {
	if s, ok := lookup(string(b)); ok {
		return s.Level()
	}
	return -1
}

const (
	SmartCleanStep     Builtin = "smart_clean"
	SchemaOrgHTTPSStep Builtin = "schema_org_https"
	RelabelBNodesStep  Builtin = "relabel_bnodes"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Step{
		string(SmartCleanStep): URIFunc(func(u string) string { return SmartClean(u) }),
		string(SchemaOrgHTTPSStep): URIFunc(func(u string) string {
			return NormaliseScheme(u, "schema.org", "https")
		}),
		string(RelabelBNodesStep): GraphFunc(graph.RelabelBlankNodes),
	}
)

func lookup(name string) (Step, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[name]
	return s, ok
}

// Register makes step available under name to BuildChain.
func Register(name string, step Step) error {
	if _, ok := step.(Builtin); ok || step == nil {
		return fmt.Errorf("clean: cannot register %T as %q", step, name)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[name]; ok {
		return fmt.Errorf("clean: step %q already registered", name)
	}
	registry[name] = step
	return nil
}

// Builtins lists the registered step names in sorted order.
func Builtins() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(registry))
}

// Default returns the chain applied when nothing else is configured.
func Default() *Chain {
	c, err := BuildChain(SmartCleanStep)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse turns step names into Builtin steps, for configuration input.
func Parse(names ...string) []Step {
	steps := make([]Step, 0, len(names))
	for _, n := range names {
		steps = append(steps, Builtin(n))
	}
	return steps
}
