// Package batch splits serialised statements into size-bounded request
// bodies.
package batch

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/vliz-be-opsci/rdfstore/graph"
)

// DefaultMaxSize is the body size used when none is configured.
const DefaultMaxSize = 4096

var (
	ErrLineTooLong = errors.New("batch: statement exceeds batch size")
	ErrInvalidSize = errors.New("batch: size must be positive")
)

// ToBatches groups lines into newline-joined batches of at most maxSize
// bytes. Lines are trimmed, empty lines dropped and duplicates removed; the
// remaining lines are packed in sorted order. A new batch is opened only
// when appending the next line would push the current one over maxSize.
func ToBatches(lines []string, maxSize int) ([]string, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, maxSize)
	}

	unique := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			unique = append(unique, l)
		}
	}
	slices.Sort(unique)
	unique = slices.Compact(unique)

	var batches []string
	var current strings.Builder
	for _, line := range unique {
		if len(line) > maxSize {
			return nil, fmt.Errorf("%w: %d > %d: %.80s", ErrLineTooLong, len(line), maxSize, line)
		}

		if current.Len() > 0 && current.Len()+1+len(line) > maxSize {
			batches = append(batches, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		batches = append(batches, current.String())
	}
	return batches, nil
}

// FromGraph packs the N-Triples statements of g.
func FromGraph(g *graph.Graph, maxSize int) ([]string, error) {
	return ToBatches(g.Lines(), maxSize)
}
