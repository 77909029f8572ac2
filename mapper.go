package rdfstore

import (
	"fmt"
	"net/url"
	"strings"
)

// GraphNameMapper turns application keys into named graph IRIs under a
// common base and back.
type GraphNameMapper struct {
	base string
}

func NewGraphNameMapper(base string) *GraphNameMapper {
	return &GraphNameMapper{base: base}
}

func (m *GraphNameMapper) Base() string { return m.base }

// KeyToGraph appends the escaped key to the base. Characters outside the
// unreserved and sub-delimiter sets, plus '%', are percent-encoded.
func (m *GraphNameMapper) KeyToGraph(key string) string {
	var b strings.Builder
	b.Grow(len(m.base) + len(key))
	b.WriteString(m.base)
	for i := 0; i < len(key); i++ {
		c := key[i]
		if keepUnescaped(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

// GraphToKey inverts KeyToGraph.
func (m *GraphNameMapper) GraphToKey(namedGraph string) (string, error) {
	escaped, ok := strings.CutPrefix(namedGraph, m.base)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotMapped, namedGraph)
	}
	key, err := url.PathUnescape(escaped)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNotMapped, namedGraph, err)
	}
	return key, nil
}

func keepUnescaped(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("-._~/:@!$&'()*+,;=", c) >= 0
}
