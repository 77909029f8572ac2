package rdfstore

import (
	"fmt"
	"time"

	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/vliz-be-opsci/rdfstore/graph"
)

// Admin graph identifiers. Changing them orphans the records written under
// the previous values.
const (
	DefaultAdminGraph            = "urn:PYTHONRDFSTORECLIENT:ADMIN"
	DefaultLastModifiedPredicate = "http://purl.org/dc/terms/modified"
)

// zone-less timestamps, as written by earlier clients, are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func timestampLiteral(t time.Time) rdf.Literal {
	return rdf.Literal{
		Lexical:  t.UTC().Format(time.RFC3339Nano),
		Datatype: rdf.IRI{Value: graph.XSDDateTime},
	}
}

func parseTimestamp(term rdf.Term) (time.Time, error) {
	lit, ok := term.(rdf.Literal)
	if !ok {
		return time.Time{}, fmt.Errorf("parse timestamp: %s is not a literal", graph.FormatTerm(term))
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, lit.Lexical); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp: %q", lit.Lexical)
}

func adminRecord(namedGraph, predicate string, ts time.Time) rdf.Triple {
	return rdf.Triple{
		S: rdf.IRI{Value: namedGraph},
		P: rdf.IRI{Value: predicate},
		O: timestampLiteral(ts),
	}
}
