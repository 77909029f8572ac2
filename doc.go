// Package rdfstore is a client-side abstraction over RDF triple stores.
//
// Two implementations share the Store interface: MemoryStore keeps
// partitions in process and evaluates a subset of SPARQL SELECT locally,
// RemoteStore talks the SPARQL 1.1 protocol to a read endpoint and an
// optional write endpoint. Both keep a last-modified record per named
// graph, stored as ordinary triples in a reserved admin graph.
//
// Basic usage (in memory):
//
//	s, _ := rdfstore.Open(nil)
//	g, _ := graph.ParseFile(ctx, "people.ttl", "")
//	s.Insert(ctx, g, "urn:people")
//
//	res, _ := s.Select(ctx, "SELECT ?s WHERE { ?s a <https://schema.org/Person> }", "urn:people")
//	for _, b := range res.Bindings {
//	    fmt.Println(b["s"])
//	}
//
// Against an endpoint, optionally with a separate write URL:
//
//	s, _ := rdfstore.Open([]string{readURL, writeURL},
//	    rdfstore.WithCleaner(clean.Default()),
//	    rdfstore.WithLogger(logger))
//
//	fresh, _ := rdfstore.VerifyMaxAge(ctx, s, "urn:people", time.Hour)
//
// A store bound to a single graph:
//
//	people := rdfstore.NewNamedGraphStore(s, "urn:people")
//	people.Add(ctx, g)
//	people.Fresh(ctx, 24*time.Hour)
package rdfstore
