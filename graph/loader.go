package graph

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/piprate/json-gold/ld"
)

// CachingLoader resolves remote JSON-LD contexts through json-gold and keeps
// every fetched document for the lifetime of the loader. Sharing one loader
// across many Parse calls fetches each context only once.
type CachingLoader struct {
	mu    sync.Mutex
	inner *ld.CachingDocumentLoader
}

var _ rdf.DocumentLoader = (*CachingLoader)(nil)

// NewCachingLoader returns a loader fetching documents with client. A nil
// client uses http.DefaultClient.
func NewCachingLoader(client *http.Client) *CachingLoader {
	return &CachingLoader{
		inner: ld.NewCachingDocumentLoader(ld.NewDefaultDocumentLoader(client)),
	}
}

// Preload registers doc as the document served for iri, so that it is never
// fetched over the network.
func (l *CachingLoader) Preload(iri string, doc any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inner.AddDocument(iri, doc)
}

func (l *CachingLoader) LoadDocument(ctx context.Context, iri string) (rdf.RemoteDocument, error) {
	if ctx != nil && ctx.Err() != nil {
		return rdf.RemoteDocument{}, ctx.Err()
	}
	l.mu.Lock()
	doc, err := l.inner.LoadDocument(iri)
	l.mu.Unlock()
	if err != nil {
		return rdf.RemoteDocument{}, fmt.Errorf("load %s: %w", iri, err)
	}
	return rdf.RemoteDocument{
		DocumentURL: doc.DocumentURL,
		Document:    doc.Document,
		ContextURL:  doc.ContextURL,
	}, nil
}
