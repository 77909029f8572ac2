package rdfstore

import "fmt"

// Open picks a store implementation from the number of endpoints given:
// none yields a MemoryStore, one a RemoteStore reading and writing the same
// URL, two a RemoteStore reading from the first and writing to the second.
// Empty strings count as not given.
func Open(endpoints []string, opts ...Option) (Store, error) {
	if len(endpoints) > 2 {
		return nil, fmt.Errorf("open: %w: got %d", ErrTooManyEndpoints, len(endpoints))
	}
	o := buildOptions(opts)

	var read, write string
	switch len(endpoints) {
	case 1:
		read, write = endpoints[0], endpoints[0]
	case 2:
		read, write = endpoints[0], endpoints[1]
	}
	if o.ReadOnly {
		write = ""
	}

	if read == "" && write == "" {
		return NewMemoryStore(opts...), nil
	}
	s, err := NewRemoteStore(read, write, opts...)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return s, nil
}
