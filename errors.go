package rdfstore

import (
	"errors"

	"github.com/vliz-be-opsci/rdfstore/internal/batch"
)

var (
	ErrReadOnly         = errors.New("rdfstore: read-only store")
	ErrTooManyEndpoints = errors.New("rdfstore: at most two endpoints are supported")
	ErrNoReadEndpoint   = errors.New("rdfstore: write endpoint given without a read endpoint")
	ErrGraphRequired    = errors.New("rdfstore: named graph required")
	ErrNotMapped        = errors.New("rdfstore: graph name not produced by this mapper")

	// ErrStatementTooLarge is returned by RemoteStore.Insert when a single
	// serialised statement does not fit the configured batch size.
	ErrStatementTooLarge = batch.ErrLineTooLong
)
