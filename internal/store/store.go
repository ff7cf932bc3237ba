// Package store defines the transactional document-store contract the
// pipeline engine runs against. Records live in named collections; every
// cross-collection move is expressed as a single atomic batch or transaction
// so a record is never duplicated or lost mid-operation.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned by Transaction after the retry budget for
	// concurrent-writer conflicts is exhausted.
	ErrConflict = errors.New("transaction conflict")
)

// Document is a schemaless record as stored in a collection. Entities encode
// to and from documents through Encode/Decode.
type Document map[string]any

type WriteKind int

const (
	WritePut WriteKind = iota
	WriteDelete
)

// Write is one element of an atomic batch.
type Write struct {
	Kind       WriteKind
	Collection string
	ID         string
	Doc        Document
}

func Put(collection, id string, doc Document) Write {
	return Write{Kind: WritePut, Collection: collection, ID: id, Doc: doc}
}

func Delete(collection, id string) Write {
	return Write{Kind: WriteDelete, Collection: collection, ID: id}
}

// Txn is the handle passed to a Transaction closure. Reads observe a
// serializable snapshot plus the transaction's own buffered writes; writes
// become visible only if the transaction commits.
type Txn interface {
	Get(collection, id string) (Document, error)
	Put(collection, id string, doc Document)
	Delete(collection, id string)
}

// Store is the record-store contract consumed by the engine.
//
// Transaction runs fn with serializable semantics: either every buffered
// write commits, or none do. Implementations retry conflicting executions a
// bounded number of times before surfacing ErrConflict. Batch applies the
// given writes atomically without a read set.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Put(ctx context.Context, collection, id string, doc Document) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, pred func(Document) bool) ([]Document, error)
	Batch(ctx context.Context, writes ...Write) error
	Transaction(ctx context.Context, fn func(tx Txn) error) error
}
