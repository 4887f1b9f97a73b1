// Package docstore defines the document-store port the ledger is written
// against: get/list/ordered-query reads plus an all-or-nothing write batch.
//
// Numeric fields mutate through additive merge-increments applied by the
// store itself, never by read-modify-write in the caller. That discipline is
// what keeps concurrent writers from the same user safe without locks.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the document does not exist.
var ErrNotFound = errors.New("document not found")

// BatchLimit is the largest number of operations a single batch may carry.
// Callers doing unbounded work (purge) must chunk to this.
const BatchLimit = 500

// Doc is a stored document: an id plus a flat field map.
type Doc struct {
	ID     string
	Fields map[string]any
}

// Store is the persistence port. Implementations must apply a committed
// batch atomically: either every operation becomes visible or none does.
type Store interface {
	// Get returns one document's fields, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (map[string]any, error)

	// List returns every document in a collection, in unspecified order.
	List(ctx context.Context, collection string) ([]Doc, error)

	// ListRecent returns up to limit documents ordered descending by the
	// named field (ties broken by document id).
	ListRecent(ctx context.Context, collection, orderField string, limit int) ([]Doc, error)

	// NewID mints a store-assigned document id.
	NewID() string

	// Commit applies a batch atomically.
	Commit(ctx context.Context, b *Batch) error
}

type opKind int

const (
	opSet opKind = iota
	opMergeSet
	opMergeIncrement
	opDelete
)

type op struct {
	kind       opKind
	collection string
	id         string
	fields     map[string]any
	deltas     map[string]int64
}

// Batch collects write operations for one atomic commit.
type Batch struct {
	ops []op
}

// Set creates or fully replaces a document.
func (b *Batch) Set(collection, id string, fields map[string]any) {
	b.ops = append(b.ops, op{kind: opSet, collection: collection, id: id, fields: fields})
}

// MergeSet upserts a document, overwriting only the given fields and leaving
// every other stored field untouched.
func (b *Batch) MergeSet(collection, id string, fields map[string]any) {
	b.ops = append(b.ops, op{kind: opMergeSet, collection: collection, id: id, fields: fields})
}

// MergeIncrement upserts a document and adds each delta to the named numeric
// field, treating a missing document or field as zero.
func (b *Batch) MergeIncrement(collection, id string, deltas map[string]int64) {
	b.ops = append(b.ops, op{kind: opMergeIncrement, collection: collection, id: id, deltas: deltas})
}

// Delete removes a document. Deleting a missing document is not an error.
func (b *Batch) Delete(collection, id string) {
	b.ops = append(b.ops, op{kind: opDelete, collection: collection, id: id})
}

// Len returns the number of queued operations.
func (b *Batch) Len() int {
	return len(b.ops)
}

// Ops exposes the queued operations to store implementations.
func (b *Batch) Ops() []BatchOp {
	out := make([]BatchOp, len(b.ops))
	for i, o := range b.ops {
		out[i] = BatchOp{
			Kind:       o.kind,
			Collection: o.collection,
			ID:         o.id,
			Fields:     o.fields,
			Deltas:     o.deltas,
		}
	}
	return out
}

// BatchOp is the read-only view of one queued operation.
type BatchOp struct {
	Kind       opKind
	Collection string
	ID         string
	Fields     map[string]any
	Deltas     map[string]int64
}

// IsSet/IsMergeSet/IsMergeIncrement/IsDelete discriminate a BatchOp's kind.
func (o BatchOp) IsSet() bool            { return o.Kind == opSet }
func (o BatchOp) IsMergeSet() bool       { return o.Kind == opMergeSet }
func (o BatchOp) IsMergeIncrement() bool { return o.Kind == opMergeIncrement }
func (o BatchOp) IsDelete() bool         { return o.Kind == opDelete }

// AsInt64 normalizes a stored numeric field value. In-memory documents carry
// int64; JSON round-trips produce float64.
func AsInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

// AsString returns a stored field as a string, or "".
func AsString(v any) string {
	s, _ := v.(string)
	return s
}
