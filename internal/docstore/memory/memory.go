// Package memory is the in-memory docstore backend. It is the default dev
// backend and the store the engine tests run against.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"moneta/internal/docstore"
)

type Store struct {
	mu   sync.Mutex
	cols map[string]map[string]map[string]any
}

func New() *Store {
	return &Store{cols: make(map[string]map[string]map[string]any)}
}

func (s *Store) Get(_ context.Context, collection, id string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.cols[collection][id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return copyFields(doc), nil
}

func (s *Store) List(_ context.Context, collection string) ([]docstore.Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.cols[collection]
	out := make([]docstore.Doc, 0, len(col))
	for id, fields := range col {
		out = append(out, docstore.Doc{ID: id, Fields: copyFields(fields)})
	}
	return out, nil
}

func (s *Store) ListRecent(ctx context.Context, collection, orderField string, limit int) ([]docstore.Doc, error) {
	docs, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool {
		a, b := docs[i].Fields[orderField], docs[j].Fields[orderField]
		if c := compareValues(a, b); c != 0 {
			return c > 0
		}
		return docs[i].ID > docs[j].ID
	})
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (s *Store) NewID() string {
	return uuid.NewString()
}

// Commit applies the whole batch under one lock hold, so readers never see a
// partially applied batch.
func (s *Store) Commit(_ context.Context, b *docstore.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range b.Ops() {
		switch {
		case op.IsSet():
			s.collection(op.Collection)[op.ID] = copyFields(op.Fields)
		case op.IsMergeSet():
			col := s.collection(op.Collection)
			doc, ok := col[op.ID]
			if !ok {
				doc = make(map[string]any)
				col[op.ID] = doc
			}
			for field, v := range op.Fields {
				doc[field] = v
			}
		case op.IsMergeIncrement():
			col := s.collection(op.Collection)
			doc, ok := col[op.ID]
			if !ok {
				doc = make(map[string]any)
				col[op.ID] = doc
			}
			for field, delta := range op.Deltas {
				doc[field] = docstore.AsInt64(doc[field]) + delta
			}
		case op.IsDelete():
			delete(s.cols[op.Collection], op.ID)
		}
	}
	return nil
}

func (s *Store) collection(name string) map[string]map[string]any {
	col, ok := s.cols[name]
	if !ok {
		col = make(map[string]map[string]any)
		s.cols[name] = col
	}
	return col
}

func copyFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func compareValues(a, b any) int {
	if as, ok := a.(string); ok {
		bs, _ := b.(string)
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		}
		return 0
	}
	ai, bi := docstore.AsInt64(a), docstore.AsInt64(b)
	switch {
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	}
	return 0
}
