// Package categories manages the category records. Each transaction copies
// the category's name/icon/color/type at creation time; editing a category
// never rewrites those snapshots.
package categories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"moneta/internal/core"
	"moneta/internal/docstore"
)

var ErrNotFound = errors.New("category not found")

const (
	fieldName      = "name"
	fieldType      = "type"
	fieldIcon      = "icon"
	fieldColor     = "color"
	fieldOrder     = "order"
	fieldCreatedAt = "createdAt"
)

type Service struct {
	store docstore.Store
	now   func() time.Time
}

func NewService(store docstore.Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) Create(ctx context.Context, uid string, c core.Category) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	c.ID = s.store.NewID()

	var b docstore.Batch
	b.Set(docstore.CategoriesCollection(uid), c.ID, s.encode(c))
	if err := s.store.Commit(ctx, &b); err != nil {
		return "", fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created", "category_id", c.ID, "name", c.Name, "type", c.Type)
	return c.ID, nil
}

func (s *Service) Get(ctx context.Context, uid, id string) (core.Category, error) {
	fields, err := s.store.Get(ctx, docstore.CategoriesCollection(uid), id)
	if errors.Is(err, docstore.ErrNotFound) {
		return core.Category{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return decode(id, fields), nil
}

// List returns every category ordered by display order, ties broken by
// insertion time.
func (s *Service) List(ctx context.Context, uid string) ([]core.Category, error) {
	docs, err := s.store.List(ctx, docstore.CategoriesCollection(uid))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	type entry struct {
		cat     core.Category
		created string
	}
	entries := make([]entry, len(docs))
	for i, d := range docs {
		entries[i] = entry{cat: decode(d.ID, d.Fields), created: docstore.AsString(d.Fields[fieldCreatedAt])}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].cat.Order != entries[j].cat.Order {
			return entries[i].cat.Order < entries[j].cat.Order
		}
		if entries[i].created != entries[j].created {
			return entries[i].created < entries[j].created
		}
		return entries[i].cat.ID < entries[j].cat.ID
	})

	out := make([]core.Category, len(entries))
	for i, e := range entries {
		out[i] = e.cat
	}
	return out, nil
}

// ListByType filters client-side; the store never needs a composite index.
func (s *Service) ListByType(ctx context.Context, uid string, typ core.CategoryType) ([]core.Category, error) {
	all, err := s.List(ctx, uid)
	if err != nil {
		return nil, err
	}
	out := make([]core.Category, 0, len(all))
	for _, c := range all {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, uid string, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, err := s.Get(ctx, uid, c.ID); err != nil {
		return err
	}

	var b docstore.Batch
	b.MergeSet(docstore.CategoriesCollection(uid), c.ID, map[string]any{
		fieldName:  c.Name,
		fieldType:  string(c.Type),
		fieldIcon:  c.Icon,
		fieldColor: c.Color,
		fieldOrder: int64(c.Order),
	})
	if err := s.store.Commit(ctx, &b); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, uid, id string) error {
	var b docstore.Batch
	b.Delete(docstore.CategoriesCollection(uid), id)
	if err := s.store.Commit(ctx, &b); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	slog.InfoContext(ctx, "Category deleted", "category_id", id)
	return nil
}

// SeedDefaults creates the default expense and income sets for a new user.
func (s *Service) SeedDefaults(ctx context.Context, uid string) error {
	existing, err := s.List(ctx, uid)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	defaults := append(append([]core.Category{}, core.DefaultExpenseCategories...), core.DefaultIncomeCategories...)
	for _, c := range defaults {
		if _, err := s.Create(ctx, uid, c); err != nil {
			return err
		}
	}
	slog.InfoContext(ctx, "Default categories seeded", "count", len(defaults))
	return nil
}

func (s *Service) encode(c core.Category) map[string]any {
	return map[string]any{
		fieldName:      c.Name,
		fieldType:      string(c.Type),
		fieldIcon:      c.Icon,
		fieldColor:     c.Color,
		fieldOrder:     int64(c.Order),
		fieldCreatedAt: s.now().UTC().Format(time.RFC3339Nano),
	}
}

func decode(id string, fields map[string]any) core.Category {
	return core.Category{
		ID:    id,
		Name:  docstore.AsString(fields[fieldName]),
		Type:  core.CategoryType(docstore.AsString(fields[fieldType])),
		Icon:  docstore.AsString(fields[fieldIcon]),
		Color: docstore.AsString(fields[fieldColor]),
		Order: int(docstore.AsInt64(fields[fieldOrder])),
	}
}
