// Package users manages user profiles and owns account deletion. Purge is the
// only multi-collection delete in the system and must leave nothing behind.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"moneta/internal/docstore"
)

var (
	ErrNotFound = errors.New("user profile not found")

	// ErrPurgeIncomplete means the post-purge sweep still found documents.
	// The operation is safe to retry; deletes are idempotent.
	ErrPurgeIncomplete = errors.New("purge incomplete")
)

const (
	fieldEmail       = "email"
	fieldDisplayName = "displayName"
	fieldCreatedAt   = "createdAt"
	fieldInputMode   = "settings.defaultInputMode"

	DefaultInputMode = "voice"
)

type Settings struct {
	DefaultInputMode string
}

type Profile struct {
	UID         string
	Email       string
	DisplayName string
	CreatedAt   time.Time
	Settings    Settings
}

type Service struct {
	store docstore.Store
	now   func() time.Time
}

func NewService(store docstore.Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) CreateProfile(ctx context.Context, uid, email, displayName string) (Profile, error) {
	p := Profile{
		UID:         uid,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   s.now().UTC(),
		Settings:    Settings{DefaultInputMode: DefaultInputMode},
	}

	var b docstore.Batch
	b.Set(docstore.UsersCollection, uid, encode(p))
	if err := s.store.Commit(ctx, &b); err != nil {
		return Profile{}, fmt.Errorf("create profile: %w", err)
	}

	slog.InfoContext(ctx, "Profile created", "user_id", uid)
	return p, nil
}

func (s *Service) Fetch(ctx context.Context, uid string) (Profile, error) {
	fields, err := s.store.Get(ctx, docstore.UsersCollection, uid)
	if errors.Is(err, docstore.ErrNotFound) {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, uid)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("fetch profile: %w", err)
	}
	return decode(uid, fields), nil
}

// FetchOrCreate returns the existing profile or provisions one on first login.
func (s *Service) FetchOrCreate(ctx context.Context, uid, email, displayName string) (Profile, error) {
	p, err := s.Fetch(ctx, uid)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Profile{}, err
	}
	return s.CreateProfile(ctx, uid, email, displayName)
}

func (s *Service) UpdateProfile(ctx context.Context, uid, displayName string) error {
	if _, err := s.Fetch(ctx, uid); err != nil {
		return err
	}

	var b docstore.Batch
	b.MergeSet(docstore.UsersCollection, uid, map[string]any{fieldDisplayName: displayName})
	if err := s.store.Commit(ctx, &b); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// UpdateSettings merges individual setting fields; untouched settings survive.
func (s *Service) UpdateSettings(ctx context.Context, uid string, settings Settings) error {
	if _, err := s.Fetch(ctx, uid); err != nil {
		return err
	}

	var b docstore.Batch
	b.MergeSet(docstore.UsersCollection, uid, map[string]any{fieldInputMode: settings.DefaultInputMode})
	if err := s.store.Commit(ctx, &b); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

// Purge deletes every document the user owns: transactions, accounts,
// categories, monthly stats, then the profile itself. The four data families
// are swept concurrently; the profile is removed only after a verification
// pass confirms all of them are empty, so a half-purged user still shows up
// and the operation can be retried.
func (s *Service) Purge(ctx context.Context, uid string) error {
	families := []string{
		docstore.TransactionsCollection(uid),
		docstore.AccountsCollection(uid),
		docstore.CategoriesCollection(uid),
		docstore.MonthlyStatsCollection(uid),
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, collection := range families {
		g.Go(func() error {
			return s.purgeCollection(gctx, collection)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("purge user %s: %w", uid, err)
	}

	// Verify before dropping the profile.
	for _, collection := range families {
		docs, err := s.store.List(ctx, collection)
		if err != nil {
			return fmt.Errorf("purge verification: %w", err)
		}
		if len(docs) > 0 {
			return fmt.Errorf("%w: %d documents left in %s", ErrPurgeIncomplete, len(docs), collection)
		}
	}

	var b docstore.Batch
	b.Delete(docstore.UsersCollection, uid)
	if err := s.store.Commit(ctx, &b); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}

	slog.InfoContext(ctx, "User purged", "user_id", uid)
	return nil
}

func (s *Service) purgeCollection(ctx context.Context, collection string) error {
	docs, err := s.store.List(ctx, collection)
	if err != nil {
		return fmt.Errorf("list %s: %w", collection, err)
	}

	for start := 0; start < len(docs); start += docstore.BatchLimit {
		end := min(start+docstore.BatchLimit, len(docs))

		var b docstore.Batch
		for _, d := range docs[start:end] {
			b.Delete(collection, d.ID)
		}
		if err := s.store.Commit(ctx, &b); err != nil {
			return fmt.Errorf("delete chunk in %s: %w", collection, err)
		}
	}
	return nil
}

func encode(p Profile) map[string]any {
	return map[string]any{
		fieldEmail:       p.Email,
		fieldDisplayName: p.DisplayName,
		fieldCreatedAt:   p.CreatedAt.Format(time.RFC3339Nano),
		fieldInputMode:   p.Settings.DefaultInputMode,
	}
}

func decode(uid string, fields map[string]any) Profile {
	created, _ := time.Parse(time.RFC3339Nano, docstore.AsString(fields[fieldCreatedAt]))
	mode := docstore.AsString(fields[fieldInputMode])
	if mode == "" {
		mode = DefaultInputMode
	}
	return Profile{
		UID:         uid,
		Email:       docstore.AsString(fields[fieldEmail]),
		DisplayName: docstore.AsString(fields[fieldDisplayName]),
		CreatedAt:   created,
		Settings:    Settings{DefaultInputMode: mode},
	}
}
