// Package storage provides recipe persistence implementations.
package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hammamikhairi/cooklang/internal/domain"
	"github.com/hammamikhairi/cooklang/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory recipe store. Safe for concurrent access.
type MemoryStore struct {
	mu      sync.RWMutex
	recipes map[string]*domain.StoredRecipe
	log     *logger.Logger
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory recipe store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		recipes: make(map[string]*domain.StoredRecipe),
		log:     log,
		now:     time.Now,
	}
}

// Save persists a recipe, overwriting any entry with the same ID. The stored
// version is one more than the previous one.
func (s *MemoryStore) Save(ctx context.Context, rec *domain.StoredRecipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *rec
	stored.Version = 1
	if prev, ok := s.recipes[rec.ID]; ok {
		stored.Version = prev.Version + 1
	}
	stored.UpdatedAt = s.now().UTC()
	s.recipes[rec.ID] = &stored

	rec.Version, rec.UpdatedAt = stored.Version, stored.UpdatedAt
	s.log.Debug("saving recipe %s (v%d)", rec.ID, stored.Version)
	return nil
}

// Load retrieves a recipe by ID.
func (s *MemoryStore) Load(ctx context.Context, id string) (*domain.StoredRecipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.recipes[id]
	if !ok {
		s.log.Debug("recipe not found: %s", id)
		return nil, domain.ErrNotFound
	}
	out := *rec
	return &out, nil
}

// Delete removes a recipe by ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.recipes, id)
	s.log.Debug("deleted recipe %s", id)
	return nil
}

// List returns every stored recipe ordered by name.
func (s *MemoryStore) List(ctx context.Context) ([]*domain.StoredRecipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.StoredRecipe, 0, len(s.recipes))
	for _, rec := range s.recipes {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	s.log.Debug("listing recipes, count=%d", len(out))
	return out, nil
}
