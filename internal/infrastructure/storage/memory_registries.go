package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"CrimeScanner/internal/domain"
	"CrimeScanner/internal/ports"
)

// SourceRepository is the in-memory source registry.
type SourceRepository struct {
	mu      sync.RWMutex
	nextID  int64
	sources []domain.Source
	byURL   map[string]int
	now     func() time.Time
}

var _ ports.SourceRegistry = (*SourceRepository)(nil)

// NewSourceRepository builds an empty registry; now defaults to time.Now.
func NewSourceRepository(now func() time.Time) *SourceRepository {
	if now == nil {
		now = time.Now
	}
	return &SourceRepository{byURL: map[string]int{}, now: now}
}

// ListSources returns every source in id order.
func (r *SourceRepository) ListSources(_ context.Context) ([]domain.Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Source, len(r.sources))
	copy(out, r.sources)
	return out, nil
}

// ActiveSources returns sources with IsActive set, in id order.
func (r *SourceRepository) ActiveSources(_ context.Context) ([]domain.Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Source, 0, len(r.sources))
	for _, s := range r.sources {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

// GetSource returns the source with id or domain.ErrNotFound.
func (r *SourceRepository) GetSource(_ context.Context, id int64) (domain.Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.indexOf(id)
	if !ok {
		return domain.Source{}, fmt.Errorf("source %d: %w", id, domain.ErrNotFound)
	}
	return r.sources[i], nil
}

// CreateSource stores a new source; the URL must be unique.
func (r *SourceRepository) CreateSource(_ context.Context, src domain.NewSource) (domain.Source, error) {
	if strings.TrimSpace(src.Name) == "" {
		return domain.Source{}, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(src.URL) == "" {
		return domain.Source{}, &domain.ValidationError{Field: "url", Reason: "must not be empty"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byURL[src.URL]; ok {
		return domain.Source{}, fmt.Errorf("source %s: %w", src.URL, domain.ErrConflict)
	}

	r.nextID++
	created := domain.Source{
		ID:         r.nextID,
		Name:       src.Name,
		URL:        src.URL,
		Logo:       src.Logo,
		Country:    src.Country,
		IsNigerian: src.IsNigerian,
		IsActive:   src.IsActive,
		CreatedAt:  r.now().UTC(),
	}
	r.byURL[src.URL] = len(r.sources)
	r.sources = append(r.sources, created)
	return created, nil
}

// SetSourceActive toggles whether sweeps visit the source.
func (r *SourceRepository) SetSourceActive(_ context.Context, id int64, active bool) (domain.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.indexOf(id)
	if !ok {
		return domain.Source{}, fmt.Errorf("source %d: %w", id, domain.ErrNotFound)
	}
	r.sources[i].IsActive = active
	return r.sources[i], nil
}

// indexOf relies on ids being assigned densely from 1.
func (r *SourceRepository) indexOf(id int64) (int, bool) {
	i := int(id - 1)
	if id < 1 || i >= len(r.sources) {
		return 0, false
	}
	return i, true
}

// CategoryRepository is the in-memory category registry.
type CategoryRepository struct {
	mu         sync.RWMutex
	nextID     int64
	categories []domain.Category
	byName     map[string]int
}

var _ ports.CategoryRegistry = (*CategoryRepository)(nil)

// NewCategoryRepository builds an empty registry.
func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{byName: map[string]int{}}
}

// ListCategories returns every category in id order.
func (r *CategoryRepository) ListCategories(_ context.Context) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Category, len(r.categories))
	copy(out, r.categories)
	return out, nil
}

// GetCategory returns the category with id or domain.ErrNotFound.
func (r *CategoryRepository) GetCategory(_ context.Context, id int64) (domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := int(id - 1)
	if id < 1 || i >= len(r.categories) {
		return domain.Category{}, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	return r.categories[i], nil
}

// FindCategoryByName matches the exact category name.
func (r *CategoryRepository) FindCategoryByName(_ context.Context, name string) (domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byName[name]
	if !ok {
		return domain.Category{}, fmt.Errorf("category %q: %w", name, domain.ErrNotFound)
	}
	return r.categories[i], nil
}

// CreateCategory stores a new category; the name must be unique.
func (r *CategoryRepository) CreateCategory(_ context.Context, cat domain.NewCategory) (domain.Category, error) {
	if strings.TrimSpace(cat.Name) == "" {
		return domain.Category{}, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[cat.Name]; ok {
		return domain.Category{}, fmt.Errorf("category %q: %w", cat.Name, domain.ErrConflict)
	}

	r.nextID++
	created := domain.Category{
		ID:          r.nextID,
		Name:        cat.Name,
		Color:       cat.Color,
		Description: cat.Description,
	}
	r.byName[cat.Name] = len(r.categories)
	r.categories = append(r.categories, created)
	return created, nil
}
