package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"CrimeScanner/internal/config"
	"CrimeScanner/internal/domain"
	"CrimeScanner/internal/ports"
)

// Seeder fills empty registries with the fixed category catalog and the configured sources.
type Seeder struct {
	sources    ports.SourceRegistry
	categories ports.CategoryRegistry
	catalog    []config.SourceConfig
	logger     *slog.Logger
}

// NewSeeder wires registries with config-defined sources.
func NewSeeder(sources ports.SourceRegistry, categories ports.CategoryRegistry, catalog []config.SourceConfig, log *slog.Logger) *Seeder {
	return &Seeder{
		sources:    sources,
		categories: categories,
		catalog:    catalog,
		logger:     log,
	}
}

// Seed is a no-op for a registry that already holds entries.
func (s *Seeder) Seed(ctx context.Context) error {
	if err := s.seedCategories(ctx); err != nil {
		return err
	}
	return s.seedSources(ctx)
}

func (s *Seeder) seedCategories(ctx context.Context) error {
	existing, err := s.categories.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	if len(existing) > 0 {
		s.debug("categories already seeded", "count", len(existing))
		return nil
	}

	for _, cat := range domain.CrimeCategories() {
		if _, err := s.categories.CreateCategory(ctx, cat); err != nil && !errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("seed category %s: %w", cat.Name, err)
		}
	}
	s.debug("categories seeded", "count", len(domain.CrimeCategories()))
	return nil
}

func (s *Seeder) seedSources(ctx context.Context) error {
	existing, err := s.sources.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}
	if len(existing) > 0 {
		s.debug("sources already seeded", "count", len(existing))
		return nil
	}

	created := 0
	for _, src := range s.catalog {
		_, err := s.sources.CreateSource(ctx, toNewSource(src))
		switch {
		case errors.Is(err, domain.ErrConflict):
			s.debug("duplicate source in catalog", "url", src.URL)
		case err != nil:
			return fmt.Errorf("seed source %s: %w", src.Name, err)
		default:
			created++
		}
	}
	s.debug("sources seeded", "count", created)
	return nil
}

func toNewSource(src config.SourceConfig) domain.NewSource {
	country := src.Country
	if country == "" {
		country = "International"
		if src.Nigerian {
			country = "Nigeria"
		}
	}
	return domain.NewSource{
		Name:       src.Name,
		URL:        src.URL,
		Logo:       src.Logo,
		Country:    country,
		IsNigerian: src.Nigerian,
		IsActive:   !src.Disabled,
	}
}

func (s *Seeder) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
