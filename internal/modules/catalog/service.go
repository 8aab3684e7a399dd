// README: Catalog service; serves snapshots through the cache and owns writes.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

type Repository interface {
	List(ctx context.Context) (Catalog, error)
	Upsert(ctx context.Context, p VehicleProfile) error
	Delete(ctx context.Context, name string) error
	Count(ctx context.Context) (int, error)
}

// Cache holds one catalog snapshot. Set must refuse to store when an
// Invalidate happened after gen was read from Generation.
type Cache interface {
	Get(ctx context.Context) (Catalog, bool, error)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, cat Catalog, gen int64) (bool, error)
	Invalidate(ctx context.Context) error
}

type Service struct {
	store Repository
	cache Cache
	log   logrus.FieldLogger
}

// NewService wires the catalog service. cache may be nil.
func NewService(store Repository, cache Cache, log logrus.FieldLogger) *Service {
	return &Service{store: store, cache: cache, log: log.WithField("module", "catalog")}
}

// Catalog returns the current catalog snapshot. Cache errors are logged
// and the store is read instead. A snapshot read while a write was
// invalidating the cache is returned but not cached.
func (s *Service) Catalog(ctx context.Context) (Catalog, error) {
	if s.cache == nil {
		return s.list(ctx)
	}
	cat, ok, err := s.cache.Get(ctx)
	if err != nil {
		s.log.WithError(err).Warn("catalog cache read failed")
		return s.list(ctx)
	}
	if ok {
		return cat, nil
	}

	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.WithError(err).Warn("catalog cache generation read failed")
		return s.list(ctx)
	}
	cat, err = s.list(ctx)
	if err != nil {
		return nil, err
	}
	stored, err := s.cache.Set(ctx, cat, gen)
	switch {
	case err != nil:
		s.log.WithError(err).Warn("catalog cache write failed")
	case !stored:
		s.log.Debug("catalog changed while loading; snapshot not cached")
	}
	return cat, nil
}

func (s *Service) list(ctx context.Context) (Catalog, error) {
	cat, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return cat, nil
}

func (s *Service) Save(ctx context.Context, p VehicleProfile) error {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.store.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert vehicle %q: %w", p.Name, err)
	}
	s.invalidate(ctx)
	s.log.WithField("vehicle", p.Name).Info("vehicle profile saved")
	return nil
}

func (s *Service) Delete(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrBadRequest
	}
	if err := s.store.Delete(ctx, name); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.log.WithField("vehicle", name).Info("vehicle profile deleted")
	return nil
}

// Seed installs the default catalog when no vehicles exist yet.
func (s *Service) Seed(ctx context.Context) error {
	n, err := s.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count vehicles: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, p := range Default().Profiles() {
		if err := s.store.Upsert(ctx, p); err != nil {
			return fmt.Errorf("seed vehicle %q: %w", p.Name, err)
		}
	}
	s.invalidate(ctx)
	s.log.WithField("vehicles", len(Default())).Info("default catalog seeded")
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WithError(err).Warn("catalog cache invalidate failed")
	}
}
