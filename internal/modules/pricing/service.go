// README: Pricing service quotes order drafts against the live catalog.
package pricing

import (
	"context"
	"strings"

	"carwash/internal/modules/catalog"
)

type CatalogSource interface {
	Catalog(ctx context.Context) (catalog.Catalog, error)
}

type Service struct {
	catalog CatalogSource
	rules   RuleSet
}

func NewService(catalog CatalogSource) *Service {
	return &Service{catalog: catalog, rules: DefaultRules()}
}

// Quote prices a draft using the current catalog snapshot. Names are
// trimmed the same way recorded orders are.
func (s *Service) Quote(ctx context.Context, in Input) (Result, error) {
	in.VehicleType = strings.TrimSpace(in.VehicleType)
	in.BaseService = strings.TrimSpace(in.BaseService)
	cat, err := s.catalog.Catalog(ctx)
	if err != nil {
		return Result{}, err
	}
	return s.rules.Compute(cat, in)
}

// Rules exposes the active rule table.
func (s *Service) Rules() RuleSet {
	return s.rules
}
