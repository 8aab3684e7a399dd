// README: Order service records washes with the prices charged at the time and returns them priced.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"carwash/internal/clock"
	"carwash/internal/modules/catalog"
	"carwash/internal/modules/pricing"
	"carwash/internal/types"
)

var (
	ErrNotFound   = errors.New("order not found")
	ErrBadRequest = errors.New("bad request")
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id types.ID) (*Order, error)
	ListByShift(ctx context.Context, date time.Time, shift types.Shift) ([]Order, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]Order, error)
}

type CatalogSource interface {
	Catalog(ctx context.Context) (catalog.Catalog, error)
}

type Service struct {
	store   Repository
	catalog CatalogSource
	rules   pricing.RuleSet
	clock   clock.Clock
	log     logrus.FieldLogger
}

func NewService(store Repository, catalog CatalogSource, clk clock.Clock, log logrus.FieldLogger) *Service {
	return &Service{
		store:   store,
		catalog: catalog,
		rules:   pricing.DefaultRules(),
		clock:   clk,
		log:     log.WithField("module", "order"),
	}
}

type CreateCommand struct {
	VehicleType  string
	BaseService  string
	Addons       []string
	Vacuum       *bool
	PlateNumber  string
	WasherName   string
	InchargeName string
	// Shift and Date default to the shift running now.
	Shift types.Shift
	Date  *time.Time
}

// Create validates and stores an order. Unknown vehicle types and base
// services are rejected with the catalog's error.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (Priced, error) {
	cmd.VehicleType = strings.TrimSpace(cmd.VehicleType)
	cmd.BaseService = strings.TrimSpace(cmd.BaseService)
	cmd.PlateNumber = strings.ToUpper(strings.TrimSpace(cmd.PlateNumber))
	if cmd.VehicleType == "" || cmd.BaseService == "" || cmd.PlateNumber == "" {
		return Priced{}, fmt.Errorf("%w: vehicle_type, base_service and plate_number are required", ErrBadRequest)
	}
	if cmd.Shift != "" && !cmd.Shift.Valid() {
		return Priced{}, fmt.Errorf("%w: %v", ErrBadRequest, types.ErrInvalidShift)
	}

	cat, err := s.catalog.Catalog(ctx)
	if err != nil {
		return Priced{}, err
	}

	now := s.clock.Now()
	o := Order{
		ID:           types.NewID(),
		VehicleType:  cmd.VehicleType,
		BaseService:  cmd.BaseService,
		Addons:       cleanAddons(cmd.Addons),
		Vacuum:       cmd.Vacuum,
		PlateNumber:  cmd.PlateNumber,
		WasherName:   strings.TrimSpace(cmd.WasherName),
		InchargeName: strings.TrimSpace(cmd.InchargeName),
		Shift:        cmd.Shift,
		CreatedAt:    now,
	}
	if o.Shift == "" {
		o.Shift = types.ShiftAt(now)
	}
	if cmd.Date != nil {
		o.Date = types.DateOf(*cmd.Date)
	} else {
		o.Date = types.BusinessDate(now)
	}

	if err := o.capturePrices(cat); err != nil {
		return Priced{}, err
	}
	priced, err := s.price(o)
	if err != nil {
		return Priced{}, err
	}
	if err := s.store.Create(ctx, &o); err != nil {
		return Priced{}, fmt.Errorf("store order: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"order_id": o.ID,
		"vehicle":  o.VehicleType,
		"base":     o.BaseService,
		"shift":    o.Shift,
		"date":     o.Date.Format(types.DateLayout),
		"total":    types.FormatPeso(priced.Pricing.TotalPrice),
	}).Info("order recorded")
	return priced, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (Priced, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return Priced{}, err
	}
	return s.price(*o)
}

// ListByShift returns one shift's orders, oldest first, each priced from
// its recorded prices.
func (s *Service) ListByShift(ctx context.Context, date time.Time, shift types.Shift) ([]Priced, error) {
	if !shift.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, types.ErrInvalidShift)
	}
	orders, err := s.store.ListByShift(ctx, types.DateOf(date), shift)
	if err != nil {
		return nil, err
	}
	return s.priceAll(orders)
}

// ListBetween returns priced orders for an inclusive business-date range.
func (s *Service) ListBetween(ctx context.Context, from, to time.Time) ([]Priced, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end before start", ErrBadRequest)
	}
	orders, err := s.store.ListBetween(ctx, types.DateOf(from), types.DateOf(to))
	if err != nil {
		return nil, err
	}
	return s.priceAll(orders)
}

func (s *Service) priceAll(orders []Order) ([]Priced, error) {
	out := make([]Priced, 0, len(orders))
	for _, o := range orders {
		p, err := s.price(o)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// price computes shares from the order's recorded price list.
func (s *Service) price(o Order) (Priced, error) {
	result, err := s.rules.Compute(o.PriceList(), o.PricingInput())
	if err != nil {
		return Priced{}, fmt.Errorf("price order %s: %w", o.ID, err)
	}
	return Priced{Order: o, Pricing: result}, nil
}

func cleanAddons(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
