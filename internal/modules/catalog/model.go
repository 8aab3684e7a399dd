// README: Vehicle catalog: per-vehicle base services and add-on price lists.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownVehicleType = errors.New("unknown vehicle type")
	ErrUnknownService     = errors.New("unknown service")
	ErrBadRequest         = errors.New("bad request")
	ErrNotFound           = errors.New("vehicle not found")
)

// BaseService is one selectable primary wash service.
type BaseService struct {
	Price          decimal.Decimal `json:"price"`
	IncludesVacuum bool            `json:"vac"`
}

// VehicleProfile is the price list for one vehicle type. Add-on names are
// looked up only within the profile they belong to.
type VehicleProfile struct {
	Name   string                     `json:"vehicle_name"`
	Bases  map[string]BaseService     `json:"bases"`
	Addons map[string]decimal.Decimal `json:"addons"`
}

// Catalog maps vehicle-type name to its profile.
type Catalog map[string]VehicleProfile

func (c Catalog) Vehicle(name string) (VehicleProfile, error) {
	p, ok := c[name]
	if !ok {
		return VehicleProfile{}, fmt.Errorf("%w: %q", ErrUnknownVehicleType, name)
	}
	return p, nil
}

func (p VehicleProfile) Base(name string) (BaseService, error) {
	b, ok := p.Bases[name]
	if !ok {
		return BaseService{}, fmt.Errorf("%w: %q is not offered for %q", ErrUnknownService, name, p.Name)
	}
	return b, nil
}

// AddonPrice returns the add-on price and whether the name is known.
func (p VehicleProfile) AddonPrice(name string) (decimal.Decimal, bool) {
	price, ok := p.Addons[name]
	if !ok {
		return decimal.Zero, false
	}
	return price, true
}

// Names returns the vehicle types sorted alphabetically.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for n := range c {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Profiles returns the profiles in name order.
func (c Catalog) Profiles() []VehicleProfile {
	out := make([]VehicleProfile, 0, len(c))
	for _, n := range c.Names() {
		out = append(out, c[n])
	}
	return out
}

// Validate checks a profile before it is stored.
func (p VehicleProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: vehicle_name is required", ErrBadRequest)
	}
	if len(p.Bases) == 0 {
		return fmt.Errorf("%w: at least one base service is required", ErrBadRequest)
	}
	for name, b := range p.Bases {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: base service name is required", ErrBadRequest)
		}
		if b.Price.IsNegative() {
			return fmt.Errorf("%w: base service %q has a negative price", ErrBadRequest, name)
		}
	}
	for name, price := range p.Addons {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: add-on name is required", ErrBadRequest)
		}
		if price.IsNegative() {
			return fmt.Errorf("%w: add-on %q has a negative price", ErrBadRequest, name)
		}
	}
	return nil
}
