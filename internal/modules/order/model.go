// README: Wash order record and its priced view.
package order

import (
	"time"

	"github.com/shopspring/decimal"

	"carwash/internal/modules/catalog"
	"carwash/internal/modules/pricing"
	"carwash/internal/types"
)

// Order is a recorded wash. Orders are immutable once stored and carry the
// prices charged when they were recorded, so later catalog edits do not
// change them. AddonPrices holds only add-ons the price list knew.
type Order struct {
	ID           types.ID
	VehicleType  string
	BaseService  string
	Addons       []string
	Vacuum       *bool
	PlateNumber  string
	WasherName   string
	InchargeName string
	Shift        types.Shift
	Date         time.Time
	CreatedAt    time.Time

	BasePrice   decimal.Decimal
	BaseVacuum  bool
	AddonPrices map[string]decimal.Decimal
}

// PricingInput converts the order into a calculator input.
func (o Order) PricingInput() pricing.Input {
	return pricing.Input{
		VehicleType: o.VehicleType,
		BaseService: o.BaseService,
		Addons:      o.Addons,
		Vacuum:      o.Vacuum,
	}
}

// PriceList rebuilds the single-vehicle catalog the order was charged from.
func (o Order) PriceList() catalog.Catalog {
	addons := make(map[string]decimal.Decimal, len(o.AddonPrices))
	for name, price := range o.AddonPrices {
		addons[name] = price
	}
	return catalog.Catalog{
		o.VehicleType: {
			Name: o.VehicleType,
			Bases: map[string]catalog.BaseService{
				o.BaseService: {Price: o.BasePrice, IncludesVacuum: o.BaseVacuum},
			},
			Addons: addons,
		},
	}
}

// capturePrices copies the prices o is charged from the vehicle profile.
func (o *Order) capturePrices(cat catalog.Catalog) error {
	vehicle, err := cat.Vehicle(o.VehicleType)
	if err != nil {
		return err
	}
	base, err := vehicle.Base(o.BaseService)
	if err != nil {
		return err
	}
	o.BasePrice = base.Price
	o.BaseVacuum = base.IncludesVacuum
	o.AddonPrices = make(map[string]decimal.Decimal, len(o.Addons))
	for _, name := range o.Addons {
		if price, ok := vehicle.AddonPrice(name); ok {
			o.AddonPrices[name] = price
		}
	}
	return nil
}

// Priced is an order with its computed pricing.
type Priced struct {
	Order
	Pricing pricing.Result
}
