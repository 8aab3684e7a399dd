package catalog

import "github.com/shopspring/decimal"

func peso(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

var defaultAddons = map[string]int64{
	"Wax":           80,
	"Buffing":       100,
	"Deep Cleaning": 150,
	"Engine Wash":   120,
}

// Default returns the starter catalog installed on an empty database.
func Default() Catalog {
	return Catalog{
		"Car": {
			Name: "Car",
			Bases: map[string]BaseService{
				"Bodywash":             {Price: peso(200)},
				"Bodywash with Vacuum": {Price: peso(250), IncludesVacuum: true},
				"Vacuum Only":          {Price: peso(50), IncludesVacuum: true},
				"Spray Only":           {Price: peso(100)},
			},
			Addons: addons(),
		},
		"SUV": {
			Name: "SUV",
			Bases: map[string]BaseService{
				"Bodywash":             {Price: peso(250)},
				"Bodywash with Vacuum": {Price: peso(300), IncludesVacuum: true},
				"Vacuum Only":          {Price: peso(70), IncludesVacuum: true},
				"Spray Only":           {Price: peso(120)},
			},
			Addons: addons(),
		},
	}
}

func addons() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(defaultAddons))
	for k, v := range defaultAddons {
		out[k] = peso(v)
	}
	return out
}
