package impact

import "math"

// Manufacturing footprint per category in kg CO2e.
var CarbonFootprintKg = map[string]float64{
	"Server":     1300,
	"Networking": 300,
	"Storage":    800,
}

const (
	DefaultFootprintKg = 500

	CO2PerTreeYear         = 22
	CO2PerMile             = 0.4
	CO2PerSmartphoneCharge = 0.012
	CO2PerHomeDay          = 30
	CO2PerPandaHabitat     = 40000
)

// Impact is the environmental saving of reusing hardware instead of buying new.
type Impact struct {
	CO2SavedKg         float64 `json:"co2SavedKg"`
	TreesEquivalent    float64 `json:"treesEquivalent"`
	MilesNotDriven     float64 `json:"milesNotDriven"`
	PandasProtected    float64 `json:"pandasProtected"`
	SmartphonesCharged float64 `json:"smartphonesCharged"`
	DaysOfElectricity  float64 `json:"daysOfElectricity"`
}

// Item is the slice of a listing the scorer cares about.
type Item struct {
	Department string `db:"department" json:"department"`
	Category   string `db:"category" json:"category"`
	Status     string `db:"status" json:"status"`
}

func FootprintKg(category string) float64 {
	if kg, ok := CarbonFootprintKg[category]; ok {
		return kg
	}
	return DefaultFootprintKg
}

// FromCO2 derives every equivalence from a CO2 total.
func FromCO2(co2Kg float64) Impact {
	return Impact{
		CO2SavedKg:         co2Kg,
		TreesEquivalent:    roundTo(co2Kg/CO2PerTreeYear, 1),
		MilesNotDriven:     math.Round(co2Kg / CO2PerMile),
		PandasProtected:    roundTo(co2Kg/CO2PerPandaHabitat, 4),
		SmartphonesCharged: math.Round(co2Kg / CO2PerSmartphoneCharge),
		DaysOfElectricity:  roundTo(co2Kg/CO2PerHomeDay, 1),
	}
}

func ForCategory(category string) Impact {
	return FromCO2(FootprintKg(category))
}

// Score sums the footprint of every item before converting, so rounding is
// applied once to the total.
func Score(items []Item) Impact {
	var total float64
	for _, it := range items {
		total += FootprintKg(it.Category)
	}
	return FromCO2(total)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
