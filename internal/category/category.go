package category

import (
	"github.com/frahmantamala/hardware-marketplace/internal/hardware"
	"github.com/frahmantamala/hardware-marketplace/internal/impact"
)

// Category is a hardware category a listing may be filed under.
type Category struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	CO2Kg       float64 `json:"co2Kg"`
}

var descriptions = map[string]string{
	hardware.CategoryServer:     "Rack and tower servers, compute nodes",
	hardware.CategoryNetworking: "Switches, routers, firewalls and other network gear",
	hardware.CategoryStorage:    "Storage arrays and disk shelves with drives removed",
}

func (c Category) ToResponse() CategoryResponse {
	return CategoryResponse{
		Name:        c.Name,
		Description: c.Description,
		CO2Kg:       c.CO2Kg,
	}
}

// All returns every category in display order.
func All() []Category {
	out := make([]Category, 0, len(hardware.Categories))
	for _, name := range hardware.Categories {
		out = append(out, Category{
			Name:        name,
			Description: descriptions[name],
			CO2Kg:       impact.FootprintKg(name),
		})
	}
	return out
}
