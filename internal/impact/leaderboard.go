package impact

import "sort"

type Badge struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type DepartmentStat struct {
	Department           string  `json:"department"`
	ItemsPosted          int     `json:"itemsPosted"`
	ItemsClaimed         int     `json:"itemsClaimed"`
	TotalCO2SavedKg      float64 `json:"totalCO2SavedKg"`
	TotalTreesEquivalent float64 `json:"totalTreesEquivalent"`
	TotalPandasProtected float64 `json:"totalPandasProtected"`
	Rank                 int     `json:"rank"`
	Badge                *Badge  `json:"badge,omitempty"`
}

// BadgeFor maps the number of posted items to an achievement badge.
func BadgeFor(itemsPosted int) *Badge {
	switch {
	case itemsPosted >= 20:
		return &Badge{Name: "Planet Hero", Icon: "🌍"}
	case itemsPosted >= 10:
		return &Badge{Name: "Sustainability Champion", Icon: "♻️"}
	case itemsPosted >= 5:
		return &Badge{Name: "Green Warrior", Icon: "🌿"}
	case itemsPosted >= 1:
		return &Badge{Name: "Eco Starter", Icon: "🌱"}
	}
	return nil
}

// countsAsClaimed lists the listing statuses that mean someone took the item.
var countsAsClaimed = map[string]bool{
	"claimed":  true,
	"approved": true,
	"shipped":  true,
}

// RankDepartments groups items by department, sums their CO2 savings and ranks
// departments by savings, highest first. Equal savings go to the department
// that posted more items, then to the one that appears first in items.
func RankDepartments(items []Item) []DepartmentStat {
	index := make(map[string]int)
	var stats []DepartmentStat

	for _, it := range items {
		i, ok := index[it.Department]
		if !ok {
			i = len(stats)
			index[it.Department] = i
			stats = append(stats, DepartmentStat{Department: it.Department})
		}
		stats[i].ItemsPosted++
		if countsAsClaimed[it.Status] {
			stats[i].ItemsClaimed++
		}
		stats[i].TotalCO2SavedKg += FootprintKg(it.Category)
	}

	sort.SliceStable(stats, func(a, b int) bool {
		if stats[a].TotalCO2SavedKg != stats[b].TotalCO2SavedKg {
			return stats[a].TotalCO2SavedKg > stats[b].TotalCO2SavedKg
		}
		return stats[a].ItemsPosted > stats[b].ItemsPosted
	})

	for i := range stats {
		total := FromCO2(stats[i].TotalCO2SavedKg)
		stats[i].TotalTreesEquivalent = total.TreesEquivalent
		stats[i].TotalPandasProtected = total.PandasProtected
		stats[i].Rank = i + 1
		stats[i].Badge = BadgeFor(stats[i].ItemsPosted)
	}

	if stats == nil {
		stats = []DepartmentStat{}
	}
	return stats
}
