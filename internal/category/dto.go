package category

type CategoryResponse struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	CO2Kg       float64 `json:"co2Kg"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}
