// Package seed holds the reference data the marketplace starts with:
// product categories and Ethiopian cities for pickup/shipping.
package seed

import "github.com/ethioshop/ethioshop-backend/internal/model"

func Categories() []model.Category {
	names := []struct {
		Slug    string
		Display string
	}{
		{"electronics", "Electronics"},
		{"clothing", "Clothing"},
		{"home-garden", "Home & Garden"},
		{"books", "Books"},
		{"sports", "Sports"},
		{"beauty", "Beauty"},
		{"automotive", "Automotive"},
		{"health", "Health"},
		{"food", "Food"},
		{"services", "Services"},
	}
	out := make([]model.Category, 0, len(names))
	for _, n := range names {
		out = append(out, model.Category{Name: n.Slug, DisplayName: n.Display})
	}
	return out
}

func Locations() []model.Location {
	cities := []string{
		"Addis Ababa",
		"Dire Dawa",
		"Mekelle",
		"Gondar",
		"Bahir Dar",
		"Hawassa",
		"Jimma",
		"Dessie",
		"Adama",
		"Shashamane",
	}
	out := make([]model.Location, 0, len(cities))
	for _, c := range cities {
		out = append(out, model.Location{Name: c})
	}
	return out
}
