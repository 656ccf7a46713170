package menu

import (
	"github.com/shopspring/decimal"

	"github.com/kieracarman/tablepos/internal/models"
)

// SampleCatalog is the fixed catalog loaded at process start
func SampleCatalog() []models.MenuItem {
	return []models.MenuItem{
		models.NewFoodItem("Classic Burger", decimal.RequireFromString("12.99"), 50, "American", false),
		models.NewFoodItem("Garden Salad", decimal.RequireFromString("8.99"), 30, "International", true),
		models.NewFoodItem("Pasta Carbonara", decimal.RequireFromString("14.99"), 25, "Italian", false),
		models.NewDrinkItem("Espresso", decimal.RequireFromString("3.99"), 100, false, "Hot"),
		models.NewDrinkItem("Craft Beer", decimal.RequireFromString("6.99"), 40, true, "Cold"),
		models.NewDrinkItem("Orange Juice", decimal.RequireFromString("4.99"), 60, false, "Cold"),
	}
}

// Seed puts items into the store
func Seed(s *Store, items []models.MenuItem) {
	for _, item := range items {
		s.Put(item)
	}
}
