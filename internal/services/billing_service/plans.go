package services

import (
	"slices"

	"template_hub/internal/domain/models"
)

func usd(amount float64, display string) models.Price {
	return models.Price{Amount: amount, Currency: "USD", Display: display}
}

func inr(amount float64, display string) models.Price {
	return models.Price{Amount: amount, Currency: "INR", Display: display}
}

func gbp(amount float64, display string) models.Price {
	return models.Price{Amount: amount, Currency: "GBP", Display: display}
}

// catalog - тарифы подписки с ценами по регионам
var catalog = []models.Plan{
	{
		ID:       "monthly",
		Title:    "Monthly Plan",
		Duration: "month",
		Features: []string{"Basic access to all features", "24/7 Customer Support", "Single user license"},
		Prices: map[models.Region]models.Price{
			models.RegionUS: usd(9.99, "$9.99"),
			models.RegionIN: inr(499, "₹499"),
			models.RegionGB: gbp(7.99, "£7.99"),
		},
	},
	{
		ID:          "yearly",
		Title:       "Yearly Plan",
		Duration:    "year",
		Features:    []string{"All Monthly Plan features", "Save 25% annually", "Priority support", "Advanced features"},
		Highlighted: true,
		Prices: map[models.Region]models.Price{
			models.RegionUS: usd(89.99, "$89.99"),
			models.RegionIN: inr(4499, "₹4,499"),
			models.RegionGB: gbp(69.99, "£69.99"),
		},
	},
	{
		ID:       "family",
		Title:    "Family Plan",
		Duration: "year",
		Features: []string{"Up to 5 family members", "All Yearly Plan features", "Family dashboard", "Parental controls"},
		Prices: map[models.Region]models.Price{
			models.RegionUS: usd(149.99, "$149.99"),
			models.RegionIN: inr(7499, "₹7,499"),
			models.RegionGB: gbp(119.99, "£119.99"),
		},
	},
}

func clonePlan(p models.Plan) models.Plan {
	c := p
	c.Features = slices.Clone(p.Features)
	c.Prices = make(map[models.Region]models.Price, len(p.Prices))
	for r, price := range p.Prices {
		c.Prices[r] = price
	}
	return c
}
