package models

type Region string

const (
	RegionUS Region = "US"
	RegionIN Region = "IN"
	RegionGB Region = "GB"
)

type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Display  string  `json:"display"`
}

// Plan - тарифный план подписки. Цена для US обязательна для каждого плана.
type Plan struct {
	ID          string           `json:"planId"`
	Title       string           `json:"title"`
	Duration    string           `json:"duration"`
	Features    []string         `json:"features"`
	Highlighted bool             `json:"isHighlighted"`
	Prices      map[Region]Price `json:"prices"`
}

type CheckoutSession struct {
	CheckoutURL  string `json:"checkoutUrl,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
}
