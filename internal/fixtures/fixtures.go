// Package fixtures holds the static reference data scenarios draw from.
package fixtures

// Product is an item sold on the storefront.
type Product struct {
	Name  string
	Price Money
}

// Products lists the storefront catalogue in display order. Scenarios pick
// from adjacent pairs, so the order is significant.
var Products = []Product{
	{Name: "Sauce Labs Backpack", Price: Dollars(29, 99)},
	{Name: "Sauce Labs Bike Light", Price: Dollars(9, 99)},
	{Name: "Sauce Labs Bolt T-Shirt", Price: Dollars(15, 99)},
	{Name: "Sauce Labs Fleece Jacket", Price: Dollars(49, 99)},
	{Name: "Sauce Labs Onesie", Price: Dollars(7, 99)},
	{Name: "Test.allTheThings() T-Shirt (Red)", Price: Dollars(15, 99)},
}

// SalesTaxPercent is the rate the storefront applies at checkout.
const SalesTaxPercent = 8

// Totals are the amounts shown on the checkout overview.
type Totals struct {
	ItemTotal  Money
	TaxTotal   Money
	GrandTotal Money
}

// CartTotals prices a cart the way the storefront does.
func CartTotals(products ...Product) Totals {
	var item Money
	for _, p := range products {
		item += p.Price
	}
	tax := item.Percent(SalesTaxPercent)
	return Totals{ItemTotal: item, TaxTotal: tax, GrandTotal: item + tax}
}

// City is a location the weather API is queried for. Coordinates carry four
// decimals, which is city-level precision.
type City struct {
	Name     string
	Country  string
	Code     string
	Lat      float64
	Lon      float64
	Postcode string
}

// Cities lists the weather scenario locations.
var Cities = []City{
	{Name: "Sydney", Country: "Australia", Code: "AU", Lat: -33.8523, Lon: 151.2108, Postcode: "2000"},
	{Name: "Berlin", Country: "Germany", Code: "DE", Lat: 52.5208, Lon: 13.4094, Postcode: "10178"},
	{Name: "Kandy", Country: "Sri Lanka", Code: "LK", Lat: 7.2914, Lon: 80.6366, Postcode: "20000"},
}
