package domain

import "github.com/shopspring/decimal"

// Product is the catalog view the cart needs: identity, display data, and the
// current unit price. Prices are decimals to keep totals exact.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Image string
}
