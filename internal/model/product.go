package model

// Product mirrors a row of the `products` table. Price is stored
// as a double precision value in the currency's main unit.
type Product struct {
	ID    uint64  // products.id
	Name  string  // products.name
	Price float64 // products.price
}
