package model

import "time"

// Order is the header row of a placed order. Line items live in
// the order_products table and the total price is never stored;
// it is recomputed from the joined product prices on every read.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who placed the order.
//  CreatedAt – creation timestamp (UTC).
type Order struct {
	ID        uint64    // orders.id
	UserID    uint64    // orders.user_id
	CreatedAt time.Time // orders.created_at
}

// OrderProduct associates an order with a product and a quantity.
// (OrderID, ProductID) is the composite primary key and quantity
// must be positive.
type OrderProduct struct {
	OrderID   uint64 // order_products.order_id
	ProductID uint64 // order_products.product_id
	Quantity  uint32 // order_products.quantity
}
