// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderPlacedItem is one line item of a placed order as carried in events.
type OrderPlacedItem struct {
	ProductID uint64 `json:"product_id"`
	Quantity  uint32 `json:"quantity"`
}

// OrderPlacedEvent is published after an order has been committed. It
// carries enough information for downstream consumers to log, notify or
// feed analytics without querying the primary database.
type OrderPlacedEvent struct {
	OrderID    uint64            `json:"order_id"`
	UserID     uint64            `json:"user_id"`
	Items      []OrderPlacedItem `json:"items"`
	TotalPrice float64           `json:"total_price"`
	PlacedAt   string            `json:"placed_at"`
}
