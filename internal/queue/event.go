// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderEventsQueue is the durable queue carrying OrderEvent messages.
const OrderEventsQueue = "order.events"

// Order event types.
const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
)

// OrderEvent is published after an order is placed or changes status. It
// carries enough for the notifier to e-mail the customer without reading
// the primary database.
type OrderEvent struct {
	Type          string `json:"type"`
	OrderID       string `json:"order_id"`
	OrderNumber   string `json:"order_number"`
	TenantID      string `json:"tenant_id"`
	TenantName    string `json:"tenant_name"`
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	Status        string `json:"status"`
	Total         string `json:"total"`
	Currency      string `json:"currency"`
	OccurredAt    string `json:"occurred_at"`
}
