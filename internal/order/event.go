package order

import "time"

// EventOrderCreated is published after an order was stored
const EventOrderCreated = "order.created"

// Event is a message on the order event feed
type Event struct {
	Type        string    `json:"type"`
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	ParentID    string    `json:"parentId"`
	Lines       []Line    `json:"lines"`
	CreatedAt   time.Time `json:"createdAt"`
}
