package transport

import "time"

// Wire shapes shared by the entry engine's clients and the store's handlers.

type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// OrderLine carries the price and stock snapshots frozen at selection time,
// not live catalog values.
type OrderLine struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
}

type Order struct {
	ID           string      `json:"id,omitempty"`
	CustomerName string      `json:"customerName"`
	Email        string      `json:"email"`
	Lines        []OrderLine `json:"products"`
	Total        float64     `json:"total"`
	OrderCode    string      `json:"orderCode"`
	Timestamp    time.Time   `json:"timestamp"`
}

// OrderHistoryRecord is the read-only view served by GET /orders?email=
// and consumed by the rate-limit checker.
type OrderHistoryRecord struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}
