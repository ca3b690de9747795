package models

// OrderFilter selects orders for listing. An empty AirportIcao means no airport filter.
type OrderFilter struct {
	AirportIcao string       `json:"airportIcao"`
	TailNumber  string       `json:"tailNumber,omitempty"`
	Status      *OrderStatus `json:"status,omitempty"`
}

// PageRequest selects a zero-based window of Size items.
type PageRequest struct {
	Page int
	Size int
}

const DefaultPageSize = 10

// Page is a window over an ordered result set.
type Page[T any] struct {
	Content       []T `json:"content"`
	Page          int `json:"page"`
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
}
