package models

import (
	"github.com/google/uuid"
)

// IncomeRecord represents a logged payment from a client
type IncomeRecord struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	Amount   float64   `json:"amount"`
	Client   string    `json:"client"`
	Platform string    `json:"platform"`
	Date     string    `json:"date"` // YYYY-MM-DD
}

// MonthlyTotal represents aggregated income for one calendar month
type MonthlyTotal struct {
	Month string  `json:"month"` // YYYY-MM
	Total float64 `json:"total"`
}
