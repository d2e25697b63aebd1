package models

import (
	"time"

	"github.com/google/uuid"
)

// ProposalExport represents a stored export of a user's proposal history
type ProposalExport struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"-"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}
