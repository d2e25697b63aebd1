package models

import (
	"time"

	"github.com/google/uuid"
)

// Plan represents a subscription plan
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// DailyGenerationLimit returns the per-day generation ceiling for a plan
func (p Plan) DailyGenerationLimit() int {
	if p == PlanPro {
		return 10
	}
	return 1
}

// UserProfile represents the freelancer profile embedded in a user.
// All fields are free text and optional.
type UserProfile struct {
	Skill      string `json:"skill"`
	Niche      string `json:"niche"`
	Platform   string `json:"platform"`
	Experience string `json:"experience"`
}

// User represents a user entity
type User struct {
	ID            uuid.UUID   `json:"id"`
	Email         string      `json:"email"`
	PasswordHash  string      `json:"-"` // Never serialize password hash
	Plan          Plan        `json:"plan"`
	Profile       UserProfile `json:"profile"`
	DailyUsage    int         `json:"daily_usage"`
	LastUsageDate string      `json:"last_usage_date"` // YYYY-MM-DD
	CreatedAt     time.Time   `json:"created_at"`
}
