package service

import (
	"context"
	"time"

	"replyboost-backend/models"

	"github.com/google/uuid"
)

// UserStore is the persistence contract for users
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, profile models.UserProfile) error
	ReserveDailyUsage(ctx context.Context, id uuid.UUID, day string, limit int) (int, bool, error)
	RefundDailyUsage(ctx context.Context, id uuid.UUID, day string) error
}

// ProposalStore is the persistence contract for proposals
type ProposalStore interface {
	Create(ctx context.Context, proposal *models.Proposal) error
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Proposal, error)
	UpdateStatus(ctx context.Context, id, userID uuid.UUID, status models.ProposalStatus) (bool, error)
	CountByStatus(ctx context.Context, userID uuid.UUID) (map[models.ProposalStatus]int, error)
	DailyCounts(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.DailyCount, error)
}

// IncomeStore is the persistence contract for income records
type IncomeStore interface {
	Create(ctx context.Context, record *models.IncomeRecord) error
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.IncomeRecord, error)
	MonthlyTotals(ctx context.Context, userID uuid.UUID) ([]models.MonthlyTotal, error)
}

// ExportStore is the persistence contract for proposal exports
type ExportStore interface {
	Create(ctx context.Context, export *models.ProposalExport) error
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.ProposalExport, error)
}

// today returns the current UTC day as YYYY-MM-DD, the granularity at
// which daily quotas reset
func today() string {
	return time.Now().UTC().Format("2006-01-02")
}
