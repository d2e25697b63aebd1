package repository

import (
	"context"

	"replyboost-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IncomeRepository handles database operations for income records
type IncomeRepository struct {
	db *pgxpool.Pool
}

// NewIncomeRepository creates a new income repository
func NewIncomeRepository(db *pgxpool.Pool) *IncomeRepository {
	return &IncomeRepository{db: db}
}

// Create creates a new income record
func (r *IncomeRepository) Create(ctx context.Context, record *models.IncomeRecord) error {
	query := `
		INSERT INTO income_records (user_id, amount, client, platform, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return r.db.QueryRow(
		ctx, query,
		record.UserID,
		record.Amount,
		record.Client,
		record.Platform,
		record.Date,
	).Scan(&record.ID)
}

// ListByUserID retrieves all income records for a user, newest first
func (r *IncomeRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.IncomeRecord, error) {
	query := `
		SELECT id, user_id, amount, client, platform, date
		FROM income_records
		WHERE user_id = $1
		ORDER BY date DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.IncomeRecord
	for rows.Next() {
		record := &models.IncomeRecord{}
		err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Amount,
			&record.Client,
			&record.Platform,
			&record.Date,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// MonthlyTotals aggregates income per calendar month, oldest first
func (r *IncomeRepository) MonthlyTotals(ctx context.Context, userID uuid.UUID) ([]models.MonthlyTotal, error) {
	query := `
		SELECT substr(date, 1, 7) AS month, SUM(amount)
		FROM income_records
		WHERE user_id = $1
		GROUP BY month
		ORDER BY month`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]models.MonthlyTotal, 0)
	for rows.Next() {
		var mt models.MonthlyTotal
		if err := rows.Scan(&mt.Month, &mt.Total); err != nil {
			return nil, err
		}
		totals = append(totals, mt)
	}

	return totals, rows.Err()
}
