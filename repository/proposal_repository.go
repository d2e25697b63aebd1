package repository

import (
	"context"
	"time"

	"replyboost-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProposalRepository handles database operations for proposals
type ProposalRepository struct {
	db *pgxpool.Pool
}

// NewProposalRepository creates a new proposal repository
func NewProposalRepository(db *pgxpool.Pool) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create creates a new proposal
func (r *ProposalRepository) Create(ctx context.Context, proposal *models.Proposal) error {
	query := `
		INSERT INTO proposals (
			user_id, job_description, full_job_description, proposal_text,
			platform, framework, score, score_breakdown, signals, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING id, created_at`

	return r.db.QueryRow(
		ctx, query,
		proposal.UserID,
		proposal.JobDescription,
		proposal.FullJobDescription,
		proposal.ProposalText,
		proposal.Platform,
		proposal.Framework,
		proposal.Score,
		proposal.ScoreBreakdown,
		proposal.Signals,
		proposal.Status,
	).Scan(&proposal.ID, &proposal.CreatedAt)
}

// ListByUserID retrieves all proposals for a user, newest first
func (r *ProposalRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Proposal, error) {
	query := `
		SELECT id, user_id, job_description, full_job_description, proposal_text,
			platform, framework, score, score_breakdown, signals, status, created_at
		FROM proposals
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proposals []*models.Proposal
	for rows.Next() {
		proposal := &models.Proposal{}
		err := rows.Scan(
			&proposal.ID,
			&proposal.UserID,
			&proposal.JobDescription,
			&proposal.FullJobDescription,
			&proposal.ProposalText,
			&proposal.Platform,
			&proposal.Framework,
			&proposal.Score,
			&proposal.ScoreBreakdown,
			&proposal.Signals,
			&proposal.Status,
			&proposal.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, proposal)
	}

	return proposals, rows.Err()
}

// UpdateStatus updates the status of a proposal owned by a user.
// It returns false when no matching proposal exists.
func (r *ProposalRepository) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status models.ProposalStatus) (bool, error) {
	query := `UPDATE proposals SET status = $3 WHERE id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, id, userID, status)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// CountByStatus returns the number of proposals per status for a user
func (r *ProposalRepository) CountByStatus(ctx context.Context, userID uuid.UUID) (map[models.ProposalStatus]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM proposals
		WHERE user_id = $1
		GROUP BY status`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.ProposalStatus]int)
	for rows.Next() {
		var status models.ProposalStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

// DailyCounts returns per-day generation counts for a user since a date
func (r *ProposalRepository) DailyCounts(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.DailyCount, error) {
	query := `
		SELECT to_char(created_at::date, 'YYYY-MM-DD'), COUNT(*)
		FROM proposals
		WHERE user_id = $1 AND created_at >= $2
		GROUP BY created_at::date
		ORDER BY created_at::date`

	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]models.DailyCount, 0)
	for rows.Next() {
		var dc models.DailyCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, dc)
	}

	return counts, rows.Err()
}
