package repository

import (
	"context"

	"replyboost-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExportRepository handles database operations for proposal exports
type ExportRepository struct {
	db *pgxpool.Pool
}

// NewExportRepository creates a new export repository
func NewExportRepository(db *pgxpool.Pool) *ExportRepository {
	return &ExportRepository{db: db}
}

// Create records a stored export
func (r *ExportRepository) Create(ctx context.Context, export *models.ProposalExport) error {
	query := `
		INSERT INTO proposal_exports (id, user_id, filename, storage_path, size_bytes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	return r.db.QueryRow(
		ctx, query,
		export.ID,
		export.UserID,
		export.Filename,
		export.StoragePath,
		export.SizeBytes,
	).Scan(&export.CreatedAt)
}

// GetByIDForUser retrieves an export by ID, scoped to its owner
func (r *ExportRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.ProposalExport, error) {
	export := &models.ProposalExport{}
	query := `
		SELECT id, user_id, filename, storage_path, size_bytes, created_at
		FROM proposal_exports
		WHERE id = $1 AND user_id = $2`

	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&export.ID,
		&export.UserID,
		&export.Filename,
		&export.StoragePath,
		&export.SizeBytes,
		&export.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return export, nil
}
