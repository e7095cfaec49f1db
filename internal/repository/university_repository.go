package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/unitrack-api/internal/models"
)

const universityColumns = `id, user_id, name, country, deadline, scholarship_percentage, application_fees, COALESCE(notes, '') AS notes, status, created_at, updated_at`

// UniversityRepository reads and writes the universities table directly.
// Every statement is scoped by user_id.
type UniversityRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewUniversityRepository constructs a Postgres-backed record store.
func NewUniversityRepository(db *sqlx.DB) *UniversityRepository {
	return &UniversityRepository{db: db, now: time.Now}
}

// ListByUser returns the caller's records, newest first.
func (r *UniversityRepository) ListByUser(ctx context.Context, userID string) ([]models.University, error) {
	query := fmt.Sprintf("SELECT %s FROM universities WHERE user_id = $1 ORDER BY created_at DESC", universityColumns)
	var universities []models.University
	if err := r.db.SelectContext(ctx, &universities, query, userID); err != nil {
		return nil, fmt.Errorf("list universities: %w", err)
	}
	return universities, nil
}

// FindByID returns the record when it exists and belongs to userID.
func (r *UniversityRepository) FindByID(ctx context.Context, id, userID string) (*models.University, error) {
	query := fmt.Sprintf("SELECT %s FROM universities WHERE id = $1 AND user_id = $2", universityColumns)
	var university models.University
	if err := r.db.GetContext(ctx, &university, query, id, userID); err != nil {
		return nil, fmt.Errorf("get university: %w", err)
	}
	return &university, nil
}

// Create inserts a new record, assigning id and timestamps.
func (r *UniversityRepository) Create(ctx context.Context, u *models.University) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := r.now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	const query = `INSERT INTO universities (id, user_id, name, country, deadline, scholarship_percentage, application_fees, notes, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := r.db.ExecContext(ctx, query,
		u.ID, u.UserID, u.Name, u.Country, u.Deadline, u.ScholarshipPercentage, u.ApplicationFees, u.Notes, u.Status, u.CreatedAt, u.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create university: %w", err)
	}
	return nil
}

// Update writes the mutable fields of u. It returns sql.ErrNoRows when no
// record matches both id and user_id.
func (r *UniversityRepository) Update(ctx context.Context, u *models.University) error {
	u.UpdatedAt = r.now().UTC()

	const query = `UPDATE universities SET name = $1, country = $2, deadline = $3, scholarship_percentage = $4, application_fees = $5, notes = $6, status = $7, updated_at = $8
WHERE id = $9 AND user_id = $10`
	res, err := r.db.ExecContext(ctx, query,
		u.Name, u.Country, u.Deadline, u.ScholarshipPercentage, u.ApplicationFees, u.Notes, u.Status, u.UpdatedAt, u.ID, u.UserID,
	)
	if err != nil {
		return fmt.Errorf("update university: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update university rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update university: %w", sql.ErrNoRows)
	}
	return nil
}

// Delete removes the record and reports whether anything was deleted.
func (r *UniversityRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM universities WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete university: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete university rows: %w", err)
	}
	return affected > 0, nil
}
