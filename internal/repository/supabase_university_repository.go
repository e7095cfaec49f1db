package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	supa "github.com/nedpals/supabase-go"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/unitrack-api/internal/models"
)

// SupabaseUniversityRepository reaches the universities table through the
// backend's REST interface. Ownership is enforced with a user_id filter on
// every request, independent of any row-level policy on the backend.
type SupabaseUniversityRepository struct {
	client *supa.Client
	table  string
	now    func() time.Time
}

// universityPatch is the update body; identity columns are never sent.
type universityPatch struct {
	Name                  string                   `json:"name"`
	Country               string                   `json:"country"`
	Deadline              models.Date              `json:"deadline"`
	ScholarshipPercentage float64                  `json:"scholarship_percentage"`
	ApplicationFees       decimal.Decimal          `json:"application_fees"`
	Notes                 string                   `json:"notes"`
	Status                models.ApplicationStatus `json:"status"`
	UpdatedAt             time.Time                `json:"updated_at"`
}

// NewSupabaseUniversityRepository constructs the backend-backed record store.
func NewSupabaseUniversityRepository(client *supa.Client, table string) *SupabaseUniversityRepository {
	if table == "" {
		table = "universities"
	}
	return &SupabaseUniversityRepository{client: client, table: table, now: time.Now}
}

// ListByUser returns the caller's records, newest first.
func (r *SupabaseUniversityRepository) ListByUser(ctx context.Context, userID string) ([]models.University, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var universities []models.University
	err := r.client.DB.From(r.table).Select("*").OrderBy("created_at", "desc").Eq("user_id", userID).ExecuteWithContext(ctx, &universities)
	if err != nil {
		return nil, fmt.Errorf("list universities: %w", err)
	}
	return universities, nil
}

// FindByID returns sql.ErrNoRows when the record is absent or foreign.
func (r *SupabaseUniversityRepository) FindByID(ctx context.Context, id, userID string) (*models.University, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var universities []models.University
	if err := r.client.DB.From(r.table).Select("*").Eq("id", id).Eq("user_id", userID).ExecuteWithContext(ctx, &universities); err != nil {
		return nil, fmt.Errorf("get university: %w", err)
	}
	if len(universities) == 0 {
		return nil, fmt.Errorf("get university: %w", sql.ErrNoRows)
	}
	return &universities[0], nil
}

// Create inserts a new record, assigning id and timestamps.
func (r *SupabaseUniversityRepository) Create(ctx context.Context, u *models.University) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := r.now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	var created []models.University
	if err := r.client.DB.From(r.table).Insert(u).ExecuteWithContext(ctx, &created); err != nil {
		return fmt.Errorf("create university: %w", err)
	}
	if len(created) > 0 {
		*u = created[0]
	}
	return nil
}

// Update writes the mutable fields of u, scoped by id and user_id.
func (r *SupabaseUniversityRepository) Update(ctx context.Context, u *models.University) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.UpdatedAt = r.now().UTC()
	patch := universityPatch{
		Name:                  u.Name,
		Country:               u.Country,
		Deadline:              u.Deadline,
		ScholarshipPercentage: u.ScholarshipPercentage,
		ApplicationFees:       u.ApplicationFees,
		Notes:                 u.Notes,
		Status:                u.Status,
		UpdatedAt:             u.UpdatedAt,
	}

	var updated []models.University
	if err := r.client.DB.From(r.table).Update(patch).Eq("id", u.ID).Eq("user_id", u.UserID).ExecuteWithContext(ctx, &updated); err != nil {
		return fmt.Errorf("update university: %w", err)
	}
	if len(updated) == 0 {
		return fmt.Errorf("update university: %w", sql.ErrNoRows)
	}
	*u = updated[0]
	return nil
}

// Delete removes the record. The delete builder does not ask the backend to
// echo removed rows, so an owned-row lookup runs first to tell a foreign or
// missing id apart from a real delete.
func (r *SupabaseUniversityRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	if _, err := r.FindByID(ctx, id, userID); err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, err
	}
	var deleted []models.University
	if err := r.client.DB.From(r.table).Delete().Eq("id", id).Eq("user_id", userID).ExecuteWithContext(ctx, &deleted); err != nil {
		return false, fmt.Errorf("delete university: %w", err)
	}
	return true, nil
}
