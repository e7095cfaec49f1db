package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/unitrack-api/internal/models"
	appErrors "github.com/noah-isme/unitrack-api/pkg/errors"
)

// Fixed messages for calls made without an authenticated user.
const (
	msgLoginToView   = "You must be logged in to view universities"
	msgLoginToAdd    = "You must be logged in to add a university"
	msgLoginToUpdate = "You must be logged in to update a university"
	msgLoginToDelete = "You must be logged in to delete a university"
)

// UniversityStore is implemented by both record store drivers.
type UniversityStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.University, error)
	FindByID(ctx context.Context, id, userID string) (*models.University, error)
	Create(ctx context.Context, u *models.University) error
	Update(ctx context.Context, u *models.University) error
	Delete(ctx context.Context, id, userID string) (bool, error)
}

// UniversityService is the record store facade used by every view. All
// operations are scoped to the calling user.
type UniversityService struct {
	store   UniversityStore
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewUniversityService constructs the service.
func NewUniversityService(store UniversityStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *UniversityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UniversityService{store: store, cache: cache, metrics: metrics, logger: logger}
}

// List returns the caller's records, newest first.
func (s *UniversityService) List(ctx context.Context, userID string) ([]models.University, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, msgLoginToView)
	}
	start := time.Now()
	items, err := s.store.ListByUser(ctx, userID)
	s.metrics.ObserveStoreCall("list", time.Since(start), err)
	if err != nil {
		return nil, s.storeError(err, "list", userID)
	}
	if items == nil {
		items = []models.University{}
	}
	return items, nil
}

// Get returns one record owned by the caller.
func (s *UniversityService) Get(ctx context.Context, id, userID string) (*models.University, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, msgLoginToView)
	}
	start := time.Now()
	u, err := s.store.FindByID(ctx, id, userID)
	s.metrics.ObserveStoreCall("get", time.Since(start), err)
	if err != nil {
		return nil, s.storeError(err, "get", userID)
	}
	return u, nil
}

// Create inserts a record owned by userID.
func (s *UniversityService) Create(ctx context.Context, userID string, changes models.UniversityChanges) (*models.University, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, msgLoginToAdd)
	}
	u := &models.University{UserID: userID}
	changes.Apply(u)
	if u.Status == "" {
		u.Status = models.DefaultStatus
	}

	start := time.Now()
	err := s.store.Create(ctx, u)
	s.metrics.ObserveStoreCall("insert", time.Since(start), err)
	if err != nil {
		return nil, s.storeError(err, "insert", userID)
	}
	s.invalidate(ctx, userID)
	return u, nil
}

// Update replaces the mutable fields of a record owned by userID.
func (s *UniversityService) Update(ctx context.Context, id, userID string, changes models.UniversityChanges) (*models.University, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, msgLoginToUpdate)
	}
	u := &models.University{ID: id, UserID: userID}
	changes.Apply(u)
	if u.Status == "" {
		u.Status = models.DefaultStatus
	}

	start := time.Now()
	err := s.store.Update(ctx, u)
	s.metrics.ObserveStoreCall("update", time.Since(start), err)
	if err != nil {
		return nil, s.storeError(err, "update", userID)
	}
	s.invalidate(ctx, userID)
	return u, nil
}

// Delete removes a record only after the store confirms it. Missing or
// foreign records report not found and nothing changes.
func (s *UniversityService) Delete(ctx context.Context, id, userID string) error {
	if userID == "" {
		return appErrors.Clone(appErrors.ErrUnauthorized, msgLoginToDelete)
	}
	start := time.Now()
	deleted, err := s.store.Delete(ctx, id, userID)
	s.metrics.ObserveStoreCall("delete", time.Since(start), err)
	if err != nil {
		return s.storeError(err, "delete", userID)
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "university not found")
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *UniversityService) storeError(err error, op, userID string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "university not found")
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	s.logger.Warn("record store call failed", zap.String("operation", op), zap.String("user_id", userID), zap.Error(err))
	return appErrors.Backend(err)
}

func (s *UniversityService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.logger.Warn("failed to invalidate cached views", zap.String("user_id", userID), zap.Error(err))
	}
}
