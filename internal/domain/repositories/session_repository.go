package repositories

import (
	"context"
	"time"

	"github.com/leadradar/lead-radar-api/internal/domain/entities"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ISessionRepository interface {
	Create(ctx context.Context, session *entities.Session) error
	FindByID(ctx context.Context, id string) (*entities.Session, error)
	UpdateActivity(ctx context.Context, id string) (*entities.Session, error)
	UpdateMetadata(ctx context.Context, id string, metadata datatypes.JSONMap) (*entities.Session, error)
	Expire(ctx context.Context, id string) error
	FindActive(ctx context.Context) ([]entities.Session, error)
	FindByRecentActivity(ctx context.Context, ids []string) ([]entities.Session, error)
	ExpireInactiveSince(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteExpiredSince(ctx context.Context, cutoff time.Time) (int64, error)
}

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *entities.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// FindByID returns (nil, nil) when the session does not exist. Missing
// rows are an expected condition here, never an error.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*entities.Session, error) {
	var session entities.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) UpdateActivity(ctx context.Context, id string) (*entities.Session, error) {
	result := r.db.WithContext(ctx).Model(&entities.Session{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_activity": time.Now(),
			"status":        entities.SessionStatusActive,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *SessionRepository) UpdateMetadata(ctx context.Context, id string, metadata datatypes.JSONMap) (*entities.Session, error) {
	result := r.db.WithContext(ctx).Model(&entities.Session{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"metadata":      metadata,
			"last_activity": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *SessionRepository) Expire(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&entities.Session{}).
		Where("id = ?", id).
		Update("status", entities.SessionStatusExpired).Error
}

func (r *SessionRepository) FindActive(ctx context.Context) ([]entities.Session, error) {
	var sessions []entities.Session
	err := r.db.WithContext(ctx).
		Where("status = ?", entities.SessionStatusActive).
		Order("last_activity DESC").
		Find(&sessions).Error
	return sessions, err
}

// FindByRecentActivity returns the given sessions (or all of them when
// ids is empty) ordered by most recent activity first.
func (r *SessionRepository) FindByRecentActivity(ctx context.Context, ids []string) ([]entities.Session, error) {
	var sessions []entities.Session
	query := r.db.WithContext(ctx).Order("last_activity DESC")
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	err := query.Find(&sessions).Error
	return sessions, err
}

// ExpireInactiveSince marks active sessions whose last activity predates
// cutoff as expired and returns how many rows changed.
func (r *SessionRepository) ExpireInactiveSince(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entities.Session{}).
		Where("last_activity < ? AND status = ?", cutoff, entities.SessionStatusActive).
		Update("status", entities.SessionStatusExpired)
	return result.RowsAffected, result.Error
}

// DeleteExpiredSince permanently removes already-expired sessions whose
// last activity predates cutoff.
func (r *SessionRepository) DeleteExpiredSince(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("last_activity < ? AND status = ?", cutoff, entities.SessionStatusExpired).
		Delete(&entities.Session{})
	return result.RowsAffected, result.Error
}
