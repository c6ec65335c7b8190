package repositories

import (
	"context"

	"github.com/leadradar/lead-radar-api/internal/domain/entities"
	"gorm.io/gorm"
)

type ILeadRepository interface {
	FindAll(ctx context.Context) ([]entities.Lead, error)
	FindByVideoAnalysis(ctx context.Context, videoAnalysisID int) ([]entities.Lead, error)
	FindBySession(ctx context.Context, sessionID string) ([]entities.Lead, error)
	Create(ctx context.Context, lead *entities.Lead) error
	CreateMany(ctx context.Context, leads []entities.Lead) ([]entities.Lead, error)
	AssociateWithSession(ctx context.Context, sessionID string, leadIDs []int) (int64, error)
	DeleteBySession(ctx context.Context, sessionID string) (int64, error)
}

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) FindAll(ctx context.Context) ([]entities.Lead, error) {
	var leads []entities.Lead
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&leads).Error
	return leads, err
}

func (r *LeadRepository) FindByVideoAnalysis(ctx context.Context, videoAnalysisID int) ([]entities.Lead, error) {
	var leads []entities.Lead
	err := r.db.WithContext(ctx).
		Where("video_analysis_id = ?", videoAnalysisID).
		Find(&leads).Error
	return leads, err
}

func (r *LeadRepository) FindBySession(ctx context.Context, sessionID string) ([]entities.Lead, error) {
	var leads []entities.Lead
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Find(&leads).Error
	return leads, err
}

func (r *LeadRepository) Create(ctx context.Context, lead *entities.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *LeadRepository) CreateMany(ctx context.Context, leads []entities.Lead) ([]entities.Lead, error) {
	if len(leads) == 0 {
		return []entities.Lead{}, nil
	}
	err := r.db.WithContext(ctx).Create(&leads).Error
	return leads, err
}

// AssociateWithSession re-parents existing lead rows onto a session.
func (r *LeadRepository) AssociateWithSession(ctx context.Context, sessionID string, leadIDs []int) (int64, error) {
	if len(leadIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&entities.Lead{}).
		Where("id IN ?", leadIDs).
		Update("session_id", sessionID)
	return result.RowsAffected, result.Error
}

func (r *LeadRepository) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&entities.Lead{})
	return result.RowsAffected, result.Error
}
