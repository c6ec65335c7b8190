package repositories

import (
	"context"

	"github.com/leadradar/lead-radar-api/internal/domain/entities"
	"gorm.io/gorm"
)

type IAnalysisRepository interface {
	FindAll(ctx context.Context) ([]entities.Analysis, error)
	FindByID(ctx context.Context, id int) (*entities.Analysis, error)
	FindBySession(ctx context.Context, sessionID string) ([]entities.Analysis, error)
	CountBySession(ctx context.Context, sessionID string) (int64, error)
	Create(ctx context.Context, analysis *entities.Analysis) error
	Update(ctx context.Context, id int, updates map[string]interface{}) (*entities.Analysis, error)
}

type AnalysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) FindAll(ctx context.Context) ([]entities.Analysis, error) {
	var analyses []entities.Analysis
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&analyses).Error
	return analyses, err
}

func (r *AnalysisRepository) FindByID(ctx context.Context, id int) (*entities.Analysis, error) {
	var analysis entities.Analysis
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&analysis).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (r *AnalysisRepository) FindBySession(ctx context.Context, sessionID string) ([]entities.Analysis, error) {
	var analyses []entities.Analysis
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Find(&analyses).Error
	return analyses, err
}

func (r *AnalysisRepository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Analysis{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

func (r *AnalysisRepository) Create(ctx context.Context, analysis *entities.Analysis) error {
	return r.db.WithContext(ctx).Create(analysis).Error
}

func (r *AnalysisRepository) Update(ctx context.Context, id int, updates map[string]interface{}) (*entities.Analysis, error) {
	if err := r.db.WithContext(ctx).Model(&entities.Analysis{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}
