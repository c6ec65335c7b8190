package repositories

import (
	"context"
	"time"

	"github.com/leadradar/lead-radar-api/internal/domain/entities"
	"gorm.io/gorm"
)

type IVideoAnalysisRepository interface {
	FindAll(ctx context.Context) ([]entities.VideoAnalysis, error)
	FindByID(ctx context.Context, id int) (*entities.VideoAnalysis, error)
	Create(ctx context.Context, analysis *entities.VideoAnalysis) error
	Update(ctx context.Context, id int, updates map[string]interface{}) (*entities.VideoAnalysis, error)
}

type VideoAnalysisRepository struct {
	db *gorm.DB
}

func NewVideoAnalysisRepository(db *gorm.DB) *VideoAnalysisRepository {
	return &VideoAnalysisRepository{db: db}
}

func (r *VideoAnalysisRepository) FindAll(ctx context.Context) ([]entities.VideoAnalysis, error) {
	var analyses []entities.VideoAnalysis
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&analyses).Error
	return analyses, err
}

func (r *VideoAnalysisRepository) FindByID(ctx context.Context, id int) (*entities.VideoAnalysis, error) {
	var analysis entities.VideoAnalysis
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&analysis).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (r *VideoAnalysisRepository) Create(ctx context.Context, analysis *entities.VideoAnalysis) error {
	return r.db.WithContext(ctx).Create(analysis).Error
}

func (r *VideoAnalysisRepository) Update(ctx context.Context, id int, updates map[string]interface{}) (*entities.VideoAnalysis, error) {
	updates["updated_at"] = time.Now()
	if err := r.db.WithContext(ctx).Model(&entities.VideoAnalysis{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}
