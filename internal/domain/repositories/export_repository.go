package repositories

import (
	"context"
	"time"

	"github.com/leadradar/lead-radar-api/internal/domain/entities"
	"gorm.io/gorm"
)

type IExportRepository interface {
	FindAll(ctx context.Context) ([]entities.Export, error)
	FindByID(ctx context.Context, id int) (*entities.Export, error)
	FindBySession(ctx context.Context, sessionID string) ([]entities.Export, error)
	CountBySession(ctx context.Context, sessionID string) (int64, error)
	Create(ctx context.Context, export *entities.Export) error
	UpdateStatus(ctx context.Context, id int, status string, completedAt *time.Time) (*entities.Export, error)
}

type ExportRepository struct {
	db *gorm.DB
}

func NewExportRepository(db *gorm.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

func (r *ExportRepository) FindAll(ctx context.Context) ([]entities.Export, error) {
	var exports []entities.Export
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&exports).Error
	return exports, err
}

func (r *ExportRepository) FindByID(ctx context.Context, id int) (*entities.Export, error) {
	var export entities.Export
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&export).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &export, nil
}

func (r *ExportRepository) FindBySession(ctx context.Context, sessionID string) ([]entities.Export, error) {
	var exports []entities.Export
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Find(&exports).Error
	return exports, err
}

func (r *ExportRepository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Export{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

func (r *ExportRepository) Create(ctx context.Context, export *entities.Export) error {
	return r.db.WithContext(ctx).Create(export).Error
}

// UpdateStatus sets the export's terminal status. When the export is
// completing and no explicit timestamp is given, completedAt is stamped
// with the current time.
func (r *ExportRepository) UpdateStatus(ctx context.Context, id int, status string, completedAt *time.Time) (*entities.Export, error) {
	updates := map[string]interface{}{"status": status}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	} else if status == entities.ExportStatusCompleted {
		updates["completed_at"] = time.Now()
	}
	if err := r.db.WithContext(ctx).Model(&entities.Export{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}
