package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leadradar/lead-radar-api/internal/domain/entities"
	"github.com/leadradar/lead-radar-api/internal/domain/repositories"
)

var (
	ErrAnalysisNotFound     = errors.New("video analysis not found")
	ErrInvalidVideoAnalysis = errors.New("invalid video analysis data")
)

type AnalysisUseCase struct {
	videoAnalysisRepo repositories.IVideoAnalysisRepository
	analysisRepo      repositories.IAnalysisRepository
}

func NewAnalysisUseCase(videoAnalysisRepo repositories.IVideoAnalysisRepository, analysisRepo repositories.IAnalysisRepository) *AnalysisUseCase {
	return &AnalysisUseCase{
		videoAnalysisRepo: videoAnalysisRepo,
		analysisRepo:      analysisRepo,
	}
}

func (uc *AnalysisUseCase) GetVideoAnalyses(ctx context.Context) ([]entities.VideoAnalysis, error) {
	return uc.videoAnalysisRepo.FindAll(ctx)
}

func (uc *AnalysisUseCase) GetVideoAnalysis(ctx context.Context, id int) (*entities.VideoAnalysis, error) {
	return uc.videoAnalysisRepo.FindByID(ctx, id)
}

func (uc *AnalysisUseCase) CreateVideoAnalysis(ctx context.Context, analysis *entities.VideoAnalysis) (*entities.VideoAnalysis, error) {
	if strings.TrimSpace(analysis.URL) == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidVideoAnalysis)
	}
	if strings.TrimSpace(analysis.Platform) == "" {
		return nil, fmt.Errorf("%w: platform is required", ErrInvalidVideoAnalysis)
	}
	if analysis.Status == "" {
		analysis.Status = entities.AnalysisStatusPending
	}
	if err := uc.videoAnalysisRepo.Create(ctx, analysis); err != nil {
		return nil, err
	}
	return analysis, nil
}

// videoAnalysisColumns maps the updatable JSON field names to their
// database columns. Anything outside this set is rejected, never passed
// through as a column name.
var videoAnalysisColumns = map[string]string{
	"url":       "url",
	"platform":  "platform",
	"title":     "title",
	"summary":   "summary",
	"leadCount": "lead_count",
	"status":    "status",
}

// UpdateVideoAnalysis applies a partial update, used when results for a
// submitted URL come back from the workflow.
func (uc *AnalysisUseCase) UpdateVideoAnalysis(ctx context.Context, id int, updates map[string]interface{}) (*entities.VideoAnalysis, error) {
	existing, err := uc.videoAnalysisRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: %d", ErrAnalysisNotFound, id)
	}

	columns := make(map[string]interface{}, len(updates))
	for field, value := range updates {
		column, ok := videoAnalysisColumns[field]
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidVideoAnalysis, field)
		}
		columns[column] = value
	}
	if len(columns) == 0 {
		return existing, nil
	}

	return uc.videoAnalysisRepo.Update(ctx, id, columns)
}

func (uc *AnalysisUseCase) GetAnalyses(ctx context.Context) ([]entities.Analysis, error) {
	return uc.analysisRepo.FindAll(ctx)
}

func (uc *AnalysisUseCase) GetAnalysesBySession(ctx context.Context, sessionID string) ([]entities.Analysis, error) {
	return uc.analysisRepo.FindBySession(ctx, sessionID)
}
