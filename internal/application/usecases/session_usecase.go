package usecases

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/leadradar/lead-radar-api/internal/domain/entities"
	"github.com/leadradar/lead-radar-api/internal/domain/repositories"
	"github.com/leadradar/lead-radar-api/internal/infrastructure/cache"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionSummary aggregates one session's lead activity.
type SessionSummary struct {
	SessionID         string          `json:"sessionId"`
	TotalLeads        int             `json:"totalLeads"`
	AverageConfidence int             `json:"averageConfidence"`
	TopPlatforms      []PlatformCount `json:"topPlatforms"`
	AnalysisCount     int64           `json:"analysisCount"`
	ExportCount       int64           `json:"exportCount"`
	CreatedAt         time.Time       `json:"createdAt"`
	LastActivity      time.Time       `json:"lastActivity"`
	Status            string          `json:"status"`
}

type PlatformCount struct {
	Platform string `json:"platform"`
	Count    int    `json:"count"`
}

// SessionExportData is the full per-session dataset handed to exports.
type SessionExportData struct {
	Session  SessionInfo         `json:"session"`
	Leads    []entities.Lead     `json:"leads"`
	Analyses []entities.Analysis `json:"analyses"`
	Exports  []entities.Export   `json:"exports"`
	Summary  SessionSummary      `json:"summary"`
}

type SessionInfo struct {
	ID           string            `json:"id"`
	CreatedAt    time.Time         `json:"createdAt"`
	LastActivity time.Time         `json:"lastActivity"`
	Status       string            `json:"status"`
	UserEmail    *string           `json:"userEmail,omitempty"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty"`
}

type CleanupResult struct {
	ExpiredCount int64 `json:"expiredCount"`
	DeletedCount int64 `json:"deletedCount"`
}

// AnalysisInput carries one workflow result to attach to a session.
type AnalysisInput struct {
	VideoURL       string         `json:"videoUrl"`
	Platform       string         `json:"platform"`
	Summary        string         `json:"summary,omitempty"`
	Insights       datatypes.JSON `json:"insights,omitempty"`
	Sentiment      string         `json:"sentiment,omitempty"`
	SentimentScore *float64       `json:"sentimentScore,omitempty"`
	TotalComments  *int           `json:"totalComments,omitempty"`
	LeadsFound     *int           `json:"leadsFound,omitempty"`
	RawData        datatypes.JSON `json:"rawData,omitempty"`
}

// fastStats is the minimal projection kept in the polling tier.
type fastStats struct {
	sessionID     string
	totalLeads    int
	analysisCount int64
	lastUpdate    time.Time
}

// SessionUseCase is the sole authority over session lifecycle, summary
// computation and the three cache tiers.
type SessionUseCase struct {
	sessionRepo  repositories.ISessionRepository
	leadRepo     repositories.ILeadRepository
	analysisRepo repositories.IAnalysisRepository
	exportRepo   repositories.IExportRepository
	tiers        *cache.SessionTiers
}

func NewSessionUseCase(
	sessionRepo repositories.ISessionRepository,
	leadRepo repositories.ILeadRepository,
	analysisRepo repositories.IAnalysisRepository,
	exportRepo repositories.IExportRepository,
	tiers *cache.SessionTiers,
) *SessionUseCase {
	return &SessionUseCase{
		sessionRepo:  sessionRepo,
		leadRepo:     leadRepo,
		analysisRepo: analysisRepo,
		exportRepo:   exportRepo,
		tiers:        tiers,
	}
}

// CreateSession generates a fresh session row. Neither input is
// mandatory; anonymous sessions carry no email and no metadata.
func (uc *SessionUseCase) CreateSession(ctx context.Context, userEmail *string, metadata datatypes.JSONMap) (*entities.Session, error) {
	now := time.Now()
	session := &entities.Session{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		LastActivity: now,
		Status:       entities.SessionStatusActive,
		UserEmail:    userEmail,
		Metadata:     metadata,
	}
	if err := uc.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// GetSession is a cache-first read. Returns (nil, nil) when the session
// does not exist.
func (uc *SessionUseCase) GetSession(ctx context.Context, sessionID string) (*entities.Session, error) {
	if cached, found := uc.tiers.Session.Get(sessionID); found {
		return cached.(*entities.Session), nil
	}

	session, err := uc.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session != nil {
		uc.tiers.Session.Set(sessionID, session)
	}
	return session, nil
}

// UpdateSessionActivity bumps lastActivity and re-activates the row.
// The session middleware skips this for polling GETs to avoid write
// amplification.
func (uc *SessionUseCase) UpdateSessionActivity(ctx context.Context, sessionID string) (*entities.Session, error) {
	session, err := uc.sessionRepo.UpdateActivity(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session != nil {
		uc.tiers.Session.Set(sessionID, session)
	}
	return session, nil
}

// UpdateSessionMetadata merges the patch into the session's metadata and
// bumps activity.
func (uc *SessionUseCase) UpdateSessionMetadata(ctx context.Context, sessionID string, patch map[string]interface{}) (*entities.Session, error) {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	merged := datatypes.JSONMap{}
	for k, v := range session.Metadata {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}

	updated, err := uc.sessionRepo.UpdateMetadata(ctx, sessionID, merged)
	if err != nil {
		return nil, err
	}
	if updated != nil {
		uc.tiers.Session.Set(sessionID, updated)
	}
	return updated, nil
}

// ExpireSession forces a session out of the active pool.
func (uc *SessionUseCase) ExpireSession(ctx context.Context, sessionID string) error {
	if err := uc.sessionRepo.Expire(ctx, sessionID); err != nil {
		return err
	}
	uc.tiers.Invalidate(sessionID)
	return nil
}

// CalculateSessionSummary computes the session's aggregate stats.
// Cache-first; a fresh computation also refreshes the fast polling
// tier. Fails with ErrSessionNotFound when the row is absent.
func (uc *SessionUseCase) CalculateSessionSummary(ctx context.Context, sessionID string) (*SessionSummary, error) {
	if cached, found := uc.tiers.Summary.Get(sessionID); found {
		return cached.(*SessionSummary), nil
	}

	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	var (
		leads         []entities.Lead
		analysisCount int64
		exportCount   int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leads, err = uc.leadRepo.FindBySession(gctx, sessionID)
		return err
	})
	g.Go(func() error {
		var err error
		analysisCount, err = uc.analysisRepo.CountBySession(gctx, sessionID)
		return err
	})
	g.Go(func() error {
		var err error
		exportCount, err = uc.exportRepo.CountBySession(gctx, sessionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute session summary: %w", err)
	}

	summary := &SessionSummary{
		SessionID:         sessionID,
		TotalLeads:        len(leads),
		AverageConfidence: averageConfidence(leads),
		TopPlatforms:      topPlatforms(leads, 5),
		AnalysisCount:     analysisCount,
		ExportCount:       exportCount,
		CreatedAt:         session.CreatedAt,
		LastActivity:      session.LastActivity,
		Status:            session.Status,
	}

	uc.tiers.Summary.Set(sessionID, summary)
	uc.tiers.Stats.Set(sessionID, &fastStats{
		sessionID:     sessionID,
		totalLeads:    summary.TotalLeads,
		analysisCount: summary.AnalysisCount,
		lastUpdate:    time.Now(),
	})

	return summary, nil
}

// GetFastSessionStats serves polling endpoints from the 2-minute tier,
// falling back to the full summary computation on a miss. Staleness is
// bounded by the tier TTL under steady polling.
func (uc *SessionUseCase) GetFastSessionStats(ctx context.Context, sessionID string) (*SessionSummary, error) {
	if cached, found := uc.tiers.Stats.Get(sessionID); found {
		stats := cached.(*fastStats)
		return &SessionSummary{
			SessionID:     sessionID,
			TotalLeads:    stats.totalLeads,
			AnalysisCount: stats.analysisCount,
			TopPlatforms:  []PlatformCount{},
			CreatedAt:     stats.lastUpdate,
			LastActivity:  stats.lastUpdate,
			Status:        entities.SessionStatusActive,
		}, nil
	}
	return uc.CalculateSessionSummary(ctx, sessionID)
}

// GetSessionExportData fetches the session plus all its leads, analyses
// and exports. The three reads are independent and run concurrently.
// Returns (nil, nil) when the session is missing.
func (uc *SessionUseCase) GetSessionExportData(ctx context.Context, sessionID string) (*SessionExportData, error) {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	var (
		leads    []entities.Lead
		analyses []entities.Analysis
		exports  []entities.Export
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leads, err = uc.leadRepo.FindBySession(gctx, sessionID)
		return err
	})
	g.Go(func() error {
		var err error
		analyses, err = uc.analysisRepo.FindBySession(gctx, sessionID)
		return err
	})
	g.Go(func() error {
		var err error
		exports, err = uc.exportRepo.FindBySession(gctx, sessionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch session export data: %w", err)
	}

	summary, err := uc.CalculateSessionSummary(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &SessionExportData{
		Session: SessionInfo{
			ID:           session.ID,
			CreatedAt:    session.CreatedAt,
			LastActivity: session.LastActivity,
			Status:       session.Status,
			UserEmail:    session.UserEmail,
			Metadata:     session.Metadata,
		},
		Leads:    leads,
		Analyses: analyses,
		Exports:  exports,
		Summary:  *summary,
	}, nil
}

// SaveAnalysisToSession records one completed workflow pass against the
// session and bumps its activity.
func (uc *SessionUseCase) SaveAnalysisToSession(ctx context.Context, sessionID string, input AnalysisInput) (*entities.Analysis, error) {
	if _, err := uc.UpdateSessionActivity(ctx, sessionID); err != nil {
		return nil, err
	}

	analysis := &entities.Analysis{
		SessionID:      &sessionID,
		VideoURL:       input.VideoURL,
		Platform:       input.Platform,
		Summary:        input.Summary,
		Insights:       input.Insights,
		Sentiment:      input.Sentiment,
		SentimentScore: input.SentimentScore,
		TotalComments:  input.TotalComments,
		LeadsFound:     input.LeadsFound,
		Status:         entities.AnalysisStatusCompleted,
		RawData:        input.RawData,
	}
	if err := uc.analysisRepo.Create(ctx, analysis); err != nil {
		return nil, err
	}

	// The analysis count changed; let the next read recompute
	uc.tiers.Summary.Delete(sessionID)
	uc.tiers.Stats.Delete(sessionID)

	return analysis, nil
}

// AssociateLeadsWithSession bulk re-parents lead rows onto the session.
// No-op for an empty id list.
func (uc *SessionUseCase) AssociateLeadsWithSession(ctx context.Context, sessionID string, leadIDs []int) (int64, error) {
	if len(leadIDs) == 0 {
		return 0, nil
	}
	if _, err := uc.UpdateSessionActivity(ctx, sessionID); err != nil {
		return 0, err
	}

	count, err := uc.leadRepo.AssociateWithSession(ctx, sessionID, leadIDs)
	if err != nil {
		return 0, err
	}

	uc.tiers.Summary.Delete(sessionID)
	uc.tiers.Stats.Delete(sessionID)
	return count, nil
}

// CreateExport opens a pending export record whose recordCount reflects
// the session's current leads and analyses.
func (uc *SessionUseCase) CreateExport(ctx context.Context, sessionID, exportType, destination string, metadata datatypes.JSONMap) (*entities.Export, error) {
	if _, err := uc.UpdateSessionActivity(ctx, sessionID); err != nil {
		return nil, err
	}

	recordCount := 0
	if data, err := uc.GetSessionExportData(ctx, sessionID); err != nil {
		return nil, err
	} else if data != nil {
		recordCount = len(data.Leads) + len(data.Analyses)
	}

	export := &entities.Export{
		SessionID:   &sessionID,
		Type:        exportType,
		Destination: destination,
		Status:      entities.ExportStatusPending,
		RecordCount: &recordCount,
		CreatedAt:   time.Now(),
		Metadata:    metadata,
	}
	if err := uc.exportRepo.Create(ctx, export); err != nil {
		return nil, fmt.Errorf("failed to create export record: %w", err)
	}

	uc.tiers.Summary.Delete(sessionID)
	uc.tiers.Stats.Delete(sessionID)
	return export, nil
}

func (uc *SessionUseCase) UpdateExportStatus(ctx context.Context, exportID int, status string, completedAt *time.Time) (*entities.Export, error) {
	return uc.exportRepo.UpdateStatus(ctx, exportID, status, completedAt)
}

// CleanupOldSessions runs the two-phase sweep: expire active sessions
// idle past the cutoff, then delete expired sessions idle past the
// 7-day retention window. Idempotent; re-running finds nothing.
func (uc *SessionUseCase) CleanupOldSessions(ctx context.Context, hoursOld int) (CleanupResult, error) {
	if hoursOld <= 0 {
		hoursOld = 48
	}

	expireCutoff := time.Now().Add(-time.Duration(hoursOld) * time.Hour)
	expiredCount, err := uc.sessionRepo.ExpireInactiveSince(ctx, expireCutoff)
	if err != nil {
		return CleanupResult{}, fmt.Errorf("failed to expire old sessions: %w", err)
	}

	deleteCutoff := time.Now().AddDate(0, 0, -7)
	deletedCount, err := uc.sessionRepo.DeleteExpiredSince(ctx, deleteCutoff)
	if err != nil {
		return CleanupResult{ExpiredCount: expiredCount}, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	// Swept rows may still be cached as active; drop everything rather
	// than waiting out the TTLs.
	if expiredCount > 0 || deletedCount > 0 {
		uc.tiers.Session.Flush()
		uc.tiers.Summary.Flush()
		uc.tiers.Stats.Flush()
	}

	return CleanupResult{ExpiredCount: expiredCount, DeletedCount: deletedCount}, nil
}

func (uc *SessionUseCase) GetActiveSessions(ctx context.Context) ([]entities.Session, error) {
	return uc.sessionRepo.FindActive(ctx)
}

// GetSessionSummaries computes summaries for the given sessions (all
// sessions when ids is empty), most recently active first.
func (uc *SessionUseCase) GetSessionSummaries(ctx context.Context, ids []string) ([]SessionSummary, error) {
	sessions, err := uc.sessionRepo.FindByRecentActivity(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summary, err := uc.CalculateSessionSummary(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// InvalidateSessionCaches drops every cached projection for a session.
// The export service calls this after a consuming export so readers see
// the emptied session before the TTLs lapse.
func (uc *SessionUseCase) InvalidateSessionCaches(sessionID string) {
	uc.tiers.Invalidate(sessionID)
}

// averageConfidence rounds the mean over leads with a non-null score;
// zero when no lead is scored.
func averageConfidence(leads []entities.Lead) int {
	var sum, scored int
	for _, lead := range leads {
		if lead.ConfidenceScore != nil {
			sum += *lead.ConfidenceScore
			scored++
		}
	}
	if scored == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(scored)))
}

// topPlatforms counts leads per platform and keeps the top n, ordered by
// count descending with name as the stable tie-break.
func topPlatforms(leads []entities.Lead, n int) []PlatformCount {
	counts := make(map[string]int)
	for _, lead := range leads {
		if lead.Platform != "" {
			counts[lead.Platform]++
		}
	}

	platforms := make([]PlatformCount, 0, len(counts))
	for platform, count := range counts {
		platforms = append(platforms, PlatformCount{Platform: platform, Count: count})
	}
	sort.SliceStable(platforms, func(i, j int) bool {
		if platforms[i].Count != platforms[j].Count {
			return platforms[i].Count > platforms[j].Count
		}
		return platforms[i].Platform < platforms[j].Platform
	})

	if len(platforms) > n {
		platforms = platforms[:n]
	}
	return platforms
}
