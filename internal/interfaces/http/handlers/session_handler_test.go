package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/leadradar/lead-radar-api/internal/application/usecases"
	"github.com/leadradar/lead-radar-api/internal/domain/entities"
	"github.com/leadradar/lead-radar-api/internal/infrastructure/cache"
	"github.com/leadradar/lead-radar-api/internal/interfaces/http/middleware"
	"gorm.io/datatypes"
)

// Minimal repo fakes: one known session, no leads or exports.

type stubSessionRepo struct{ session entities.Session }

func (s *stubSessionRepo) Create(ctx context.Context, session *entities.Session) error { return nil }
func (s *stubSessionRepo) FindByID(ctx context.Context, id string) (*entities.Session, error) {
	if id == s.session.ID {
		copied := s.session
		return &copied, nil
	}
	return nil, nil
}
func (s *stubSessionRepo) UpdateActivity(ctx context.Context, id string) (*entities.Session, error) {
	return s.FindByID(ctx, id)
}
func (s *stubSessionRepo) UpdateMetadata(ctx context.Context, id string, metadata datatypes.JSONMap) (*entities.Session, error) {
	return s.FindByID(ctx, id)
}
func (s *stubSessionRepo) Expire(ctx context.Context, id string) error { return nil }
func (s *stubSessionRepo) FindActive(ctx context.Context) ([]entities.Session, error) {
	return nil, nil
}
func (s *stubSessionRepo) FindByRecentActivity(ctx context.Context, ids []string) ([]entities.Session, error) {
	return nil, nil
}
func (s *stubSessionRepo) ExpireInactiveSince(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}
func (s *stubSessionRepo) DeleteExpiredSince(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubLeadRepo struct{}

func (stubLeadRepo) FindAll(ctx context.Context) ([]entities.Lead, error) { return nil, nil }
func (stubLeadRepo) FindByVideoAnalysis(ctx context.Context, videoAnalysisID int) ([]entities.Lead, error) {
	return nil, nil
}
func (stubLeadRepo) FindBySession(ctx context.Context, sessionID string) ([]entities.Lead, error) {
	return nil, nil
}
func (stubLeadRepo) Create(ctx context.Context, lead *entities.Lead) error { return nil }
func (stubLeadRepo) CreateMany(ctx context.Context, leads []entities.Lead) ([]entities.Lead, error) {
	return leads, nil
}
func (stubLeadRepo) AssociateWithSession(ctx context.Context, sessionID string, leadIDs []int) (int64, error) {
	return 0, nil
}
func (stubLeadRepo) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	return 0, nil
}

type stubAnalysisRepo struct{}

func (stubAnalysisRepo) FindAll(ctx context.Context) ([]entities.Analysis, error) { return nil, nil }
func (stubAnalysisRepo) FindByID(ctx context.Context, id int) (*entities.Analysis, error) {
	return nil, nil
}
func (stubAnalysisRepo) FindBySession(ctx context.Context, sessionID string) ([]entities.Analysis, error) {
	return nil, nil
}
func (stubAnalysisRepo) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	return 0, nil
}
func (stubAnalysisRepo) Create(ctx context.Context, analysis *entities.Analysis) error { return nil }
func (stubAnalysisRepo) Update(ctx context.Context, id int, updates map[string]interface{}) (*entities.Analysis, error) {
	return nil, nil
}

type stubExportRepo struct{}

func (stubExportRepo) FindAll(ctx context.Context) ([]entities.Export, error) { return nil, nil }
func (stubExportRepo) FindByID(ctx context.Context, id int) (*entities.Export, error) {
	return nil, nil
}
func (stubExportRepo) FindBySession(ctx context.Context, sessionID string) ([]entities.Export, error) {
	return nil, nil
}
func (stubExportRepo) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	return 0, nil
}
func (stubExportRepo) Create(ctx context.Context, export *entities.Export) error { return nil }
func (stubExportRepo) UpdateStatus(ctx context.Context, id int, status string, completedAt *time.Time) (*entities.Export, error) {
	return nil, nil
}

func TestGetCurrentSessionCacheHeaders(t *testing.T) {
	now := time.Now()
	sessionRepo := &stubSessionRepo{session: entities.Session{
		ID:           "abc-123",
		CreatedAt:    now,
		LastActivity: now,
		Status:       entities.SessionStatusActive,
	}}
	sessions := usecases.NewSessionUseCase(sessionRepo, stubLeadRepo{}, stubAnalysisRepo{}, stubExportRepo{}, cache.NewSessionTiers())
	handler := NewSessionHandler(sessions)

	app := fiber.New()
	app.Use(etag.New())
	app.Get("/api/session", func(c *fiber.Ctx) error {
		c.Locals(middleware.SessionLocalsKey, "abc-123")
		return c.Next()
	}, handler.GetCurrentSession)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/session", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	if cc := resp.Header.Get(fiber.HeaderCacheControl); cc != "public, max-age=30" {
		t.Errorf("Cache-Control = %q", cc)
	}

	// The served ETag is the middleware's body hash. A tag the handler
	// wrote itself would be overwritten, so it must never emit one.
	tag := resp.Header.Get(fiber.HeaderETag)
	if tag == "" {
		t.Fatal("no ETag served")
	}
	if strings.Contains(tag, "session-") {
		t.Errorf("ETag = %q, want the middleware's body hash", tag)
	}

	// Revalidation: the same body answers If-None-Match with a 304.
	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set(fiber.HeaderIfNoneMatch, tag)
	resp2, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test revalidation: %v", err)
	}
	if resp2.StatusCode != http.StatusNotModified {
		t.Errorf("revalidation status = %d, want 304", resp2.StatusCode)
	}
}
