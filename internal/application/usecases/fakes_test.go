package usecases

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/leadradar/lead-radar-api/internal/domain/entities"
	"gorm.io/datatypes"
)

// In-memory repository fakes. Call counters let tests assert which reads
// were served from cache.

type fakeSessionRepo struct {
	mu                  sync.Mutex
	sessions            map[string]*entities.Session
	findByIDCalls       int
	updateActivityCalls int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entities.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entities.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) FindByID(ctx context.Context, id string) (*entities.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findByIDCalls++
	session, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) UpdateActivity(ctx context.Context, id string) (*entities.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateActivityCalls++
	session, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	session.LastActivity = time.Now()
	session.Status = entities.SessionStatusActive
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) UpdateMetadata(ctx context.Context, id string, metadata datatypes.JSONMap) (*entities.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	session.Metadata = metadata
	session.LastActivity = time.Now()
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) Expire(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		session.Status = entities.SessionStatusExpired
	}
	return nil
}

func (r *fakeSessionRepo) FindActive(ctx context.Context) ([]entities.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var active []entities.Session
	for _, session := range r.sessions {
		if session.Status == entities.SessionStatusActive {
			active = append(active, *session)
		}
	}
	return active, nil
}

func (r *fakeSessionRepo) FindByRecentActivity(ctx context.Context, ids []string) ([]entities.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var sessions []entities.Session
	for _, session := range r.sessions {
		if len(ids) == 0 || wanted[session.ID] {
			sessions = append(sessions, *session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastActivity.After(sessions[j].LastActivity)
	})
	return sessions, nil
}

func (r *fakeSessionRepo) ExpireInactiveSince(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, session := range r.sessions {
		if session.Status == entities.SessionStatusActive && session.LastActivity.Before(cutoff) {
			session.Status = entities.SessionStatusExpired
			count++
		}
	}
	return count, nil
}

func (r *fakeSessionRepo) DeleteExpiredSince(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, session := range r.sessions {
		if session.Status == entities.SessionStatusExpired && session.LastActivity.Before(cutoff) {
			delete(r.sessions, id)
			count++
		}
	}
	return count, nil
}

type fakeLeadRepo struct {
	mu                 sync.Mutex
	leads              []entities.Lead
	nextID             int
	findBySessionCalls int
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{nextID: 1}
}

func (r *fakeLeadRepo) FindAll(ctx context.Context) ([]entities.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entities.Lead(nil), r.leads...), nil
}

func (r *fakeLeadRepo) FindByVideoAnalysis(ctx context.Context, videoAnalysisID int) ([]entities.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.Lead
	for _, lead := range r.leads {
		if lead.VideoAnalysisID != nil && *lead.VideoAnalysisID == videoAnalysisID {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (r *fakeLeadRepo) FindBySession(ctx context.Context, sessionID string) ([]entities.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findBySessionCalls++
	var out []entities.Lead
	for _, lead := range r.leads {
		if lead.SessionID != nil && *lead.SessionID == sessionID {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (r *fakeLeadRepo) Create(ctx context.Context, lead *entities.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead.ID = r.nextID
	r.nextID++
	r.leads = append(r.leads, *lead)
	return nil
}

func (r *fakeLeadRepo) CreateMany(ctx context.Context, leads []entities.Lead) ([]entities.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range leads {
		leads[i].ID = r.nextID
		r.nextID++
		r.leads = append(r.leads, leads[i])
	}
	return leads, nil
}

func (r *fakeLeadRepo) AssociateWithSession(ctx context.Context, sessionID string, leadIDs []int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[int]bool, len(leadIDs))
	for _, id := range leadIDs {
		wanted[id] = true
	}
	var count int64
	for i := range r.leads {
		if wanted[r.leads[i].ID] {
			id := sessionID
			r.leads[i].SessionID = &id
			count++
		}
	}
	return count, nil
}

func (r *fakeLeadRepo) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []entities.Lead
	var count int64
	for _, lead := range r.leads {
		if lead.SessionID != nil && *lead.SessionID == sessionID {
			count++
			continue
		}
		kept = append(kept, lead)
	}
	r.leads = kept
	return count, nil
}

type fakeAnalysisRepo struct {
	mu       sync.Mutex
	analyses []entities.Analysis
	nextID   int
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{nextID: 1}
}

func (r *fakeAnalysisRepo) FindAll(ctx context.Context) ([]entities.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entities.Analysis(nil), r.analyses...), nil
}

func (r *fakeAnalysisRepo) FindByID(ctx context.Context, id int) (*entities.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, analysis := range r.analyses {
		if analysis.ID == id {
			copied := analysis
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAnalysisRepo) FindBySession(ctx context.Context, sessionID string) ([]entities.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.Analysis
	for _, analysis := range r.analyses {
		if analysis.SessionID != nil && *analysis.SessionID == sessionID {
			out = append(out, analysis)
		}
	}
	return out, nil
}

func (r *fakeAnalysisRepo) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	found, _ := r.FindBySession(ctx, sessionID)
	return int64(len(found)), nil
}

func (r *fakeAnalysisRepo) Create(ctx context.Context, analysis *entities.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	analysis.ID = r.nextID
	r.nextID++
	r.analyses = append(r.analyses, *analysis)
	return nil
}

func (r *fakeAnalysisRepo) Update(ctx context.Context, id int, updates map[string]interface{}) (*entities.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.analyses {
		if r.analyses[i].ID == id {
			if status, ok := updates["status"].(string); ok {
				r.analyses[i].Status = status
			}
			copied := r.analyses[i]
			return &copied, nil
		}
	}
	return nil, nil
}

type fakeVideoAnalysisRepo struct {
	mu          sync.Mutex
	analyses    []entities.VideoAnalysis
	nextID      int
	lastUpdates map[string]interface{}
}

func newFakeVideoAnalysisRepo() *fakeVideoAnalysisRepo {
	return &fakeVideoAnalysisRepo{nextID: 1}
}

func (r *fakeVideoAnalysisRepo) FindAll(ctx context.Context) ([]entities.VideoAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entities.VideoAnalysis(nil), r.analyses...), nil
}

func (r *fakeVideoAnalysisRepo) FindByID(ctx context.Context, id int) (*entities.VideoAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, analysis := range r.analyses {
		if analysis.ID == id {
			copied := analysis
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeVideoAnalysisRepo) Create(ctx context.Context, analysis *entities.VideoAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	analysis.ID = r.nextID
	r.nextID++
	r.analyses = append(r.analyses, *analysis)
	return nil
}

// Update records the column map it was handed and applies the columns
// it knows, mirroring what the gorm Updates call would write.
func (r *fakeVideoAnalysisRepo) Update(ctx context.Context, id int, updates map[string]interface{}) (*entities.VideoAnalysis, error) {
	r.mu.Lock()
	r.lastUpdates = updates
	for i := range r.analyses {
		if r.analyses[i].ID != id {
			continue
		}
		if count, ok := updates["lead_count"].(int); ok {
			r.analyses[i].LeadCount = count
		}
		if status, ok := updates["status"].(string); ok {
			r.analyses[i].Status = status
		}
		if title, ok := updates["title"].(string); ok {
			r.analyses[i].Title = title
		}
		r.analyses[i].UpdatedAt = time.Now()
	}
	r.mu.Unlock()
	return r.FindByID(ctx, id)
}

type fakeExportRepo struct {
	mu      sync.Mutex
	exports []entities.Export
	nextID  int
}

func newFakeExportRepo() *fakeExportRepo {
	return &fakeExportRepo{nextID: 1}
}

func (r *fakeExportRepo) FindAll(ctx context.Context) ([]entities.Export, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entities.Export(nil), r.exports...), nil
}

func (r *fakeExportRepo) FindByID(ctx context.Context, id int) (*entities.Export, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, export := range r.exports {
		if export.ID == id {
			copied := export
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeExportRepo) FindBySession(ctx context.Context, sessionID string) ([]entities.Export, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.Export
	for _, export := range r.exports {
		if export.SessionID != nil && *export.SessionID == sessionID {
			out = append(out, export)
		}
	}
	return out, nil
}

func (r *fakeExportRepo) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	found, _ := r.FindBySession(ctx, sessionID)
	return int64(len(found)), nil
}

func (r *fakeExportRepo) Create(ctx context.Context, export *entities.Export) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	export.ID = r.nextID
	r.nextID++
	r.exports = append(r.exports, *export)
	return nil
}

func (r *fakeExportRepo) UpdateStatus(ctx context.Context, id int, status string, completedAt *time.Time) (*entities.Export, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.exports {
		if r.exports[i].ID == id {
			r.exports[i].Status = status
			if completedAt == nil && status == entities.ExportStatusCompleted {
				now := time.Now()
				completedAt = &now
			}
			r.exports[i].CompletedAt = completedAt
			copied := r.exports[i]
			return &copied, nil
		}
	}
	return nil, nil
}
