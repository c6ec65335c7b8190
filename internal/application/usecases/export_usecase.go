package usecases

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/leadradar/lead-radar-api/internal/domain/entities"
	"github.com/leadradar/lead-radar-api/internal/domain/repositories"
	"gorm.io/datatypes"
)

var ErrSheetsWebhookFailed = errors.New("google sheets webhook failed")

// csvHeaders is the fixed column set of the lead CSV download.
var csvHeaders = []string{
	"Username", "Profile Link", "Comment", "Classification", "Property Type",
	"Confidence Score", "Urgency Level", "Intent Keywords", "Recommended Action",
	"Follow Up Timeframe", "Platform", "Video URL", "Priority", "Created At",
}

// CSVExport is one generated download.
type CSVExport struct {
	Filename  string
	Content   []byte
	LeadCount int
	ExportID  int
}

// SheetsResult reports one completed Google Sheets hand-off.
type SheetsResult struct {
	ExportID  int    `json:"exportId"`
	Email     string `json:"email"`
	LeadCount int    `json:"leadCount"`
}

// sheetsLead is the reduced field set posted to the Sheets webhook.
// Internal row ids never leave the system.
type sheetsLead struct {
	Username          string `json:"username"`
	ProfileLink       string `json:"profileLink"`
	Comment           string `json:"comment"`
	Classification    string `json:"classification"`
	PropertyType      string `json:"propertyType"`
	ConfidenceScore   *int   `json:"confidenceScore"`
	Priority          string `json:"priority"`
	RecommendedAction string `json:"recommendedAction"`
	FollowUpTimeframe string `json:"followUpTimeframe"`
	Platform          string `json:"platform"`
	VideoURL          string `json:"videoUrl"`
}

type sheetsPayload struct {
	SessionID string              `json:"sessionId"`
	Email     string              `json:"email"`
	UserName  string              `json:"userName"`
	ExportID  int                 `json:"exportId"`
	Leads     []sheetsLead        `json:"leads"`
	Summary   SessionSummary      `json:"summary"`
	Analyses  []entities.Analysis `json:"analyses"`
	Timestamp string              `json:"timestamp"`
}

// ExportUseCase turns a session's leads into a CSV download or a Google
// Sheets webhook push. Both hand-offs are consuming: the session's
// leads are deleted once the export is confirmed, so a long-lived
// session never accumulates already-exported rows. A failed hand-off
// leaves the data intact for a retry.
type ExportUseCase struct {
	sessions         *SessionUseCase
	leadRepo         repositories.ILeadRepository
	sheetsWebhookURL string
	client           *http.Client
}

func NewExportUseCase(sessions *SessionUseCase, leadRepo repositories.ILeadRepository, sheetsWebhookURL string) *ExportUseCase {
	return &ExportUseCase{
		sessions:         sessions,
		leadRepo:         leadRepo,
		sheetsWebhookURL: sheetsWebhookURL,
		client:           &http.Client{Timeout: 15 * time.Second},
	}
}

// ExportCSV generates the session's lead CSV, records the export and
// deletes the exported leads. A session that already exported returns a
// "no leads" body rather than an error.
func (uc *ExportUseCase) ExportCSV(ctx context.Context, sessionID string) (*CSVExport, error) {
	data, err := uc.sessions.GetSessionExportData(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	export, err := uc.sessions.CreateExport(ctx, sessionID, entities.ExportTypeCSV, "download", datatypes.JSONMap{
		"exportFormat": "csv",
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	content := BuildLeadsCSV(data.Leads)

	now := time.Now()
	if _, err := uc.sessions.UpdateExportStatus(ctx, export.ID, entities.ExportStatusCompleted, &now); err != nil {
		return nil, err
	}

	deleted, err := uc.leadRepo.DeleteBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	uc.sessions.InvalidateSessionCaches(sessionID)
	log.Printf("🗑️ Deleted %d leads after CSV export for session %s", deleted, sessionID)

	return &CSVExport{
		Filename:  fmt.Sprintf("leads-session-%s-%s.csv", sessionID, time.Now().Format("2006-01-02")),
		Content:   content,
		LeadCount: len(data.Leads),
		ExportID:  export.ID,
	}, nil
}

// BuildLeadsCSV renders the fixed-column CSV. encoding/csv handles the
// double-quote escaping the format needs.
func BuildLeadsCSV(leads []entities.Lead) []byte {
	if len(leads) == 0 {
		return []byte("No leads found for this session\n")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write(csvHeaders)
	for _, lead := range leads {
		confidence := 0
		if lead.ConfidenceScore != nil {
			confidence = *lead.ConfidenceScore
		}
		createdAt := ""
		if !lead.CreatedAt.IsZero() {
			createdAt = lead.CreatedAt.UTC().Format(time.RFC3339)
		}
		w.Write([]string{
			lead.Username,
			lead.ProfileLink,
			lead.Comment,
			lead.Classification,
			lead.PropertyType,
			strconv.Itoa(confidence),
			lead.UrgencyLevel,
			strings.Join(lead.IntentKeywords, "; "),
			lead.RecommendedAction,
			lead.FollowUpTimeframe,
			lead.Platform,
			lead.VideoURL,
			lead.Priority,
			createdAt,
		})
	}
	w.Flush()
	return buf.Bytes()
}

// ExportToSheets posts the session's leads to the Google Sheets webhook
// (Make.com scenario). Leads are deleted only after the webhook
// confirms receipt; any failure marks the export failed and keeps the
// data for a retry.
func (uc *ExportUseCase) ExportToSheets(ctx context.Context, sessionID, email string) (*SheetsResult, error) {
	data, err := uc.sessions.GetSessionExportData(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	export, err := uc.sessions.CreateExport(ctx, sessionID, entities.ExportTypeSheets, email, datatypes.JSONMap{
		"userEmail":    email,
		"exportFormat": "google_sheets",
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	cleaned := make([]sheetsLead, 0, len(data.Leads))
	for _, lead := range data.Leads {
		cleaned = append(cleaned, sheetsLead{
			Username:          lead.Username,
			ProfileLink:       lead.ProfileLink,
			Comment:           lead.Comment,
			Classification:    lead.Classification,
			PropertyType:      lead.PropertyType,
			ConfidenceScore:   lead.ConfidenceScore,
			Priority:          lead.Priority,
			RecommendedAction: lead.RecommendedAction,
			FollowUpTimeframe: lead.FollowUpTimeframe,
			Platform:          lead.Platform,
			VideoURL:          lead.VideoURL,
		})
	}

	userName := "Anonymous User"
	if name, ok := data.Session.Metadata["userName"].(string); ok && name != "" {
		userName = name
	}

	payload := sheetsPayload{
		SessionID: sessionID,
		Email:     email,
		UserName:  userName,
		ExportID:  export.ID,
		Leads:     cleaned,
		Summary:   data.Summary,
		Analyses:  data.Analyses,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	log.Printf("📊 Google Sheets export - UserName: %q, Email: %s, Leads: %d", userName, email, len(cleaned))

	body, err := json.Marshal(payload)
	if err != nil {
		uc.markFailed(ctx, export.ID)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uc.sheetsWebhookURL, bytes.NewReader(body))
	if err != nil {
		uc.markFailed(ctx, export.ID)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := uc.client.Do(req)
	if err != nil {
		uc.markFailed(ctx, export.ID)
		return nil, fmt.Errorf("%w: %v", ErrSheetsWebhookFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		uc.markFailed(ctx, export.ID)
		return nil, fmt.Errorf("%w: status %d", ErrSheetsWebhookFailed, resp.StatusCode)
	}

	now := time.Now()
	if _, err := uc.sessions.UpdateExportStatus(ctx, export.ID, entities.ExportStatusCompleted, &now); err != nil {
		return nil, err
	}

	deleted, err := uc.leadRepo.DeleteBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	uc.sessions.InvalidateSessionCaches(sessionID)
	log.Printf("🗑️ Deleted %d leads after Google Sheets export for session %s", deleted, sessionID)

	return &SheetsResult{ExportID: export.ID, Email: email, LeadCount: len(cleaned)}, nil
}

func (uc *ExportUseCase) markFailed(ctx context.Context, exportID int) {
	if _, err := uc.sessions.UpdateExportStatus(ctx, exportID, entities.ExportStatusFailed, nil); err != nil {
		log.Printf("❌ Failed to mark export %d as failed: %v", exportID, err)
	}
}
