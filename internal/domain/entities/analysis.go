package entities

import (
	"time"

	"gorm.io/datatypes"
)

const (
	AnalysisStatusPending   = "pending"
	AnalysisStatusCompleted = "completed"
	AnalysisStatusFailed    = "failed"
)

// VideoAnalysis tracks one submitted video URL. Created when the URL is
// forwarded to the workflow, updated when results come back.
type VideoAnalysis struct {
	ID        int       `json:"id" gorm:"primary_key;column:id"`
	URL       string    `json:"url" gorm:"column:url;type:text;not null"`
	Platform  string    `json:"platform" gorm:"column:platform;not null"`
	Title     string    `json:"title" gorm:"column:title;type:text"`
	Summary   string    `json:"summary" gorm:"column:summary;type:text"`
	LeadCount int       `json:"leadCount" gorm:"column:lead_count;default:0"`
	Status    string    `json:"status" gorm:"column:status;default:'pending'"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at;not null;default:now()"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updated_at;not null;default:now()"`
}

func (VideoAnalysis) TableName() string {
	return "video_analyses"
}

// Analysis is the session-linked record of one full AI processing pass,
// richer than VideoAnalysis (insights, sentiment, raw payload).
type Analysis struct {
	ID             int            `json:"id" gorm:"primary_key;column:id"`
	SessionID      *string        `json:"sessionId,omitempty" gorm:"column:session_id;type:text"`
	VideoURL       string         `json:"videoUrl" gorm:"column:video_url;type:text;not null"`
	Platform       string         `json:"platform" gorm:"column:platform;not null"`
	Summary        string         `json:"summary" gorm:"column:summary;type:text"`
	Insights       datatypes.JSON `json:"insights,omitempty" gorm:"column:insights;type:jsonb"`
	Sentiment      string         `json:"sentiment" gorm:"column:sentiment"`
	SentimentScore *float64       `json:"sentimentScore,omitempty" gorm:"column:sentiment_score"`
	TotalComments  *int           `json:"totalComments,omitempty" gorm:"column:total_comments"`
	LeadsFound     *int           `json:"leadsFound,omitempty" gorm:"column:leads_found"`
	Status         string         `json:"status" gorm:"column:status;not null;default:'pending'"`
	CreatedAt      time.Time      `json:"createdAt" gorm:"column:created_at;not null;default:now()"`
	RawData        datatypes.JSON `json:"rawData,omitempty" gorm:"column:raw_data;type:jsonb"`
}

func (Analysis) TableName() string {
	return "analyses"
}
