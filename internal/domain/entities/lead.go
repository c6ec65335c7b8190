package entities

import (
	"time"

	"github.com/lib/pq"
)

// Lead is one prospective contact extracted from video comments by the
// external analysis workflow.
type Lead struct {
	ID              int     `json:"id" gorm:"primary_key;column:id"`
	LeadID          string  `json:"leadId" gorm:"column:lead_id;size:100"`
	SessionID       *string `json:"sessionId,omitempty" gorm:"column:session_id;type:text"`
	VideoAnalysisID *int    `json:"videoAnalysisId,omitempty" gorm:"column:video_analysis_id"`

	// Core identification
	Username    string `json:"username" gorm:"column:username;size:100;not null"`
	ProfileLink string `json:"profileLink" gorm:"column:profile_link;size:500"`
	Comment     string `json:"comment" gorm:"column:comment;type:text;not null"`

	// Qualification metrics coming back from the AI workflow
	Classification  string         `json:"classification" gorm:"column:classification;size:100"`
	PropertyType    string         `json:"propertyType" gorm:"column:property_type;size:50;default:'rental'"`
	ConfidenceScore *int           `json:"confidenceScore" gorm:"column:confidence_score;default:50"`
	UrgencyLevel    string         `json:"urgencyLevel" gorm:"column:urgency_level;size:20"`
	IntentKeywords  pq.StringArray `json:"intentKeywords" gorm:"column:intent_keywords;type:text[]"`

	// Action planning
	RecommendedAction string `json:"recommendedAction" gorm:"column:recommended_action;type:text"`
	FollowUpTimeframe string `json:"followUpTimeframe" gorm:"column:follow_up_timeframe;size:100"`

	// Legacy fields kept for older clients
	Priority string `json:"priority" gorm:"column:priority;size:20;default:'medium'"`
	Type     string `json:"type" gorm:"column:type;size:50;default:'rental'"`

	// Source tracking
	Platform string `json:"platform" gorm:"column:platform;size:20"`
	VideoURL string `json:"videoUrl" gorm:"column:video_url;size:500"`

	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at;default:now()"`
}

func (Lead) TableName() string {
	return "leads"
}
