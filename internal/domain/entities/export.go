package entities

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ExportTypeCSV    = "csv"
	ExportTypeSheets = "google_sheets"

	ExportStatusPending   = "pending"
	ExportStatusCompleted = "completed"
	ExportStatusFailed    = "failed"
)

// Export records one hand-off of a session's leads, either a CSV file
// download or an outbound Google Sheets webhook.
type Export struct {
	ID          int               `json:"id" gorm:"primary_key;column:id"`
	SessionID   *string           `json:"sessionId,omitempty" gorm:"column:session_id;type:text"`
	Type        string            `json:"type" gorm:"column:type;not null"`
	Destination string            `json:"destination" gorm:"column:destination;not null"`
	Status      string            `json:"status" gorm:"column:status;not null;default:'pending'"`
	RecordCount *int              `json:"recordCount,omitempty" gorm:"column:record_count"`
	CreatedAt   time.Time         `json:"createdAt" gorm:"column:created_at;not null;default:now()"`
	CompletedAt *time.Time        `json:"completedAt,omitempty" gorm:"column:completed_at"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"column:metadata;type:jsonb"`
}

func (Export) TableName() string {
	return "exports"
}
