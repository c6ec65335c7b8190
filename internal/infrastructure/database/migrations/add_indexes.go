package migrations

import (
	"gorm.io/gorm"
)

// AddIndexes adds indexes to the database to improve query performance
func AddIndexes(db *gorm.DB) error {
	// Sessions: the cleanup sweep and the active-sessions listing both
	// filter on status + last_activity
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_sessions_last_activity ON sessions (last_activity)").Error; err != nil {
		return err
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_sessions_status_activity ON sessions (status, last_activity)").Error; err != nil {
		return err
	}

	// Leads: session-scoped reads dominate (summary, export, delete)
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_leads_session_id ON leads (session_id)").Error; err != nil {
		return err
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_leads_video_analysis_id ON leads (video_analysis_id)").Error; err != nil {
		return err
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads (created_at)").Error; err != nil {
		return err
	}

	// Analyses and exports are counted per session on every summary
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_analyses_session_id ON analyses (session_id)").Error; err != nil {
		return err
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_exports_session_id ON exports (session_id)").Error; err != nil {
		return err
	}

	return nil
}
