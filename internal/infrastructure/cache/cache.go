package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Tier is one in-memory cache level with a fixed TTL. The session read
// path uses three tiers over the same logical data (session object,
// computed summary, fast polling stats); all of them are pure
// performance optimizations - a TTL of zero disables the tier and every
// read falls through to the store.
type Tier struct {
	ttl   time.Duration
	items *gocache.Cache
}

func NewTier(ttl time.Duration) *Tier {
	if ttl <= 0 {
		return &Tier{}
	}
	// The janitor sweep keeps long-lived processes from accumulating
	// entries for sessions that stopped polling.
	return &Tier{
		ttl:   ttl,
		items: gocache.New(ttl, 2*ttl),
	}
}

func (t *Tier) Get(key string) (interface{}, bool) {
	if t.items == nil {
		return nil, false
	}
	return t.items.Get(key)
}

func (t *Tier) Set(key string, value interface{}) {
	if t.items == nil {
		return
	}
	t.items.Set(key, value, t.ttl)
}

func (t *Tier) Delete(key string) {
	if t.items == nil {
		return
	}
	t.items.Delete(key)
}

func (t *Tier) Flush() {
	if t.items == nil {
		return
	}
	t.items.Flush()
}

// SessionTiers bundles the three levels used by the session service.
type SessionTiers struct {
	Session *Tier // full session row
	Summary *Tier // computed session summary
	Stats   *Tier // minimal stats for polling endpoints
}

const (
	SessionTTL = 10 * time.Minute
	SummaryTTL = 5 * time.Minute
	StatsTTL   = 2 * time.Minute
)

func NewSessionTiers() *SessionTiers {
	return &SessionTiers{
		Session: NewTier(SessionTTL),
		Summary: NewTier(SummaryTTL),
		Stats:   NewTier(StatsTTL),
	}
}

// Invalidate drops every tier's entry for one session. Entries are keyed
// by session id, so one session's data can never serve another's read.
func (t *SessionTiers) Invalidate(sessionID string) {
	t.Session.Delete(sessionID)
	t.Summary.Delete(sessionID)
	t.Stats.Delete(sessionID)
}
