package middleware

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/leadradar/lead-radar-api/internal/application/usecases"
	"github.com/leadradar/lead-radar-api/internal/domain/entities"
)

const (
	// SessionCookieName is the browser cookie carrying the session id.
	SessionCookieName = "sessionId"
	// SessionLocalsKey is where the resolved id lives on the request.
	SessionLocalsKey = "sessionID"

	sessionCookieMaxAge = 48 * 60 * 60 // 48 hours, in seconds
)

// SessionID returns the session id the middleware attached to this
// request. Empty outside session-scoped routes.
func SessionID(c *fiber.Ctx) string {
	if id, ok := c.Locals(SessionLocalsKey).(string); ok {
		return id
	}
	return ""
}

// NewSessionMiddleware resolves or creates the request's session:
//
//  1. no cookie: create a session, set the cookie
//  2. cookie references an active session: reuse it, bump activity
//  3. cookie references a missing/expired session: same as 1
//  4. anything fails: one fallback creation attempt, then 503
//
// Activity bumps are skipped for GET /api/session so the summary
// polling loop doesn't turn into a write storm.
func NewSessionMiddleware(sessions *usecases.SessionUseCase) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(SessionCookieName)

		shouldUpdateActivity := !(c.Method() == fiber.MethodGet &&
			(c.Path() == "/api/session" || c.Path() == "/api/session/stats"))

		if sessionID != "" {
			existing, err := sessions.GetSession(c.Context(), sessionID)
			if err != nil {
				return fallbackSession(c, sessions, err)
			}

			if existing != nil && existing.Status == entities.SessionStatusActive {
				if shouldUpdateActivity {
					if _, err := sessions.UpdateSessionActivity(c.Context(), sessionID); err != nil {
						return fallbackSession(c, sessions, err)
					}
				}
				c.Locals(SessionLocalsKey, sessionID)
				return c.Next()
			}
		}

		// No cookie, or the referenced session is gone/expired
		session, err := sessions.CreateSession(c.Context(), nil, nil)
		if err != nil {
			return fallbackSession(c, sessions, err)
		}

		setSessionCookie(c, session.ID)
		c.Locals(SessionLocalsKey, session.ID)
		return c.Next()
	}
}

// fallbackSession gives the request one more chance at a usable session
// before rejecting it outright.
func fallbackSession(c *fiber.Ctx, sessions *usecases.SessionUseCase, cause error) error {
	log.Printf("❌ Session middleware error: %v", cause)

	session, err := sessions.CreateSession(c.Context(), nil, nil)
	if err != nil {
		log.Printf("❌ Fallback session creation failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Session management failed",
		})
	}

	setSessionCookie(c, session.ID)
	c.Locals(SessionLocalsKey, session.ID)
	return c.Next()
}

func setSessionCookie(c *fiber.Ctx, sessionID string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		HTTPOnly: true,
		Secure:   os.Getenv("APP_ENV") == "production",
		SameSite: fiber.CookieSameSiteLaxMode,
		MaxAge:   sessionCookieMaxAge,
	})
}
