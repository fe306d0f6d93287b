package app

import (
	"net/http"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/redis/go-redis/v9"
)

const (
	sessionCookieName = "booking_session"

	// a visitor may leave the booking form open for a while before paying
	sessionIdleTimeout = 2 * time.Hour
	sessionLifetime    = 48 * time.Hour

	sessionKeyStartedAt = "visitor_started_at"
)

// NewSessionManager keeps visitor sessions in redis so the booking selection
// and cart survive restarts and are shared between instances.
func NewSessionManager(client *redis.Client, env string) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = sessionIdleTimeout
	sessionManager.Lifetime = sessionLifetime
	sessionManager.Cookie.Name = sessionCookieName
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = env == "production"

	return sessionManager
}

// ensureVisitorSession commits a session before the handler runs, so the
// visitor has a token to tie a payment back to even on the first request.
func (app *Application) ensureVisitorSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if app.sessionManager.Token(ctx) == "" {
			app.sessionManager.Put(ctx, sessionKeyStartedAt, time.Now().Unix())

			_, _, err := app.sessionManager.Commit(ctx)
			if err != nil {
				app.serverErrorResponse(w, r, err)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (app *Application) sessionToken(r *http.Request) string {
	return app.sessionManager.Token(r.Context())
}
