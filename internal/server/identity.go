package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/fittrack/internal/logging"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/storage"
	"tailscale.com/client/tailscale/apitype"
)

type contextKey int

const userKey contextKey = iota

// WhoIser resolves a tailnet peer address. *local.Client from tsnet
// satisfies it.
type WhoIser interface {
	WhoIs(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)
}

// devUser is attached to every request when Tailscale is disabled. The
// migrations seed it with id 1.
var devUser = models.User{ID: 1, Login: "local", DisplayName: "Local User"}

func withUser(ctx context.Context, u *models.User) context.Context {
	ctx = context.WithValue(ctx, userKey, u)
	return logging.WithAttrs(ctx, slog.Int("user_id", u.ID))
}

// userFromContext returns the caller, or nil when nobody is identified.
func userFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// DevIdentity attaches the local dev user to every request.
func DevIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := devUser
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), &u)))
	})
}

// TailscaleIdentity looks up the peer behind each request and upserts it as
// a user. Requests whose peer cannot be resolved continue without a user,
// so handlers that need one answer 401.
func TailscaleIdentity(whois WhoIser, store storage.Store, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			who, err := whois.WhoIs(ctx, r.RemoteAddr)
			if err != nil || who == nil || who.UserProfile == nil {
				log.WarnContext(ctx, "tailscale whois failed", "remote", r.RemoteAddr, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			p := who.UserProfile
			id, err := store.GetOrCreateUser(ctx, p.LoginName, p.DisplayName, p.ProfilePicURL)
			if err != nil {
				log.ErrorContext(ctx, "resolving user", "login", p.LoginName, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			u := &models.User{ID: id, Login: p.LoginName, DisplayName: p.DisplayName, AvatarURL: p.ProfilePicURL}
			next.ServeHTTP(w, r.WithContext(withUser(ctx, u)))
		})
	}
}
