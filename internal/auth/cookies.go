package auth

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andriandrian/lifeline-admin/internal/models"
	"github.com/andriandrian/lifeline-admin/internal/session"
)

type CookieOptions struct {
	Domain string
	Secure bool
}

func formatDomain(domain string) string {
	if domain != "" && domain != "localhost" && !strings.HasPrefix(domain, ".") {
		return "." + domain
	}
	return domain
}

func (o CookieOptions) cookie(name, value string, maxAge time.Duration, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   formatDomain(o.Domain),
		MaxAge:   int(maxAge.Seconds()),
		Secure:   o.Secure,
		HttpOnly: httpOnly,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetSessionCookies writes both tokens as HttpOnly cookies plus the script-readable identity mirror.
func (m *Manager) SetSessionCookies(w http.ResponseWriter, s *models.Session, opts CookieOptions) {
	http.SetCookie(w, opts.cookie(session.AccessCookie, s.AccessToken, m.tokens.accessTTL, true))
	http.SetCookie(w, opts.cookie(session.RefreshCookie, s.RefreshToken, m.tokens.refreshTTL, true))
	http.SetCookie(w, opts.cookie(session.NameCookie, s.User.Name, m.tokens.refreshTTL, false))
	http.SetCookie(w, opts.cookie(session.UserIDCookie, strconv.FormatInt(s.User.ID, 10), m.tokens.refreshTTL, false))
}

func (m *Manager) SetAccessCookie(w http.ResponseWriter, accessToken string, opts CookieOptions) {
	http.SetCookie(w, opts.cookie(session.AccessCookie, accessToken, m.tokens.accessTTL, true))
}

// ClearSessionCookies expires every session cookie. It is safe to call without a session.
func ClearSessionCookies(w http.ResponseWriter, opts CookieOptions) {
	for _, name := range session.All {
		c := opts.cookie(name, "", 0, name == session.AccessCookie || name == session.RefreshCookie)
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}
