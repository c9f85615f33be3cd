package httpapi

import (
	"net/http"
	"time"

	"github.com/grouptab/grouptab/internal/server/auth"
)

const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
)

// attachTokenCookies sets both session cookies. HttpOnly keeps them away
// from scripts; Secure is config-driven so local development over plain
// HTTP still works.
func (s *Server) attachTokenCookies(w http.ResponseWriter, pair *auth.TokenPair) {
	http.SetCookie(w, s.tokenCookie(accessCookieName, pair.AccessToken, s.cfg.AccessTokenValidityDuration))
	http.SetCookie(w, s.tokenCookie(refreshCookieName, pair.RefreshToken, s.cfg.RefreshTokenValidityDuration))
}

// clearTokenCookies overwrites both cookies with an immediate expiry.
// Logout is exactly this: tokens are stateless, so clearing the cookies is
// the whole revocation story.
func (s *Server) clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{accessCookieName, refreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   s.cfg.SecureCookies,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}

func (s *Server) tokenCookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	}
}
