package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/grouptab/grouptab/internal/common"
	"github.com/grouptab/grouptab/internal/server/auth"
)

type contextKey string

const principalKey contextKey = "principal"

// requireAuth validates the access-token cookie (with an Authorization
// bearer fallback for non-browser clients) and injects the resulting
// principal into the request context. No valid token, no handler.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if c, err := r.Cookie(accessCookieName); err == nil {
			token = c.Value
		} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}
		if token == "" {
			respondError(w, common.ErrorUnauthorized)
			return
		}

		p, err := s.issuer.ParseAccessToken(token)
		if err != nil {
			respondError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, *p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// principalFrom extracts the authenticated principal placed by requireAuth.
func principalFrom(ctx context.Context) (auth.Principal, error) {
	p, ok := ctx.Value(principalKey).(auth.Principal)
	if !ok {
		return auth.Principal{}, common.ErrorUnauthorized
	}
	return p, nil
}

// logRequests emits one structured line per request after it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
