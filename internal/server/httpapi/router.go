package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.Post("/auth/refresh", s.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/users/me", s.handleGetCurrentUser)
			r.Get("/users/me/logins", s.handleRecentLogins)
			r.Put("/users/{userID}", s.handleUpdateProfile)
			r.Put("/users/{userID}/password", s.handleChangePassword)
			r.Delete("/users/{userID}", s.handleDeleteUser)

			r.Post("/groups", s.handleCreateGroup)
			r.Get("/groups", s.handleListGroups)
			r.Route("/groups/{groupID}", func(r chi.Router) {
				r.Get("/", s.handleGetGroup)
				r.Put("/", s.handleUpdateGroup)
				r.Delete("/", s.handleDeleteGroup)

				r.Get("/members", s.handleListMembers)
				r.Post("/members", s.handleJoinGroup)
				r.Delete("/members", s.handleLeaveGroup)

				r.Get("/ledger", s.handleListEntries)
				r.Post("/ledger", s.handleAddEntry)
				r.Get("/ledger/summary", s.handleLedgerSummary)
				r.Put("/ledger/{entryID}", s.handleUpdateEntry)
				r.Delete("/ledger/{entryID}", s.handleRemoveEntry)
				r.Post("/ledger/{entryID}/receipt", s.handleCreateReceipt)
				r.Put("/ledger/{entryID}/receipt", s.handleConfirmReceipt)
				r.Get("/ledger/{entryID}/receipt", s.handleGetReceipt)

				r.Get("/plans", s.handleListPlans)
				r.Post("/plans", s.handleCreatePlan)
				r.Delete("/plans/{planID}", s.handleDeletePlan)

				r.Get("/events", s.handleListEvents)
				r.Post("/events", s.handleCreateEvent)
				r.Delete("/events/{eventID}", s.handleDeleteEvent)
				r.Put("/events/{eventID}/rsvp", s.handleRSVP)
				r.Get("/events/{eventID}/rsvp", s.handleListRSVPs)
			})
		})
	})

	return r
}
