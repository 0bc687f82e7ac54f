/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/members/*         Member management
  /api/bungs/*           Bung schedule + attendance
  /api/regular*          Regular-meeting league
  /api/logs              Personal practice logs
  /api/reports/*         Ranking, calendar, monthly, season reports
  /api/draw/*            Team / group drawing

SECURITY NOTE:
  No authentication middleware. The server is meant to sit behind the
  club's private deployment.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Unknown paths and wrong methods answer in the same JSON envelope
	// as the handlers.
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Member routes
		r.Route("/members", func(r chi.Router) {
			r.Get("/", h.ListMembers)
			r.Post("/", h.CreateMember)
			r.Patch("/", h.PatchMember)
			r.Put("/", h.PutMember)
			r.Delete("/", h.DeleteMember)
		})

		r.Get("/patterns", h.ListPatterns)

		// Bung routes
		r.Route("/bungs", func(r chi.Router) {
			r.Get("/", h.ListBungs)
			r.Post("/", h.UpsertBung)
			r.Delete("/", h.DeleteBung)
		})
		r.Route("/bung-attendees", func(r chi.Router) {
			r.Get("/", h.ListAttendees)
			r.Post("/", h.AddAttendee)
			r.Delete("/", h.RemoveAttendee)
		})

		// Practice-log routes
		r.Route("/logs", func(r chi.Router) {
			r.Get("/", h.ListDailyLogs)
			r.Post("/", h.SaveDailyLog)
		})

		// Regular-meeting routes
		r.Route("/regular-meetings", func(r chi.Router) {
			r.Get("/", h.ListRegularMeetings)
			r.Post("/", h.UpsertRegularMeeting)
		})
		r.Route("/regular-results", func(r chi.Router) {
			r.Get("/", h.ListRegularResults)
			r.Post("/", h.SubmitRegularResult)
		})
		r.Route("/regular", func(r chi.Router) {
			r.Post("/games", h.SaveRegularGames)
			r.Get("/meetings", h.ListMeetingSummaries)
			r.Get("/meeting", h.GetMeetingLeaderboard)
			r.Post("/participants", h.AddParticipant)
			r.Delete("/participants", h.RemoveParticipant)
		})
		// Older clients post game scores here.
		r.Post("/regular-games", h.SaveRegularGames)

		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Route("/bungs", func(r chi.Router) {
				r.Get("/ranking", h.BungRanking)
				r.Get("/calendar", h.BungCalendar)
				r.Get("/day", h.BungDay)
				r.Get("/member", h.MemberBungs)
			})
			r.Get("/monthly", h.MonthlyReport)
			r.Get("/season", h.SeasonReport)
		})

		// Drawing routes
		r.Route("/draw", func(r chi.Router) {
			r.Post("/teams", h.DrawTeams)
			r.Post("/groups", h.DrawGroups)
		})
	})

	return r
}
