package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/eventika/venue-api/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gorillaHandlers "github.com/gorilla/handlers"
)

type Handlers struct {
	Auth      *auth.AuthHandler
	Calendar  *CalendarHandler
	Booking   *BookingHandler
	Analytics *AnalyticsHandler
	APIKeys   *APIKeyHandler
}

// CORS lets the frontend origin call the API with its session cookie.
func CORS(origin string) func(http.Handler) http.Handler {
	return gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{origin}),
		gorillaHandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "X-API-KEY", "Idempotency-Key"}),
		gorillaHandlers.AllowCredentials(),
	)
}

func RegisterRoutes(r *chi.Mux, h Handlers) huma.API {
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(h.Auth.SessionMiddleware)

	// Initialize Huma API
	config := huma.DefaultConfig("Eventika Venue API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
		"apiKeyAuth": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, config)

	secured := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}, {"apiKeyAuth": {}}}
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Auth routes
	r.Get("/auth/discord/login", h.Auth.HandleLogin)
	r.Get("/auth/discord/callback", h.Auth.HandleCallback)
	huma.Get(api, "/auth/me", h.Auth.HandleMe)
	huma.Post(api, "/auth/logout", h.Auth.HandleLogout)
	huma.Get(api, "/auth/owner", h.Auth.HandleOwnerCheck)

	// Booking
	huma.Post(api, "/booking/estimate", h.Booking.HandleEstimate)
	huma.Get(api, "/booking/units", h.Booking.HandleUnits)
	huma.Post(api, "/booking/submit", h.Booking.HandleSubmit)

	// Calendar
	huma.Get(api, "/calendar/booked-dates", h.Calendar.HandleList)
	huma.Get(api, "/calendar/admin/booked-dates", h.Calendar.HandleAdminList, secured)
	huma.Get(api, "/calendar/admin/history", h.Calendar.HandleHistory, secured)
	huma.Post(api, "/calendar/booked-dates", h.Calendar.HandleAdd, secured)
	huma.Put(api, "/calendar/booked-dates/{date}", h.Calendar.HandleUpdate, secured)
	huma.Delete(api, "/calendar/booked-dates/{date}", h.Calendar.HandleRemove, secured)

	// Owner tools
	huma.Get(api, "/analytics/stats", h.Analytics.HandleStats, secured)
	huma.Get(api, "/api-keys", h.APIKeys.HandleList, secured)
	huma.Post(api, "/api-keys", h.APIKeys.HandleCreate, secured)
	huma.Delete(api, "/api-keys/{id}", h.APIKeys.HandleDelete, secured)

	return api
}
