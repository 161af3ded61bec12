package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/somnolink/somnolink/internal/antecedents"
	"github.com/somnolink/somnolink/internal/api/respond"
	"github.com/somnolink/somnolink/internal/appointments"
	"github.com/somnolink/somnolink/internal/auth"
	"github.com/somnolink/somnolink/internal/directory"
	"github.com/somnolink/somnolink/internal/doctors"
	"github.com/somnolink/somnolink/internal/documents"
	httpmiddleware "github.com/somnolink/somnolink/internal/http/middleware"
	"github.com/somnolink/somnolink/internal/invitations"
	"github.com/somnolink/somnolink/internal/messaging"
	"github.com/somnolink/somnolink/internal/realtime"
	"github.com/somnolink/somnolink/internal/terminology"
	"github.com/somnolink/somnolink/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	JWTSecret          string
	CORSAllowedOrigins []string
	SearchRateLimit    float64
	SearchRateBurst    int

	AuthHandler         *auth.Handler
	DoctorsHandler      *doctors.Handler
	InvitationsHandler  *invitations.Handler
	AntecedentsHandler  *antecedents.Handler
	AppointmentsHandler *appointments.Handler
	MessagingHandler    *messaging.Handler
	TerminologyHandler  *terminology.Handler
	DirectoryHandler    *directory.Handler
	DocumentsHandler    *documents.Handler
	RealtimeHandler     *realtime.Handler
	MetricsHandler      http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		public.Route("/api/auth", func(r chi.Router) {
			r.Post("/signup", cfg.AuthHandler.Signup)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Get("/confirm", cfg.AuthHandler.Confirm)
		})

		// Invitation links resolve before the patient authenticates.
		public.Get("/api/join/{token}", cfg.InvitationsHandler.Resolve)

		// Search endpoints are public but rate limited: the signup funnel
		// uses doctor search before an account exists.
		public.Group(func(search chi.Router) {
			if cfg.SearchRateLimit > 0 {
				search.Use(httpmiddleware.RateLimit(cfg.SearchRateLimit, cfg.SearchRateBurst))
			}
			search.Get("/api/doctor-search", cfg.DirectoryHandler.SearchDoctors)
			search.Get("/api/medicaments-fr", cfg.DirectoryHandler.SearchMedications)
		})
	})

	// Authenticated endpoints
	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.SessionJWT(cfg.JWTSecret))

		private.Get("/api/terminology-search", cfg.TerminologyHandler.Search)
		private.Get("/api/realtime", cfg.RealtimeHandler.Serve)

		private.Post("/api/join/{token}/confirm", cfg.InvitationsHandler.ConfirmJoin)

		private.Route("/api/antecedents", func(r chi.Router) {
			r.Get("/", cfg.AntecedentsHandler.List)
			r.With(httpmiddleware.RequireRole(httpmiddleware.RolePatient)).Group(func(r chi.Router) {
				r.Post("/", cfg.AntecedentsHandler.Create)
				r.Put("/{id}", cfg.AntecedentsHandler.Update)
				r.Delete("/{id}", cfg.AntecedentsHandler.Delete)
			})
		})

		private.Route("/api/appointments", func(r chi.Router) {
			r.Get("/", cfg.AppointmentsHandler.List)
			r.Post("/", cfg.AppointmentsHandler.Create)
		})

		private.Route("/api/messaging", func(r chi.Router) {
			r.Get("/conversations", cfg.MessagingHandler.ListConversations)
			r.Post("/conversations", cfg.MessagingHandler.OpenConversation)
			r.Get("/conversations/{id}/messages", cfg.MessagingHandler.ListMessages)
			r.Post("/conversations/{id}/messages", cfg.MessagingHandler.SendMessage)
			r.Post("/conversations/{id}/read", cfg.MessagingHandler.MarkRead)
		})

		private.Route("/api/documents", func(r chi.Router) {
			r.Get("/", cfg.DocumentsHandler.List)
			r.Get("/{id}", cfg.DocumentsHandler.Download)
			r.With(httpmiddleware.RequireRole(httpmiddleware.RolePatient)).Group(func(r chi.Router) {
				r.Post("/", cfg.DocumentsHandler.Upload)
				r.Delete("/{id}", cfg.DocumentsHandler.Delete)
			})
		})

		// Doctor side
		private.Group(func(doctor chi.Router) {
			doctor.Use(httpmiddleware.RequireRole(httpmiddleware.RoleDoctor))
			doctor.Get("/api/doctor/profile", cfg.DoctorsHandler.GetProfile)
			doctor.Post("/api/doctor/invitation-token", cfg.DoctorsHandler.RegenerateToken)
			doctor.Put("/api/doctor/invitation-token", cfg.DoctorsHandler.UpdateToken)
			doctor.Post("/api/send-invitation", cfg.InvitationsHandler.SendInvitation)
			doctor.Get("/api/doctor/patients", cfg.InvitationsHandler.ListForDoctor)
			doctor.Post("/api/invitations/{id}/accept", cfg.InvitationsHandler.Accept)
			doctor.Post("/api/invitations/{id}/reject", cfg.InvitationsHandler.Reject)
		})

		// Patient side
		private.Group(func(patient chi.Router) {
			patient.Use(httpmiddleware.RequireRole(httpmiddleware.RolePatient))
			patient.Get("/api/patient/doctors", cfg.InvitationsHandler.ListForPatient)
			patient.Post("/api/invitations/request", cfg.InvitationsHandler.Request)
		})
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
