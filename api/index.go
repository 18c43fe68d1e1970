// Package api assembles the HTTP surface: one chi router carrying every
// endpoint, with the middleware chain applied globally.
package api

import (
	"net/http"
	"time"

	"soundlicense-backend/pkg/config"
	"soundlicense-backend/pkg/covers"
	"soundlicense-backend/pkg/database"
	"soundlicense-backend/pkg/handlers"
	"soundlicense-backend/pkg/mailer"
	customMiddleware "soundlicense-backend/pkg/middleware"
	"soundlicense-backend/pkg/storage"
	"soundlicense-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps carries the constructed collaborators the router wires together.
type Deps struct {
	Config   *config.Config
	DB       database.Store
	Storage  storage.Storage
	Queue    mailer.Queue
	Resolver *covers.Resolver
}

// NewRouter builds the application router.
func NewRouter(deps Deps) http.Handler {
	router := chi.NewRouter()

	setupMiddleware(router, deps.Config)
	setupRoutes(router, deps)

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	// Normalize path and restore scheme/host before logging and routing
	router.Use(customMiddleware.Normalize())
	router.Use(customMiddleware.Logger(cfg))
	router.Use(customMiddleware.Recovery(cfg))

	router.Use(customMiddleware.CORS(cfg))

	router.Use(middleware.Timeout(25 * time.Second))
	router.Use(middleware.Compress(5))

	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

func setupRoutes(router *chi.Mux, deps Deps) {
	cfg := deps.Config
	db := deps.DB

	authHandler := handlers.NewAuthHandler(cfg, db)
	trackHandler := handlers.NewTrackHandler(db, deps.Storage, deps.Resolver)
	artistHandler := handlers.NewArtistHandler(db, deps.Storage)
	showHandler := handlers.NewShowHandler(db)
	adminTrackHandler := handlers.NewAdminTrackHandler(db, deps.Storage)
	cartHandler := handlers.NewCartHandler(db)
	licenseHandler := handlers.NewLicenseHandler(db)
	collabHandler := handlers.NewCollaborationHandler(db, deps.Storage)
	campaignHandler := handlers.NewCampaignHandler(db, deps.Queue, deps.Storage, deps.Resolver)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, "Endpoint not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Landing page doubles as the public catalog
	router.Get("/", trackHandler.ListTracks)

	router.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(); err != nil {
			utils.WriteInternalServerErrorResponse(w, "Database unreachable")
			return
		}
		utils.WriteSuccessResponse(w, map[string]interface{}{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})

	router.Route("/api", func(r chi.Router) {
		// Public routes
		r.Route("/auth", func(r chi.Router) {
			r.Use(customMiddleware.ContentTypeJSON)
			r.Use(customMiddleware.MaxBodySize(1 << 20))
			r.Post("/artist-signup", authHandler.ArtistSignup)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		r.Get("/tracks", trackHandler.ListTracks)
		r.Get("/tracks/{id}", trackHandler.GetTrack)
		r.Get("/tracks/{id}/cover", trackHandler.GetTrackCover)
		r.Get("/artists", artistHandler.ListArtists)
		r.Get("/artists/{id}", artistHandler.GetArtist)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.AuthMiddleware(cfg))

			r.Route("/artist", func(r chi.Router) {
				r.Get("/profile", artistHandler.GetProfile)
				r.Patch("/profile", artistHandler.UpdateProfile)
				r.With(customMiddleware.ContentTypeJSON).Post("/shows", showHandler.CreateShow)
				r.Get("/campaigns/context", campaignHandler.Context)
				r.With(customMiddleware.ContentTypeJSON).Post("/campaigns/send", campaignHandler.Send)
			})

			// Track management; uploads are multipart so no JSON gate here
			r.Route("/admin/tracks", func(r chi.Router) {
				r.Get("/", adminTrackHandler.ListTracks)
				r.Post("/", adminTrackHandler.CreateTrack)
				r.Get("/{id}", adminTrackHandler.GetTrack)
				r.Put("/{id}", adminTrackHandler.UpdateTrack)
				r.Delete("/{id}", adminTrackHandler.DeleteTrack)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.With(customMiddleware.ContentTypeJSON).Post("/items", cartHandler.AddItem)
				r.Delete("/items/{id}", cartHandler.RemoveItem)
			})

			r.Route("/license-requests", func(r chi.Router) {
				r.With(customMiddleware.ContentTypeJSON).Post("/", licenseHandler.CreateLicenseRequest)
				r.Get("/", licenseHandler.ListLicenseRequests)
				r.Get("/{id}", licenseHandler.GetLicenseRequest)
				r.With(customMiddleware.ContentTypeJSON).Post("/{id}/status", licenseHandler.UpdateStatus)
				r.Delete("/{id}", licenseHandler.DeleteLicenseRequest)

				// Collaboration thread lives under its request
				r.Post("/{id}/messages", collabHandler.SendMessage)
				r.Get("/{id}/messages", collabHandler.ListMessages)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Post("/{id}/read", collabHandler.MarkRead)
				r.Get("/unread-count", collabHandler.UnreadCount)
			})
		})
	})
}
