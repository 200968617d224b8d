package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes registers the public site routes and the authenticated admin routes
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, contactLimiter *ipRateLimiter, metrics *httpMetrics) {
	r.Get("/healthz", handlers.healthHandler.healthz())
	r.Handle("/metrics", metrics.handler())

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/projects", handlers.projectHandler.getAllProjects())
		r.Get("/project/{projectID}", handlers.projectHandler.getProject())
		r.Post("/auth/login", handlers.authHandler.login())

		r.With(contactLimiter.middleware(handlers.contactHandler.responder)).
			Post("/contact", handlers.contactHandler.sendMessage())
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)

		r.Get("/auth/me", handlers.authHandler.me())

		r.Post("/project", handlers.projectHandler.createProject())
		r.Put("/project/{projectID}", handlers.projectHandler.updateProject())
		r.Delete("/project/{projectID}", handlers.projectHandler.deleteProject())

		r.Post("/upload", handlers.uploadHandler.uploadThumbnail())
	})
}
