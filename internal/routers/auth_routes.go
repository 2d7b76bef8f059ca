package routers

import (
	"knackhook/screening/internal/handlers"
	"knackhook/screening/internal/middleware"
	"knackhook/screening/internal/models"

	"github.com/go-chi/chi/v5"
)

func AuthRoutes(router *chi.Mux, authHandler *handlers.AuthHandler) {
	router.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.RegisterRequest]()).Post("/register", authHandler.RegisterHandler)
		r.With(middleware.ValidateRequest[*models.LoginRequest]()).Post("/login", authHandler.LoginHandler)
		r.Post("/logout", authHandler.LogoutHandler)
		r.Get("/me", authHandler.MeHandler)
	})
}
