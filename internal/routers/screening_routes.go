package routers

import (
	"knackhook/screening/internal/handlers"
	"knackhook/screening/internal/middleware"
	"knackhook/screening/internal/models"

	"github.com/go-chi/chi/v5"
)

func ScreeningRoutes(router *chi.Mux, screeningHandler *handlers.ScreeningHandler) {
	router.Route("/api/v1/screening", func(r chi.Router) {
		r.Get("/", screeningHandler.StateHandler)
		r.With(middleware.ValidateRequest[*models.StartScreeningRequest]()).Post("/input", screeningHandler.StartHandler)
		r.With(middleware.ValidateRequest[*models.AnswerRequest]()).Post("/answers", screeningHandler.AnswerHandler)
		r.With(middleware.ValidateRequest[*models.SubmitRequest]()).Post("/submit", screeningHandler.SubmitHandler)
		r.Post("/restart", screeningHandler.RestartHandler)
	})
	router.Route("/api/v1/result", func(r chi.Router) {
		r.Get("/", screeningHandler.ResultHandler)
		r.Get("/export", screeningHandler.ExportHandler)
	})
}
