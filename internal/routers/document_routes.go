package routers

import (
	"knackhook/screening/internal/handlers"

	"github.com/go-chi/chi/v5"
)

func DocumentRoutes(router *chi.Mux, extractHandler *handlers.ExtractHandler, saveHandler *handlers.SaveHandler) {
	router.Post("/api/v1/extract", extractHandler.ExtractHandler)
	router.Post("/api/v1/save", saveHandler.SaveHandler)
}
