package engine

import "github.com/gofiber/fiber/v2"

// RegisterFormRoutes registers the public form runtime routes.
func RegisterFormRoutes(app *fiber.App, h *Handler, u *UploadHandler) {
	api := app.Group("/api")

	api.Get("/forms/:slug", h.GetForm)
	api.Post("/forms/:slug/validate", h.Validate)
	api.Post("/forms/:slug/visibility", h.Visibility)
	api.Post("/forms/:slug/submit", h.Submit)
	api.Post("/uploads", u.Upload)
}
