package instrument

import "github.com/gofiber/fiber/v2"

// Middleware attaches the instrumenter to each request's user context so
// handlers can start spans via GetInstrumenter.
func Middleware(inst Instrumenter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(WithInstrumenter(c.UserContext(), inst))
		return c.Next()
	}
}

// Handler exposes recorded spans for inspection.
type Handler struct {
	recorder *Recorder
}

func NewHandler(recorder *Recorder) *Handler {
	return &Handler{recorder: recorder}
}

// List handles GET /api/instrument/spans (admin only).
func (h *Handler) List(c *fiber.Ctx) error {
	if h.recorder == nil {
		return c.JSON(fiber.Map{"data": []Event{}})
	}

	events := h.recorder.Events()

	if action := c.Query("action"); action != "" {
		filtered := events[:0]
		for _, e := range events {
			if e.Action == action {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	return c.JSON(fiber.Map{"data": events})
}
