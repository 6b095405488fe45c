package builder

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"formsmith-backend/internal/instrument"
	"formsmith-backend/internal/metadata"
	"formsmith-backend/internal/store"
)

// Handler is the authoring surface. Forms are edited as whole documents:
// every write replaces the JSONB definition and reloads the registry so
// the runtime always serves the latest published snapshot.
type Handler struct {
	store    *store.Store
	registry *metadata.Registry
}

func NewHandler(s *store.Store, reg *metadata.Registry) *Handler {
	return &Handler{store: s, registry: reg}
}

func RegisterBuilderRoutes(app *fiber.App, h *Handler, middleware ...fiber.Handler) {
	grp := app.Group("/api/builder", middleware...)

	grp.Get("/forms", h.ListForms)
	grp.Get("/forms/:id", h.GetForm)
	grp.Post("/forms", h.CreateForm)
	grp.Put("/forms/:id", h.UpdateForm)
	grp.Delete("/forms/:id", h.DeleteForm)
	grp.Post("/forms/:id/publish", h.PublishForm)
	grp.Post("/forms/:id/unpublish", h.UnpublishForm)
}

func (h *Handler) ListForms(c *fiber.Ctx) error {
	rows, err := store.QueryRows(c.Context(), h.store.Pool,
		"SELECT id, slug, published, created_at, updated_at FROM _forms ORDER BY slug")
	if err != nil {
		return fmt.Errorf("list forms: %w", err)
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return c.JSON(fiber.Map{"data": rows})
}

func (h *Handler) GetForm(c *fiber.Ctx) error {
	id := c.Params("id")
	row, err := store.QueryRow(c.Context(), h.store.Pool,
		"SELECT id, slug, published, definition, created_at, updated_at FROM _forms WHERE id = $1", id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": fiber.Map{"code": "NOT_FOUND", "message": "Form not found: " + id}})
	}
	return c.JSON(fiber.Map{"data": row})
}

func (h *Handler) CreateForm(c *fiber.Ctx) error {
	_, span := instrument.GetInstrumenter(c.UserContext()).StartSpan(c.UserContext(), "builder", "forms", "form.create")
	defer span.End()

	var form metadata.Form
	if err := c.BodyParser(&form); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": fiber.Map{"code": "INVALID_PAYLOAD", "message": "Invalid JSON body"}})
	}

	if err := validateForm(&form); err != nil {
		return c.Status(422).JSON(fiber.Map{"error": fiber.Map{"code": "VALIDATION_FAILED", "message": err.Error()}})
	}

	// New forms always start as drafts.
	form.Published = false

	defJSON, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("marshal form: %w", err)
	}

	row, err := store.QueryRow(c.Context(), h.store.Pool,
		"INSERT INTO _forms (slug, published, definition) VALUES ($1, false, $2) RETURNING id",
		form.Slug, defJSON)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": fiber.Map{"code": "CONFLICT", "message": "Form slug already exists: " + form.Slug}})
		}
		return fmt.Errorf("insert form: %w", err)
	}
	form.ID, _ = row["id"].(string)
	span.SetForm(form.Slug, form.ID)

	if err := metadata.Reload(c.Context(), h.store.Pool, h.registry); err != nil {
		return fmt.Errorf("reload registry: %w", err)
	}

	span.SetStatus("ok")
	return c.Status(201).JSON(fiber.Map{"data": form})
}

func (h *Handler) UpdateForm(c *fiber.Ctx) error {
	_, span := instrument.GetInstrumenter(c.UserContext()).StartSpan(c.UserContext(), "builder", "forms", "form.update")
	defer span.End()

	id := c.Params("id")
	span.SetForm("", id)
	existing := h.registry.GetForm(id)
	if existing == nil {
		return c.Status(404).JSON(fiber.Map{"error": fiber.Map{"code": "NOT_FOUND", "message": "Form not found: " + id}})
	}

	var form metadata.Form
	if err := c.BodyParser(&form); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": fiber.Map{"code": "INVALID_PAYLOAD", "message": "Invalid JSON body"}})
	}
	form.ID = id
	// Publication state changes only through the publish endpoints.
	form.Published = existing.Published

	if err := validateForm(&form); err != nil {
		return c.Status(422).JSON(fiber.Map{"error": fiber.Map{"code": "VALIDATION_FAILED", "message": err.Error()}})
	}

	defJSON, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("marshal form: %w", err)
	}

	_, err = store.Exec(c.Context(), h.store.Pool,
		"UPDATE _forms SET slug = $1, definition = $2, updated_at = NOW() WHERE id = $3",
		form.Slug, defJSON, id)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": fiber.Map{"code": "CONFLICT", "message": "Form slug already exists: " + form.Slug}})
		}
		return fmt.Errorf("update form %s: %w", id, err)
	}

	if err := metadata.Reload(c.Context(), h.store.Pool, h.registry); err != nil {
		return fmt.Errorf("reload registry: %w", err)
	}

	span.SetStatus("ok")
	return c.JSON(fiber.Map{"data": form})
}

func (h *Handler) DeleteForm(c *fiber.Ctx) error {
	_, span := instrument.GetInstrumenter(c.UserContext()).StartSpan(c.UserContext(), "builder", "forms", "form.delete")
	defer span.End()

	id := c.Params("id")
	span.SetForm("", id)
	existing := h.registry.GetForm(id)
	if existing == nil {
		return c.Status(404).JSON(fiber.Map{"error": fiber.Map{"code": "NOT_FOUND", "message": "Form not found: " + id}})
	}

	// Submissions cascade with the form row.
	_, err := store.Exec(c.Context(), h.store.Pool,
		"DELETE FROM _forms WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete form %s: %w", id, err)
	}

	if err := metadata.Reload(c.Context(), h.store.Pool, h.registry); err != nil {
		return fmt.Errorf("reload registry: %w", err)
	}

	span.SetStatus("ok")
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "deleted": true}})
}

func (h *Handler) PublishForm(c *fiber.Ctx) error {
	return h.setPublished(c, true)
}

func (h *Handler) UnpublishForm(c *fiber.Ctx) error {
	return h.setPublished(c, false)
}

func (h *Handler) setPublished(c *fiber.Ctx, published bool) error {
	_, span := instrument.GetInstrumenter(c.UserContext()).StartSpan(c.UserContext(), "builder", "forms", "form.publish")
	defer span.End()

	id := c.Params("id")
	span.SetForm("", id)
	span.SetMetadata("published", published)
	existing := h.registry.GetForm(id)
	if existing == nil {
		return c.Status(404).JSON(fiber.Map{"error": fiber.Map{"code": "NOT_FOUND", "message": "Form not found: " + id}})
	}

	_, err := store.Exec(c.Context(), h.store.Pool,
		"UPDATE _forms SET published = $1, updated_at = NOW() WHERE id = $2", published, id)
	if err != nil {
		return fmt.Errorf("set published on form %s: %w", id, err)
	}

	if err := metadata.Reload(c.Context(), h.store.Pool, h.registry); err != nil {
		return fmt.Errorf("reload registry: %w", err)
	}

	span.SetStatus("ok")
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "published": published}})
}

// --- Validation ---

func validateForm(f *metadata.Form) error {
	if f.Slug == "" {
		return fmt.Errorf("form slug is required")
	}
	if len(f.Pages) == 0 {
		return fmt.Errorf("form must have at least one page")
	}

	seen := make(map[string]bool)
	for _, page := range f.Pages {
		for i := range page.Fields {
			field := &page.Fields[i]
			if field.ID == "" {
				return fmt.Errorf("field id is required on page %s", page.ID)
			}
			if seen[field.ID] {
				return fmt.Errorf("duplicate field id: %s", field.ID)
			}
			seen[field.ID] = true
			if field.Type.HasOptions() && len(field.Options) == 0 {
				return fmt.Errorf("field %s requires options", field.ID)
			}
		}
	}

	// Conditions may only reference fields that exist in the same form.
	for _, page := range f.Pages {
		for i := range page.Fields {
			field := &page.Fields[i]
			if field.Conditional == nil {
				continue
			}
			for _, rule := range field.Conditional.ShowWhen {
				if rule.FieldID == field.ID {
					return fmt.Errorf("field %s condition references itself", field.ID)
				}
				if rule.FieldID != "" && !seen[rule.FieldID] {
					return fmt.Errorf("field %s condition references unknown field: %s", field.ID, rule.FieldID)
				}
			}
		}
	}

	if f.Mapping != nil {
		if f.Mapping.PrimaryTable == "" {
			return fmt.Errorf("mapping primary_table is required")
		}
		for fieldID := range f.Mapping.Fields {
			if !seen[fieldID] {
				return fmt.Errorf("mapping references unknown field: %s", fieldID)
			}
		}
	}

	return nil
}
