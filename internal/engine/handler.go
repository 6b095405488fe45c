package engine

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"formsmith-backend/internal/instrument"
	"formsmith-backend/internal/metadata"
	"formsmith-backend/internal/notify"
	"formsmith-backend/internal/rules"
	"formsmith-backend/internal/store"
	"formsmith-backend/internal/submission"
)

// Handler serves the end-user form runtime: rendering, validation,
// visibility resolution, and submission intake.
type Handler struct {
	store     *store.Store
	registry  *metadata.Registry
	evaluator ExpressionEvaluator
	notifier  notify.Notifier
}

func NewHandler(s *store.Store, reg *metadata.Registry, notifier notify.Notifier) *Handler {
	return &Handler{
		store:     s,
		registry:  reg,
		evaluator: NewExprLangEvaluator(),
		notifier:  notifier,
	}
}

type answersBody struct {
	Answers map[string]any `json:"answers"`
}

// GetForm handles GET /api/forms/:slug. It returns the published form
// document a renderer needs, including rule descriptors and conditional
// logic.
func (h *Handler) GetForm(c *fiber.Ctx) error {
	form, err := h.resolvePublishedForm(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": form})
}

// Visibility handles POST /api/forms/:slug/visibility. The renderer posts
// the current answer snapshot on every relevant change and diffs the
// returned map against what it shows.
func (h *Handler) Visibility(c *fiber.Ctx) error {
	form, err := h.resolvePublishedForm(c)
	if err != nil {
		return err
	}

	var body answersBody
	if err := c.BodyParser(&body); err != nil {
		return NewAppError("INVALID_PAYLOAD", 400, "Invalid request body")
	}

	visible := rules.ResolveVisibility(form.FieldIDs(), form.FieldIndex(), body.Answers)
	return c.JSON(fiber.Map{"data": visible})
}

// Validate handles POST /api/forms/:slug/validate, dry-run validation
// for the live renderer and the builder preview.
func (h *Handler) Validate(c *fiber.Ctx) error {
	_, span := instrument.GetInstrumenter(c.UserContext()).StartSpan(c.UserContext(), "engine", "validate", "form.validate")
	defer span.End()

	form, err := h.resolvePublishedForm(c)
	if err != nil {
		span.SetStatus("error")
		return err
	}
	span.SetForm(form.Slug, "")

	var body answersBody
	if err := c.BodyParser(&body); err != nil {
		span.SetStatus("error")
		return NewAppError("INVALID_PAYLOAD", 400, "Invalid request body")
	}

	details := ValidateAnswers(form, body.Answers)
	span.SetMetadata("failures", len(details))
	span.SetStatus("ok")
	return c.JSON(fiber.Map{"data": fiber.Map{
		"valid":  len(details) == 0,
		"errors": details,
	}})
}

// Submit handles POST /api/forms/:slug/submit. The full pipeline runs
// here: visibility-aware validation, form-level expression rules, field
// mapping, persistence, then webhook notification.
func (h *Handler) Submit(c *fiber.Ctx) error {
	ctx, span := instrument.GetInstrumenter(c.UserContext()).StartSpan(c.UserContext(), "engine", "submit", "form.submit")
	defer span.End()

	form, err := h.resolvePublishedForm(c)
	if err != nil {
		span.SetStatus("error")
		return err
	}
	span.SetForm(form.Slug, "")

	var body answersBody
	if err := c.BodyParser(&body); err != nil {
		span.SetStatus("error")
		return NewAppError("INVALID_PAYLOAD", 400, "Invalid request body")
	}
	answers := body.Answers
	if answers == nil {
		answers = map[string]any{}
	}

	details := ValidateAnswers(form, answers)
	details = append(details, EvaluateSubmissionRules(h.evaluator, form, answers)...)
	if len(details) > 0 {
		span.SetStatus("error")
		span.SetMetadata("failures", len(details))
		return ValidationError(details)
	}

	mapped := submission.Process(form.Mapping, answers)

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	mappedJSON, err := json.Marshal(mapped.Mapped)
	if err != nil {
		return fmt.Errorf("marshal mapped payload: %w", err)
	}
	errorsJSON, err := json.Marshal(mapped.Errors)
	if err != nil {
		return fmt.Errorf("marshal mapping errors: %w", err)
	}

	row, err := store.QueryRow(c.Context(), h.store.Pool,
		`INSERT INTO _submissions (form_id, answers, mapped, errors)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		form.ID, answersJSON, mappedJSON, errorsJSON)
	if err != nil {
		span.SetStatus("error")
		return fmt.Errorf("insert submission: %w", err)
	}

	submissionID, _ := row["id"].(string)
	span.SetForm(form.Slug, submissionID)

	if h.notifier != nil && len(form.Webhooks) > 0 {
		payload := notify.BuildPayload(form, submissionID, answers, mapped.Mapped)
		h.notifier.Notify(ctx, form.Webhooks, payload)
	}

	span.SetStatus("ok")
	return c.Status(201).JSON(fiber.Map{"data": fiber.Map{
		"id":             submissionID,
		"created_at":     row["created_at"],
		"mapping_errors": mapped.Errors,
	}})
}

// ValidateAnswers resolves visibility for the whole form and validates
// every visible field's answer against its compiled contract. Hidden
// fields are skipped entirely: their rules do not apply while the field
// is not shown.
func ValidateAnswers(form *metadata.Form, answers map[string]any) []ErrorDetail {
	fields := form.FieldIndex()
	visible := rules.ResolveVisibility(form.FieldIDs(), fields, answers)

	var details []ErrorDetail
	for _, id := range form.FieldIDs() {
		if !visible[id] {
			continue
		}
		field := fields[id]

		contract := rules.BuildValidationContract(field)
		for operator, pred := range contract {
			if res := pred(answers[id]); !res.Valid() {
				details = append(details, ErrorDetail{
					Field:   id,
					Rule:    operator,
					Message: res.Message(),
				})
			}
		}
	}
	return details
}

func (h *Handler) resolvePublishedForm(c *fiber.Ctx) (*metadata.Form, error) {
	slug := c.Params("slug")
	form := h.registry.GetFormBySlug(slug)
	if form == nil || !form.Published {
		return nil, UnknownFormError(slug)
	}
	return form, nil
}

