package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/mail"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"pagewatch/internal/db"
	"pagewatch/internal/detect"
	"pagewatch/internal/models"
	"pagewatch/internal/validation"
)

// TargetStore is the persistence the target API needs.
type TargetStore interface {
	ListTargets(ctx context.Context, limit, offset int) ([]models.Target, error)
	CreateTarget(ctx context.Context, t *models.Target) error
	GetTargetByID(ctx context.Context, id uuid.UUID) (*models.Target, error)
	UpdateTarget(ctx context.Context, t *models.Target) error
	DeleteTarget(ctx context.Context, id uuid.UUID) error
	ListAlerts(ctx context.Context, targetID uuid.UUID, limit int) ([]models.Alert, error)
	GetAlertByID(ctx context.Context, id uuid.UUID) (*models.Alert, error)
}

// TargetRunner runs the detection pipeline for a target on demand.
type TargetRunner interface {
	RunTarget(ctx context.Context, id uuid.UUID) (*models.RunResult, error)
}

// TargetHandler handles target CRUD operations via JSON API.
type TargetHandler struct {
	db     TargetStore
	runner TargetRunner
}

// NewTargetHandler creates a new API target handler.
func NewTargetHandler(store TargetStore, runner TargetRunner) *TargetHandler {
	return &TargetHandler{db: store, runner: runner}
}

type targetRequest struct {
	Name        string   `json:"name"`
	URLs        []string `json:"urls"`
	Keywords    []string `json:"keywords"`
	NotifyEmail string   `json:"notify_email"`
	Active      *bool    `json:"active"`
}

// apply validates the request and copies it onto t.
func (r *targetRequest) apply(t *models.Target) (bool, string) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return false, "name is required"
	}

	urls := validation.NormalizeURLs(r.URLs)
	if valid, msg := validation.ValidateURLs(urls); !valid {
		return false, msg
	}

	keywords := validation.NormalizeKeywords(r.Keywords)
	if valid, msg := validation.ValidateKeywords(keywords); !valid {
		return false, msg
	}

	notify := strings.TrimSpace(r.NotifyEmail)
	if notify != "" {
		if _, err := mail.ParseAddress(notify); err != nil {
			return false, "notify_email is not a valid email address"
		}
	}

	t.Name = name
	t.URLs = urls
	t.Keywords = keywords
	t.NotifyEmail = notify
	if r.Active != nil {
		t.Active = *r.Active
	}
	return true, ""
}

// List returns targets ordered by name.
func (h *TargetHandler) List(c fiber.Ctx) error {
	limit := queryInt(c, "limit", 100, 500)
	offset := queryInt(c, "offset", 0, 1<<31-1)

	targets, err := h.db.ListTargets(c.Context(), limit, offset)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch targets")
	}

	return jsonSuccess(c, targets)
}

// Get returns a single target with its page records.
func (h *TargetHandler) Get(c fiber.Ctx) error {
	target, status, msg := h.lookup(c)
	if status != 0 {
		return jsonError(c, status, msg)
	}
	return jsonSuccess(c, target)
}

// Create creates a new target.
func (h *TargetHandler) Create(c fiber.Ctx) error {
	var body targetRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	target := &models.Target{Active: true}
	if valid, msg := body.apply(target); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	if err := h.db.CreateTarget(c.Context(), target); err != nil {
		if errors.Is(err, db.ErrDuplicateTargetName) {
			return jsonError(c, fiber.StatusConflict, "a target with this name already exists")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to create target")
	}

	return jsonCreated(c, target)
}

// Update replaces a target's name, URLs, keywords and settings.
func (h *TargetHandler) Update(c fiber.Ctx) error {
	target, status, msg := h.lookup(c)
	if status != 0 {
		return jsonError(c, status, msg)
	}

	var body targetRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if valid, msg := body.apply(target); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	if err := h.db.UpdateTarget(c.Context(), target); err != nil {
		switch {
		case errors.Is(err, db.ErrTargetNotFound):
			return jsonError(c, fiber.StatusNotFound, "target not found")
		case errors.Is(err, db.ErrDuplicateTargetName):
			return jsonError(c, fiber.StatusConflict, "a target with this name already exists")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to update target")
	}

	return jsonSuccess(c, target)
}

// Delete removes a target with its page records and alerts.
func (h *TargetHandler) Delete(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid target id")
	}

	if err := h.db.DeleteTarget(c.Context(), id); err != nil {
		if errors.Is(err, db.ErrTargetNotFound) {
			return jsonError(c, fiber.StatusNotFound, "target not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete target")
	}

	return jsonSuccess(c, fiber.Map{"deleted": id})
}

// Run checks the target's pages now and returns the per-page outcome.
func (h *TargetHandler) Run(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid target id")
	}

	result, err := h.runner.RunTarget(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrTargetNotFound):
			return jsonError(c, fiber.StatusNotFound, "target not found")
		case errors.Is(err, detect.ErrInvalidKeyword):
			return jsonError(c, fiber.StatusUnprocessableEntity, err.Error())
		}
		return jsonError(c, fiber.StatusInternalServerError, "run failed")
	}

	return jsonSuccess(c, result)
}

// Pages returns the stored snapshot of every watched URL, in URL order.
// URLs never checked successfully are left out.
func (h *TargetHandler) Pages(c fiber.Ctx) error {
	target, status, msg := h.lookup(c)
	if status != 0 {
		return jsonError(c, status, msg)
	}

	pages := make([]models.PageSnapshot, 0, len(target.URLs))
	for _, url := range target.URLs {
		if snap, ok := target.Snapshot(url); ok {
			pages = append(pages, snap)
		}
	}

	return jsonSuccess(c, models.PagesResponse{
		TargetID: target.ID.String(),
		Pages:    pages,
	})
}

// Alerts returns the target's most recent alerts.
func (h *TargetHandler) Alerts(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid target id")
	}

	alerts, err := h.db.ListAlerts(c.Context(), id, queryInt(c, "limit", 50, 500))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch alerts")
	}

	return jsonSuccess(c, alerts)
}

// Alert returns one alert of the target.
func (h *TargetHandler) Alert(c fiber.Ctx) error {
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid target id")
	}
	alertID, err := uuid.Parse(c.Params("alertID"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid alert id")
	}

	alert, err := h.db.GetAlertByID(c.Context(), alertID)
	if err != nil {
		if errors.Is(err, db.ErrAlertNotFound) {
			return jsonError(c, fiber.StatusNotFound, "alert not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch alert")
	}
	// alerts of other targets are not exposed under this one
	if alert.TargetID != targetID {
		return jsonError(c, fiber.StatusNotFound, "alert not found")
	}

	return jsonSuccess(c, alert)
}

// lookup loads the target named by the :id parameter. A non-zero status
// and message describe why it could not be loaded.
func (h *TargetHandler) lookup(c fiber.Ctx) (*models.Target, int, string) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.StatusBadRequest, "invalid target id"
	}

	target, err := h.db.GetTargetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrTargetNotFound) {
			return nil, fiber.StatusNotFound, "target not found"
		}
		return nil, fiber.StatusInternalServerError, "failed to fetch target"
	}
	return target, 0, ""
}

// queryInt reads a non-negative integer query parameter, clamped to max.
func queryInt(c fiber.Ctx, key string, fallback, max int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 0 {
		return fallback
	}
	return min(n, max)
}
