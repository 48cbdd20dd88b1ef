package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"

	"pagewatch/internal/detect"
	"pagewatch/internal/validation"
)

// AnalyzeHandler runs change detection on text posted by the client.
type AnalyzeHandler struct{}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler() *AnalyzeHandler {
	return &AnalyzeHandler{}
}

type analyzeRequest struct {
	Text                string        `json:"text"`
	Keywords            []string      `json:"keywords"`
	PreviousFingerprint string        `json:"previous_fingerprint"`
	PreviousCounts      detect.Counts `json:"previous_counts"`
}

// Analyze returns the fingerprint and keyword counts of the posted text,
// plus the notable keywords and their sentence windows when the text
// differs from the previous fingerprint.
func (h *AnalyzeHandler) Analyze(c fiber.Ctx) error {
	var body analyzeRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	keywords := validation.NormalizeKeywords(body.Keywords)
	if valid, msg := validation.ValidateKeywords(keywords); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	report, err := detect.Analyze(keywords, body.Text, body.PreviousFingerprint, body.PreviousCounts)
	if err != nil {
		if errors.Is(err, detect.ErrInvalidKeyword) {
			return jsonError(c, fiber.StatusBadRequest, err.Error())
		}
		return jsonError(c, fiber.StatusInternalServerError, "analysis failed")
	}

	return jsonSuccess(c, report)
}
