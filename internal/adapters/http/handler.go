package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/sitegauge/sitegauge/internal/core/domain"
	"github.com/sitegauge/sitegauge/internal/core/ports"
)

const defaultRecentLimit = 20

type ClassifyHandler struct {
	service ports.Classifier
}

func NewClassifyHandler(service ports.Classifier) *ClassifyHandler {
	return &ClassifyHandler{service: service}
}

// ClassifyURL handles GET /classify-url?url=<url>[&refresh=1].
func (h *ClassifyHandler) ClassifyURL(c *fiber.Ctx) error {
	url := c.Query("url")
	if url == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query parameter 'url' is required",
		})
	}

	result, err := h.service.ClassifyURL(c.Context(), url, c.QueryBool("refresh"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "An error occurred during classification: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"url":            result.URL,
		"classification": result.Verdict,
	})
}

// RecentVerdicts handles GET /verdicts?limit=N.
func (h *ClassifyHandler) RecentVerdicts(c *fiber.Ctx) error {
	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Query parameter 'limit' must be a positive integer",
			})
		}
		limit = n
	}

	verdicts, err := h.service.Recent(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if verdicts == nil {
		verdicts = []domain.Classification{}
	}

	return c.JSON(verdicts)
}

// Healthz handles GET /healthz.
func (h *ClassifyHandler) Healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
