package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/huangsam/fragility/schema"
)

// Handler contains all HTTP handlers
type Handler struct {
	svc     Service
	appName string
}

// NewHandler creates a new handler
func NewHandler(svc Service, appName string) *Handler {
	return &Handler{svc: svc, appName: appName}
}

// PredictResponse is the body returned by the predict endpoint.
type PredictResponse struct {
	Region          string                  `json:"region"`
	Name            string                  `json:"name,omitempty"`
	Risk            schema.RiskPrediction   `json:"risk"`
	Scenarios       []schema.ScenarioResult `json:"scenarios"`
	Recommendations []schema.Recommendation `json:"recommendations"`
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": h.appName,
	})
}

// Predict runs the full assessment for one region request.
func (h *Handler) Predict(c *fiber.Ctx) error {
	var req schema.RegionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	a, err := h.svc.Assess(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.JSON(PredictResponse{
		Region:          a.Region,
		Name:            a.Name,
		Risk:            a.Risk,
		Scenarios:       a.Scenarios,
		Recommendations: a.Recommendations,
	})
}

// GetScenarios returns the what-if scenario catalog.
func (h *Handler) GetScenarios(c *fiber.Ctx) error {
	return c.JSON(h.svc.Catalog())
}

// GetRegions returns the region ids known to the data source.
func (h *Handler) GetRegions(c *fiber.Ctx) error {
	ids, err := h.svc.Regions(c.UserContext())
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(ids)
}
