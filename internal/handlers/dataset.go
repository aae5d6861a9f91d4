package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crimecast/crimecast/internal/models"
)

// ListJurisdictions handles GET /v1/jurisdictions
func (h *Handler) ListJurisdictions(c *fiber.Ctx) error {
	jurisdictions := h.datasetService.Jurisdictions()
	return c.JSON(models.JurisdictionListResponse{
		Jurisdictions: jurisdictions,
		Count:         len(jurisdictions),
	})
}

// ListCategories handles GET /v1/jurisdictions/:jurisdiction/categories
func (h *Handler) ListCategories(c *fiber.Ctx) error {
	jurisdiction := c.Params("jurisdiction")
	categories, err := h.datasetService.Categories(jurisdiction)
	if err != nil {
		return err
	}
	return c.JSON(models.CategoryListResponse{
		Jurisdiction: jurisdiction,
		Categories:   categories,
		Count:        len(categories),
	})
}
