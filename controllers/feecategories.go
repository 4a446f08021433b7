package controllers

import (
	"schooladmin_go/database"
	"schooladmin_go/middleware"
	"schooladmin_go/models"
	"schooladmin_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type FeeCategoryController struct{}

// FeeCategoryRequest represents the create/update body
type FeeCategoryRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount" validate:"required,gte=0"`
	IsRecurring *bool   `json:"is_recurring"`
}

// GetFeeCategories returns all fee categories
func (fc *FeeCategoryController) GetFeeCategories(c *fiber.Ctx) error {
	var categories []models.FeeCategory
	if err := database.DB.Order("name").Find(&categories).Error; err != nil {
		return errServer(c, "Failed to fetch fee categories")
	}

	return c.JSON(fiber.Map{
		"fee_categories": categories,
	})
}

// GetFeeCategory returns a specific fee category by ID
func (fc *FeeCategoryController) GetFeeCategory(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid fee category ID")
	}

	var category models.FeeCategory
	if err := database.DB.First(&category, id).Error; err != nil {
		return errNotFound(c, "Fee category")
	}

	return c.JSON(fiber.Map{
		"fee_category": category,
	})
}

// CreateFeeCategory creates a new fee category
func (fc *FeeCategoryController) CreateFeeCategory(c *fiber.Ctx) error {
	var req FeeCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": verrs})
	}

	var existing models.FeeCategory
	if err := database.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return errConflict(c, "Fee category already exists")
	}

	category := models.FeeCategory{
		Name:        req.Name,
		Description: req.Description,
		Amount:      req.Amount,
	}
	if req.IsRecurring != nil {
		category.IsRecurring = *req.IsRecurring
	}

	if err := database.DB.Create(&category).Error; err != nil {
		return errServer(c, "Failed to create fee category")
	}

	middleware.LogActivity(c, "CREATE", "fee_categories", category.ID, fiber.Map{
		"name":   category.Name,
		"amount": category.Amount,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Fee category created successfully",
		"fee_category": category,
	})
}

// UpdateFeeCategory updates a fee category
func (fc *FeeCategoryController) UpdateFeeCategory(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid fee category ID")
	}

	var category models.FeeCategory
	if err := database.DB.First(&category, id).Error; err != nil {
		return errNotFound(c, "Fee category")
	}

	var req FeeCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}

	if req.Name != "" && req.Name != category.Name {
		var existing models.FeeCategory
		if err := database.DB.Where("name = ? AND id <> ?", req.Name, id).First(&existing).Error; err == nil {
			return errConflict(c, "Fee category already exists")
		}
		category.Name = req.Name
	}
	if req.Description != "" {
		category.Description = req.Description
	}
	if req.Amount > 0 {
		category.Amount = req.Amount
	}
	if req.IsRecurring != nil {
		category.IsRecurring = *req.IsRecurring
	}

	if err := database.DB.Save(&category).Error; err != nil {
		return errServer(c, "Failed to update fee category")
	}

	middleware.LogActivity(c, "UPDATE", "fee_categories", category.ID, fiber.Map{
		"name": category.Name,
	})

	return c.JSON(fiber.Map{
		"message":      "Fee category updated successfully",
		"fee_category": category,
	})
}

// DeleteFeeCategory removes a fee category that has no invoices against it
func (fc *FeeCategoryController) DeleteFeeCategory(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid fee category ID")
	}

	var category models.FeeCategory
	if err := database.DB.First(&category, id).Error; err != nil {
		return errNotFound(c, "Fee category")
	}

	var invoiceCount int64
	if err := database.DB.Model(&models.Invoice{}).Where("fee_category_id = ?", id).Count(&invoiceCount).Error; err != nil {
		return errServer(c, "Failed to delete fee category")
	}
	if invoiceCount > 0 {
		return errConflict(c, "Cannot delete fee category with invoices")
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&category).Error
	})
	if err != nil {
		return errServer(c, "Failed to delete fee category")
	}

	middleware.LogActivity(c, "DELETE", "fee_categories", id, fiber.Map{
		"name": category.Name,
	})

	return c.JSON(fiber.Map{
		"message": "Fee category deleted successfully",
	})
}
