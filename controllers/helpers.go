package controllers

import (
	"strconv"

	"schooladmin_go/middleware"
	"schooladmin_go/models"
	"schooladmin_go/services/policy"

	"github.com/gofiber/fiber/v2"
)

// principalFrom builds the policy principal from the request claims. A
// request without claims yields the zero principal, which matches no rule.
func principalFrom(c *fiber.Ctx) policy.Principal {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return policy.Principal{}
	}
	return policy.Principal{
		UserID:    claims.UserID,
		Roles:     claims.Roles,
		StudentID: claims.StudentID,
		Wards:     claims.Wards,
	}
}

// currentUser returns the authenticated user; nil only before JWTMiddleware.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := middleware.GetCurrentUser(c)
	return user
}

// parseIDParam reads a numeric route parameter.
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

func errNotFound(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": what + " not found"})
}

func errForbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
}

func errBadRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func errConflict(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": msg})
}

func errServer(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
}
