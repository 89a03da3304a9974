package handlers

import (
	"github.com/fenilmodi00/market-pulse/shared"
	"github.com/gofiber/fiber/v2"
)

// statusForCategory maps an error category to the HTTP status returned to clients
func statusForCategory(category shared.ErrorCategory) int {
	switch category {
	case shared.ErrorCategoryConfiguration:
		return fiber.StatusServiceUnavailable
	case shared.ErrorCategoryNetwork,
		shared.ErrorCategoryUpstreamRejected,
		shared.ErrorCategoryParse:
		return fiber.StatusBadGateway
	case shared.ErrorCategoryAuthorization:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	category := shared.CategoryOf(err)
	body := fiber.Map{
		"success": false,
		"error":   shared.UserMessage(err),
	}
	if category != "" {
		body["category"] = category
	}
	return c.Status(statusForCategory(category)).JSON(body)
}
