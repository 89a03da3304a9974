package handlers

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/fenilmodi00/market-pulse/models"
	"github.com/fenilmodi00/market-pulse/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AdminTokenHeader carries the admin token on admin routes
const AdminTokenHeader = "X-Admin-Token"

// MoversRefreshRunner runs one movers refresh
type MoversRefreshRunner interface {
	Run(ctx context.Context) (*models.MoversResult, error)
}

// PageCapturer screenshots a rendered page
type PageCapturer interface {
	Capture(ctx context.Context, url string) ([]byte, error)
}

type AdminHandler struct {
	RefreshJob   MoversRefreshRunner
	Capturer     PageCapturer
	DashboardURL string
}

func NewAdminHandler(refreshJob MoversRefreshRunner, capturer PageCapturer, dashboardURL string) *AdminHandler {
	return &AdminHandler{
		RefreshJob:   refreshJob,
		Capturer:     capturer,
		DashboardURL: dashboardURL,
	}
}

// AdminDisabledMessage is returned on admin routes when no admin token is configured
const AdminDisabledMessage = "Admin endpoints are disabled: set ADMIN_TOKEN to enable them."

// RequireAdminToken rejects requests without the configured token.
// An empty token disables the admin routes entirely.
func RequireAdminToken(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return respondError(c, shared.NewServiceError(
				shared.ErrorCategoryConfiguration,
				"ADMIN_DISABLED",
				AdminDisabledMessage,
				"AdminHandler",
				c.Path(),
				false,
				nil,
			))
		}
		if subtle.ConstantTimeCompare([]byte(c.Get(AdminTokenHeader)), []byte(token)) != 1 {
			return respondError(c, shared.NewServiceError(
				shared.ErrorCategoryAuthorization,
				"INVALID_ADMIN_TOKEN",
				"Invalid or missing admin token",
				"AdminHandler",
				c.Path(),
				false,
				nil,
			))
		}
		return c.Next()
	}
}

// TriggerRefresh manually runs the movers refresh job
func (h *AdminHandler) TriggerRefresh(c *fiber.Ctx) error {
	logrus.Info("Manual movers refresh triggered via admin endpoint")

	startTime := time.Now()
	result, err := h.RefreshJob.Run(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Movers refresh job completed",
		"data":      result,
		"duration":  time.Since(startTime).String(),
		"timestamp": time.Now(),
	})
}

// CaptureDashboard returns a PNG screenshot of the rendered dashboard
func (h *AdminHandler) CaptureDashboard(c *fiber.Ctx) error {
	logrus.WithField("url", h.DashboardURL).Info("Dashboard capture triggered via admin endpoint")

	png, err := h.Capturer.Capture(c.UserContext(), h.DashboardURL)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}
