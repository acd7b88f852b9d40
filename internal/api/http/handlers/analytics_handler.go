package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-tracker/internal/api/dto"
	"github.com/spec-kit/repair-tracker/internal/domain"
	"github.com/spec-kit/repair-tracker/internal/service"
)

// AnalyticsHandler serves dashboard and SLA endpoints.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	settings  *service.SettingsService
	now       func() time.Time
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService, settings *service.SettingsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, settings: settings, now: time.Now}
}

// Dashboard GET /analytics/dashboard.
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	report, err := h.analytics.DashboardSnapshot(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// SLABreaches GET /analytics/sla-breaches.
func (h *AnalyticsHandler) SLABreaches(c *fiber.Ctx) error {
	tickets, err := h.analytics.BreachedTickets(c.Context())
	if err != nil {
		return err
	}
	var sla domain.Settings
	if settings, err := h.settings.Get(c.Context()); err == nil {
		sla = settings
	}
	now := h.now()
	items := make([]dto.RepairSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, repairSummary(&tickets[i], sla, now))
	}
	return c.JSON(fiber.Map{"data": items})
}
