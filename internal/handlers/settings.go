package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/learningmate-ops/backend/internal/notifications"
	"example.com/learningmate-ops/backend/internal/repository"
)

type SettingsHandler struct {
	Settings *repository.SettingsRepository
	Hub      *notifications.Hub
}

// NewSettingsHandler создает обработчик настроек дашборда.
func NewSettingsHandler(settings *repository.SettingsRepository, hub *notifications.Hub) *SettingsHandler {
	return &SettingsHandler{Settings: settings, Hub: hub}
}

type MonthlyTargetResponse struct {
	MonthlyTarget int64 `json:"monthly_target"`
}

type SetMonthlyTargetRequest struct {
	WriteID       string `json:"write_id" validate:"omitempty,uuid4"`
	MonthlyTarget int64  `json:"monthly_target" validate:"required,gt=0"`
}

// GetMonthlyTarget возвращает месячную цель по выручке. Пока цель не
// задана, отвечает 404 — клиент в этом случае подставляет значение
// по умолчанию.
func (h *SettingsHandler) GetMonthlyTarget(c echo.Context) error {
	target, err := h.Settings.GetMonthlyTarget(c.Request().Context())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "monthly target is not set")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, MonthlyTargetResponse{MonthlyTarget: target})
}

// SetMonthlyTarget сохраняет месячную цель по выручке.
func (h *SettingsHandler) SetMonthlyTarget(c echo.Context) error {
	var req SetMonthlyTargetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "monthly_target must be positive")
	}

	if err := h.Settings.SetMonthlyTarget(c.Request().Context(), req.MonthlyTarget); err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "monthly_target must be positive")
		}
		return serverError(c)
	}

	h.Hub.Publish(notifications.Event{
		Type:       notifications.EventCollectionChanged,
		Collection: "monthly_target",
		WriteID:    req.WriteID,
	})

	return c.JSON(http.StatusOK, MonthlyTargetResponse{MonthlyTarget: req.MonthlyTarget})
}
