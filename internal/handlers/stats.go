package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/learningmate-ops/backend/internal/models"
	"example.com/learningmate-ops/backend/internal/repository"
	"example.com/learningmate-ops/backend/internal/stats"
)

type StatsHandler struct {
	Collections *repository.CollectionRepository
	Settings    *repository.SettingsRepository
	Engine      *stats.Engine

	now func() time.Time
}

// NewStatsHandler создает обработчик статистики дашборда.
func NewStatsHandler(collections *repository.CollectionRepository, settings *repository.SettingsRepository, engine *stats.Engine) *StatsHandler {
	return &StatsHandler{
		Collections: collections,
		Settings:    settings,
		Engine:      engine,
		now:         time.Now,
	}
}

// Overview возвращает полную сводку текущего месяца: декомпозицию выручки,
// темп к цели, разбивку по дням и лидерборд агентов.
func (h *StatsHandler) Overview(c echo.Context) error {
	sources, err := parseSources(c.QueryParam("sources"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	data, err := loadDashboardData(c.Request().Context(), h.Collections, h.Settings)
	if err != nil {
		return serverError(c)
	}

	overview := h.Engine.Compute(
		data.Sales,
		data.Expenses,
		data.BatchProjects,
		data.Agents,
		data.MonthlyTarget,
		sources,
		h.now(),
	)

	return c.JSON(http.StatusOK, overview)
}

// parseSources разбирает параметр sources: пустое значение дает полный
// набор источников, неизвестный источник — ошибку.
func parseSources(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return models.DefaultSources(), nil
	}

	known := make(map[string]bool)
	for _, source := range models.DefaultSources() {
		known[source] = true
	}

	var sources []string
	for _, part := range strings.Split(raw, ",") {
		source := strings.TrimSpace(part)
		if source == "" {
			continue
		}
		if !known[source] {
			return nil, fmt.Errorf("unknown source %s", source)
		}
		sources = append(sources, source)
	}

	if len(sources) == 0 {
		return models.DefaultSources(), nil
	}

	return sources, nil
}
