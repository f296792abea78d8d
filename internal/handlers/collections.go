package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/learningmate-ops/backend/internal/models"
	"example.com/learningmate-ops/backend/internal/notifications"
	"example.com/learningmate-ops/backend/internal/repository"
)

type CollectionHandler struct {
	Collections *repository.CollectionRepository
	Hub         *notifications.Hub
}

// NewCollectionHandler создает обработчик коллекций дашборда.
func NewCollectionHandler(collections *repository.CollectionRepository, hub *notifications.Hub) *CollectionHandler {
	return &CollectionHandler{Collections: collections, Hub: hub}
}

type CollectionResponse struct {
	Items []json.RawMessage `json:"items"`
}

type ReplaceCollectionRequest struct {
	WriteID string          `json:"write_id" validate:"omitempty,uuid4"`
	Items   json.RawMessage `json:"items" validate:"required"`
}

type ReplaceCollectionResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Get возвращает содержимое коллекции целиком в сохраненном порядке.
func (h *CollectionHandler) Get(c echo.Context) error {
	name := c.Param("name")
	if !models.KnownCollection(name) {
		return notFound(c, "unknown collection")
	}

	items, err := h.Collections.ReadAll(c.Request().Context(), name)
	if err != nil {
		return serverError(c)
	}

	if items == nil {
		items = []json.RawMessage{}
	}

	return c.JSON(http.StatusOK, CollectionResponse{Items: items})
}

// Replace заменяет содержимое коллекции целиком. Частичных обновлений
// нет: клиент всегда присылает полный массив записей.
func (h *CollectionHandler) Replace(c echo.Context) error {
	name := c.Param("name")
	if !models.KnownCollection(name) {
		return notFound(c, "unknown collection")
	}

	var req ReplaceCollectionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "items are required")
	}

	records, err := decodeCollectionItems(name, req.Items)
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.Collections.ReplaceAll(c.Request().Context(), name, records); err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid collection records")
		}
		return serverError(c)
	}

	h.Hub.Publish(notifications.Event{
		Type:       notifications.EventCollectionChanged,
		Collection: name,
		WriteID:    req.WriteID,
	})

	return c.JSON(http.StatusOK, ReplaceCollectionResponse{Status: "ok", Count: len(records)})
}

// decodeCollectionItems проверяет, что массив декодируется в модель
// коллекции, и нормализует каждую запись обратно в JSON.
func decodeCollectionItems(name string, items json.RawMessage) ([]repository.Record, error) {
	switch name {
	case models.CollectionTasks:
		return decodeRecords(name, items, func(t models.Task) string { return t.ID })
	case models.CollectionLeads:
		return decodeRecords(name, items, func(l models.Lead) string { return l.ID })
	case models.CollectionSales:
		return decodeRecords(name, items, func(s models.Sale) string { return s.ID })
	case models.CollectionExpenses:
		return decodeRecords(name, items, func(e models.Expense) string { return e.ID })
	case models.CollectionContent:
		return decodeRecords(name, items, func(i models.ContentItem) string { return i.ID })
	case models.CollectionAgents:
		return decodeRecords(name, items, func(a models.Agent) string { return a.ID })
	case models.CollectionTeamMembers:
		return decodeRecords(name, items, func(m models.TeamMember) string { return m.ID })
	case models.CollectionVersions:
		return decodeRecords(name, items, func(v models.Version) string { return v.ID })
	case models.CollectionBatchProjects:
		return decodeRecords(name, items, func(p models.BatchProject) string { return p.ID })
	default:
		return nil, fmt.Errorf("unknown collection %s", name)
	}
}

func decodeRecords[T any](name string, raw json.RawMessage, recordID func(T) string) ([]repository.Record, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("items do not match the %s schema", name)
	}

	records := make([]repository.Record, 0, len(items))
	seen := make(map[string]bool, len(items))
	for index, item := range items {
		id := recordID(item)
		if id == "" {
			return nil, fmt.Errorf("record %d has no id", index)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate record id %s", id)
		}
		seen[id] = true

		payload, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}

		records = append(records, repository.Record{ID: id, Payload: payload})
	}

	return records, nil
}
