package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"example.com/learningmate-ops/backend/internal/models"
	"example.com/learningmate-ops/backend/internal/repository"
)

// dashboardData — срез данных, нужный статистике и выгрузкам.
type dashboardData struct {
	Sales         []models.Sale
	Expenses      []models.Expense
	Agents        []models.Agent
	BatchProjects []models.BatchProject
	MonthlyTarget int64
}

func loadDashboardData(ctx context.Context, collections *repository.CollectionRepository, settings *repository.SettingsRepository) (dashboardData, error) {
	var data dashboardData

	if err := loadCollection(ctx, collections, models.CollectionSales, &data.Sales); err != nil {
		return data, err
	}
	if err := loadCollection(ctx, collections, models.CollectionExpenses, &data.Expenses); err != nil {
		return data, err
	}
	if err := loadCollection(ctx, collections, models.CollectionAgents, &data.Agents); err != nil {
		return data, err
	}
	if err := loadCollection(ctx, collections, models.CollectionBatchProjects, &data.BatchProjects); err != nil {
		return data, err
	}

	target, err := settings.GetMonthlyTarget(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return data, err
		}
		target = models.DefaultMonthlyTarget
	}
	data.MonthlyTarget = target

	return data, nil
}

func loadCollection[T any](ctx context.Context, collections *repository.CollectionRepository, name string, dest *[]T) error {
	records, err := collections.ReadAll(ctx, name)
	if err != nil {
		return err
	}

	items := make([]T, 0, len(records))
	for _, record := range records {
		var item T
		if err := json.Unmarshal(record, &item); err != nil {
			return fmt.Errorf("decode %s record: %w", name, err)
		}
		items = append(items, item)
	}

	*dest = items
	return nil
}
