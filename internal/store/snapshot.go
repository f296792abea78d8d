package store

import (
	"time"

	"example.com/learningmate-ops/backend/internal/models"
)

// Snapshot архивирует глубокую копию всех коллекций и месячной цели в новую
// версию, добавляемую в начало списка версий. Живые данные не очищаются:
// снимок — это архивная копия, а не перенос.
func (s *Store) Snapshot(name string, now time.Time) models.Version {
	s.mu.Lock()

	version := models.Version{
		ID:        models.NewID(),
		Name:      name,
		Timestamp: now.UTC().Format(time.RFC3339),
		Data: models.CloneSnapshotData(models.SnapshotData{
			Tasks:         s.tasks,
			Leads:         s.leads,
			Sales:         s.sales,
			Expenses:      s.expenses,
			Content:       s.content,
			Agents:        s.agents,
			TeamMembers:   s.teamMembers,
			MonthlyTarget: s.monthlyTarget,
			BatchProjects: s.batchProjects,
		}),
	}

	versions := make([]models.Version, 0, len(s.versions)+1)
	versions = append(versions, version)
	versions = append(versions, s.versions...)
	s.versions = versions

	s.mu.Unlock()
	s.notify(models.CollectionVersions)

	return version
}

// Restore заменяет живые коллекции глубокими копиями данных снимка.
// Отсутствующие в старых снимках поля получают встроенные значения по
// умолчанию; продажи без типа нормализуются в call (наследие ранних ревизий).
// Список версий не затрагивается. Подтверждение деструктивного действия —
// ответственность вызывающего слоя.
func (s *Store) Restore(version models.Version) {
	data := models.CloneSnapshotData(version.Data)

	for i := range data.Sales {
		if data.Sales[i].Type == "" {
			data.Sales[i].Type = models.SaleTypeCall
		}
	}

	if len(data.Agents) == 0 {
		data.Agents = models.DefaultAgents()
	}
	if len(data.TeamMembers) == 0 {
		data.TeamMembers = models.DefaultTeam()
	}
	if data.MonthlyTarget <= 0 {
		data.MonthlyTarget = models.DefaultMonthlyTarget
	}

	s.mu.Lock()
	s.tasks = data.Tasks
	s.leads = data.Leads
	s.sales = data.Sales
	s.expenses = data.Expenses
	s.content = data.Content
	s.agents = data.Agents
	s.teamMembers = data.TeamMembers
	s.batchProjects = data.BatchProjects
	s.monthlyTarget = data.MonthlyTarget
	s.mu.Unlock()

	for _, name := range models.CollectionNames() {
		if name == models.CollectionVersions {
			continue
		}
		s.notify(name)
	}
	s.notify(TargetKey)
}
