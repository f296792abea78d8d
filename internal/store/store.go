package store

import (
	"sync"

	"example.com/learningmate-ops/backend/internal/models"
)

// TargetKey — имя псевдо-коллекции для месячной цели в хуке изменений.
const TargetKey = "monthly_target"

// Store хранит локальные копии всех коллекций дашборда. Единственный способ
// мутации — полная замена коллекции; частичного API нет, поэтому контракт
// "переслать коллекцию целиком" для слоя синхронизации тривиально корректен.
type Store struct {
	mu sync.RWMutex

	tasks         []models.Task
	leads         []models.Lead
	sales         []models.Sale
	expenses      []models.Expense
	content       []models.ContentItem
	agents        []models.Agent
	teamMembers   []models.TeamMember
	versions      []models.Version
	batchProjects []models.BatchProject
	monthlyTarget int64

	onChange func(collection string)
}

// New создает хранилище со встроенными значениями по умолчанию.
func New() *Store {
	return &Store{
		agents:        models.DefaultAgents(),
		teamMembers:   models.DefaultTeam(),
		monthlyTarget: models.DefaultMonthlyTarget,
	}
}

// SetOnChange регистрирует хук, вызываемый после каждой замены коллекции.
// Хук вызывается вне внутренней блокировки.
func (s *Store) SetOnChange(hook func(collection string)) {
	s.mu.Lock()
	s.onChange = hook
	s.mu.Unlock()
}

func (s *Store) notify(collection string) {
	s.mu.RLock()
	hook := s.onChange
	s.mu.RUnlock()

	if hook != nil {
		hook(collection)
	}
}

// ReplaceTasks заменяет коллекцию задач целиком.
func (s *Store) ReplaceTasks(items []models.Task) {
	s.mu.Lock()
	s.tasks = models.CloneTasks(items)
	s.mu.Unlock()
	s.notify(models.CollectionTasks)
}

// ReplaceLeads заменяет коллекцию лидов целиком.
func (s *Store) ReplaceLeads(items []models.Lead) {
	s.mu.Lock()
	s.leads = models.CloneLeads(items)
	s.mu.Unlock()
	s.notify(models.CollectionLeads)
}

// ReplaceSales заменяет коллекцию продаж целиком.
func (s *Store) ReplaceSales(items []models.Sale) {
	s.mu.Lock()
	s.sales = models.CloneSales(items)
	s.mu.Unlock()
	s.notify(models.CollectionSales)
}

// ReplaceExpenses заменяет коллекцию расходов целиком.
func (s *Store) ReplaceExpenses(items []models.Expense) {
	s.mu.Lock()
	s.expenses = models.CloneExpenses(items)
	s.mu.Unlock()
	s.notify(models.CollectionExpenses)
}

// ReplaceContent заменяет контент-план целиком.
func (s *Store) ReplaceContent(items []models.ContentItem) {
	s.mu.Lock()
	s.content = models.CloneContent(items)
	s.mu.Unlock()
	s.notify(models.CollectionContent)
}

// ReplaceAgents заменяет список агентов целиком.
func (s *Store) ReplaceAgents(items []models.Agent) {
	s.mu.Lock()
	s.agents = models.CloneAgents(items)
	s.mu.Unlock()
	s.notify(models.CollectionAgents)
}

// ReplaceTeamMembers заменяет состав команды целиком.
func (s *Store) ReplaceTeamMembers(items []models.TeamMember) {
	s.mu.Lock()
	s.teamMembers = models.CloneTeam(items)
	s.mu.Unlock()
	s.notify(models.CollectionTeamMembers)
}

// ReplaceVersions заменяет список версий целиком.
func (s *Store) ReplaceVersions(items []models.Version) {
	s.mu.Lock()
	s.versions = models.CloneVersions(items)
	s.mu.Unlock()
	s.notify(models.CollectionVersions)
}

// ReplaceBatchProjects заменяет batch-проекты целиком.
func (s *Store) ReplaceBatchProjects(items []models.BatchProject) {
	s.mu.Lock()
	s.batchProjects = models.CloneBatchProjects(items)
	s.mu.Unlock()
	s.notify(models.CollectionBatchProjects)
}

// SetMonthlyTarget устанавливает месячную цель по выручке.
func (s *Store) SetMonthlyTarget(target int64) {
	s.mu.Lock()
	s.monthlyTarget = target
	s.mu.Unlock()
	s.notify(TargetKey)
}

// Tasks возвращает копию коллекции задач.
func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneTasks(s.tasks)
}

// Leads возвращает копию коллекции лидов.
func (s *Store) Leads() []models.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneLeads(s.leads)
}

// Sales возвращает копию коллекции продаж.
func (s *Store) Sales() []models.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneSales(s.sales)
}

// Expenses возвращает копию коллекции расходов.
func (s *Store) Expenses() []models.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneExpenses(s.expenses)
}

// Content возвращает копию контент-плана.
func (s *Store) Content() []models.ContentItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneContent(s.content)
}

// Agents возвращает копию списка агентов.
func (s *Store) Agents() []models.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneAgents(s.agents)
}

// TeamMembers возвращает копию состава команды.
func (s *Store) TeamMembers() []models.TeamMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneTeam(s.teamMembers)
}

// Versions возвращает копию списка версий.
func (s *Store) Versions() []models.Version {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneVersions(s.versions)
}

// BatchProjects возвращает копию batch-проектов.
func (s *Store) BatchProjects() []models.BatchProject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneBatchProjects(s.batchProjects)
}

// MonthlyTarget возвращает текущую месячную цель.
func (s *Store) MonthlyTarget() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.monthlyTarget
}

// CollectionItems возвращает копию коллекции по имени для сериализации.
func (s *Store) CollectionItems(name string) (interface{}, bool) {
	switch name {
	case models.CollectionTasks:
		return s.Tasks(), true
	case models.CollectionLeads:
		return s.Leads(), true
	case models.CollectionSales:
		return s.Sales(), true
	case models.CollectionExpenses:
		return s.Expenses(), true
	case models.CollectionContent:
		return s.Content(), true
	case models.CollectionAgents:
		return s.Agents(), true
	case models.CollectionTeamMembers:
		return s.TeamMembers(), true
	case models.CollectionVersions:
		return s.Versions(), true
	case models.CollectionBatchProjects:
		return s.BatchProjects(), true
	default:
		return nil, false
	}
}
