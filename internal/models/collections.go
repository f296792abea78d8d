package models

const (
	CollectionTasks         = "tasks"
	CollectionLeads         = "leads"
	CollectionSales         = "sales"
	CollectionExpenses      = "expenses"
	CollectionContent       = "content"
	CollectionAgents        = "agents"
	CollectionTeamMembers   = "team_members"
	CollectionVersions      = "versions"
	CollectionBatchProjects = "batch_projects"
)

// CollectionNames возвращает полный список коллекций в фиксированном порядке.
func CollectionNames() []string {
	return []string{
		CollectionTasks,
		CollectionLeads,
		CollectionSales,
		CollectionExpenses,
		CollectionContent,
		CollectionAgents,
		CollectionTeamMembers,
		CollectionVersions,
		CollectionBatchProjects,
	}
}

// KnownCollection проверяет, что имя коллекции известно системе.
func KnownCollection(name string) bool {
	for _, known := range CollectionNames() {
		if known == name {
			return true
		}
	}

	return false
}
