package models

// CloneTasks возвращает глубокую копию списка задач вместе с комментариями.
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}

	out := make([]Task, len(tasks))
	for i, task := range tasks {
		out[i] = task
		out[i].Comments = cloneComments(task.Comments)
	}

	return out
}

// CloneLeads возвращает копию списка лидов.
func CloneLeads(leads []Lead) []Lead {
	if leads == nil {
		return nil
	}

	out := make([]Lead, len(leads))
	copy(out, leads)
	return out
}

// CloneSales возвращает копию списка продаж.
func CloneSales(sales []Sale) []Sale {
	if sales == nil {
		return nil
	}

	out := make([]Sale, len(sales))
	copy(out, sales)
	return out
}

// CloneExpenses возвращает копию списка расходов.
func CloneExpenses(expenses []Expense) []Expense {
	if expenses == nil {
		return nil
	}

	out := make([]Expense, len(expenses))
	copy(out, expenses)
	return out
}

// CloneContent возвращает глубокую копию контент-плана вместе с комментариями.
func CloneContent(items []ContentItem) []ContentItem {
	if items == nil {
		return nil
	}

	out := make([]ContentItem, len(items))
	for i, item := range items {
		out[i] = item
		out[i].Comments = cloneComments(item.Comments)
	}

	return out
}

// CloneAgents возвращает копию списка агентов.
func CloneAgents(agents []Agent) []Agent {
	if agents == nil {
		return nil
	}

	out := make([]Agent, len(agents))
	copy(out, agents)
	return out
}

// CloneTeam возвращает копию состава команды.
func CloneTeam(members []TeamMember) []TeamMember {
	if members == nil {
		return nil
	}

	out := make([]TeamMember, len(members))
	copy(out, members)
	return out
}

// CloneBatchProjects возвращает глубокую копию batch-проектов
// вместе со студентами и рекламными расходами.
func CloneBatchProjects(projects []BatchProject) []BatchProject {
	if projects == nil {
		return nil
	}

	out := make([]BatchProject, len(projects))
	for i, project := range projects {
		out[i] = project

		if project.Students != nil {
			students := make([]Student, len(project.Students))
			copy(students, project.Students)
			out[i].Students = students
		}

		if project.AdCosts != nil {
			adCosts := make([]BatchAdCost, len(project.AdCosts))
			copy(adCosts, project.AdCosts)
			out[i].AdCosts = adCosts
		}
	}

	return out
}

// CloneVersions возвращает глубокую копию списка версий.
func CloneVersions(versions []Version) []Version {
	if versions == nil {
		return nil
	}

	out := make([]Version, len(versions))
	for i, version := range versions {
		out[i] = version
		out[i].Data = CloneSnapshotData(version.Data)
	}

	return out
}

// CloneSnapshotData возвращает глубокую копию снимка всех коллекций.
func CloneSnapshotData(data SnapshotData) SnapshotData {
	return SnapshotData{
		Tasks:         CloneTasks(data.Tasks),
		Leads:         CloneLeads(data.Leads),
		Sales:         CloneSales(data.Sales),
		Expenses:      CloneExpenses(data.Expenses),
		Content:       CloneContent(data.Content),
		Agents:        CloneAgents(data.Agents),
		TeamMembers:   CloneTeam(data.TeamMembers),
		MonthlyTarget: data.MonthlyTarget,
		BatchProjects: CloneBatchProjects(data.BatchProjects),
	}
}

func cloneComments(comments []Comment) []Comment {
	if comments == nil {
		return nil
	}

	out := make([]Comment, len(comments))
	copy(out, comments)
	return out
}
