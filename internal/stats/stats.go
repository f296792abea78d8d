package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"example.com/learningmate-ops/backend/internal/models"
)

const dateLayout = "2006-01-02"

// Engine считает производные показатели дашборда в фиксированном отчетном
// часовом поясе. Все сравнения дат выполняются в этом поясе.
type Engine struct {
	loc *time.Location
}

// NewEngine создает движок статистики для заданного часового пояса.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}

	return &Engine{loc: loc}
}

type DayStat struct {
	Date            string `json:"date"`
	CallRevenue     int64  `json:"callRevenue"`
	WebsiteRevenue  int64  `json:"websiteRevenue"`
	HandCashRevenue int64  `json:"handCashRevenue"`
	BatchRevenue    int64  `json:"batchRevenue"`
	Revenue         int64  `json:"revenue"`
	AdSpend         int64  `json:"adSpend"`
	Expenses        int64  `json:"expenses"`
}

type AgentStat struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Avatar         string    `json:"avatar"`
	Color          string    `json:"color"`
	Revenue        int64     `json:"revenue"`
	AdCost         int64     `json:"adCost"`
	Profit         int64     `json:"profit"`
	ROI            float64   `json:"roi"`
	Count          int       `json:"count"`
	DailyBreakdown []DayStat `json:"dailyBreakdown"`
}

type Overview struct {
	TotalRevenue     int64       `json:"totalRevenue"`
	CallRevenue      int64       `json:"callRevenue"`
	WebsiteRevenue   int64       `json:"websiteRevenue"`
	HandCashRevenue  int64       `json:"handCashRevenue"`
	BatchRevenue     int64       `json:"batchRevenue"`
	TotalAdCost      int64       `json:"totalAdCost"`
	OperationalCosts int64       `json:"operationalCosts"`
	NetProfit        int64       `json:"netProfit"`
	ROI              float64     `json:"roi"`
	MonthlyTarget    int64       `json:"monthlyTarget"`
	TargetLeft       int64       `json:"targetLeft"`
	DailyRequired    float64     `json:"dailyRequired"`
	ProgressPercent  float64     `json:"progressPercent"`
	RemainingDays    int         `json:"remainingDays"`
	TodayRevenue     int64       `json:"todayRevenue"`
	TodayAdCost      int64       `json:"todayAdCost"`
	TodayExpenses    int64       `json:"todayExpenses"`
	TodayNetProfit   int64       `json:"todayNetProfit"`
	DailyBreakdown   []DayStat   `json:"dailyBreakdown"`
	Leaderboard      []AgentStat `json:"agentLeaderboard"`
}

// Compute возвращает полную статистику дашборда для текущего месяца.
// Функция чистая: при одинаковых входах и фиксированном now результат одинаков.
func (e *Engine) Compute(
	sales []models.Sale,
	expenses []models.Expense,
	projects []models.BatchProject,
	agents []models.Agent,
	monthlyTarget int64,
	sources []string,
	now time.Time,
) Overview {
	localNow := now.In(e.loc)
	year, month, day := localNow.Date()
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, e.loc).Day()

	remainingDays := lastDay - day + 1
	if remainingDays < 1 {
		remainingDays = 1
	}

	monthPrefix := localNow.Format("2006-01")
	today := localNow.Format(dateLayout)

	included := make(map[string]bool, len(sources))
	for _, source := range sources {
		included[source] = true
	}
	batchIncluded := included[models.SourceBatch]

	overview := Overview{
		MonthlyTarget:  monthlyTarget,
		RemainingDays:  remainingDays,
		DailyBreakdown: []DayStat{},
		Leaderboard:    []AgentStat{},
	}

	days := make(map[string]*DayStat)

	for _, sale := range sales {
		if !included[string(sale.Type)] {
			continue
		}

		saleDay := e.dayKey(sale.CreatedAt)
		if !strings.HasPrefix(saleDay, monthPrefix) {
			continue
		}

		overview.TotalRevenue += sale.Amount
		overview.TotalAdCost += sale.AdCost

		switch sale.Type {
		case models.SaleTypeCall:
			overview.CallRevenue += sale.Amount
		case models.SaleTypeWebsite:
			overview.WebsiteRevenue += sale.Amount
		case models.SaleTypeHandCash:
			overview.HandCashRevenue += sale.Amount
		}

		stat := dayStatFor(days, saleDay)
		stat.AdSpend += sale.AdCost
		stat.Revenue += sale.Amount
		switch sale.Type {
		case models.SaleTypeCall:
			stat.CallRevenue += sale.Amount
		case models.SaleTypeWebsite:
			stat.WebsiteRevenue += sale.Amount
		case models.SaleTypeHandCash:
			stat.HandCashRevenue += sale.Amount
		}

		if saleDay == today {
			overview.TodayRevenue += sale.Amount
			overview.TodayAdCost += sale.AdCost
		}
	}

	for _, expense := range expenses {
		expenseDay := e.dayKey(expense.Date)
		if !strings.HasPrefix(expenseDay, monthPrefix) {
			continue
		}

		stat := dayStatFor(days, expenseDay)
		if expense.Type == models.ExpenseTypeAdCost {
			overview.TotalAdCost += expense.Amount
			stat.AdSpend += expense.Amount
			if expenseDay == today {
				overview.TodayAdCost += expense.Amount
			}
		} else {
			overview.OperationalCosts += expense.Amount
			stat.Expenses += expense.Amount
			if expenseDay == today {
				overview.TodayExpenses += expense.Amount
			}
		}
	}

	if batchIncluded {
		for _, project := range projects {
			projectDay := e.dayKey(project.StartDate)
			if strings.HasPrefix(projectDay, monthPrefix) {
				var paid int64
				for _, student := range project.Students {
					paid += student.Paid
				}

				overview.TotalRevenue += paid
				overview.BatchRevenue += paid

				stat := dayStatFor(days, projectDay)
				stat.BatchRevenue += paid
				stat.Revenue += paid

				if projectDay == today {
					overview.TodayRevenue += paid
				}
			}

			for _, adCost := range project.AdCosts {
				costDay := e.dayKey(adCost.Date)
				if !strings.HasPrefix(costDay, monthPrefix) {
					continue
				}

				overview.TotalAdCost += adCost.Amount
				dayStatFor(days, costDay).AdSpend += adCost.Amount

				if costDay == today {
					overview.TodayAdCost += adCost.Amount
				}
			}
		}
	}

	overview.NetProfit = overview.TotalRevenue - overview.TotalAdCost - overview.OperationalCosts
	overview.TodayNetProfit = overview.TodayRevenue - overview.TodayAdCost - overview.TodayExpenses
	if overview.TotalAdCost > 0 {
		overview.ROI = float64(overview.TotalRevenue) / float64(overview.TotalAdCost)
	}

	overview.TargetLeft = monthlyTarget - overview.TotalRevenue
	if overview.TargetLeft < 0 {
		overview.TargetLeft = 0
	}
	overview.DailyRequired = float64(overview.TargetLeft) / float64(remainingDays)
	if monthlyTarget > 0 {
		overview.ProgressPercent = float64(overview.TotalRevenue) / float64(monthlyTarget) * 100
		if overview.ProgressPercent > 100 {
			overview.ProgressPercent = 100
		}
	}

	overview.DailyBreakdown = collectDays(days, year, int(month), lastDay)
	overview.Leaderboard = e.leaderboard(sales, expenses, projects, agents, included, monthPrefix, year, int(month), lastDay)

	return overview
}

func (e *Engine) leaderboard(
	sales []models.Sale,
	expenses []models.Expense,
	projects []models.BatchProject,
	agents []models.Agent,
	included map[string]bool,
	monthPrefix string,
	year, month, lastDay int,
) []AgentStat {
	board := make([]AgentStat, 0, len(agents))

	for _, agent := range agents {
		stat := AgentStat{
			ID:             agent.ID,
			Name:           agent.Name,
			Avatar:         agent.Avatar,
			Color:          agent.Color,
			DailyBreakdown: []DayStat{},
		}

		days := make(map[string]*DayStat)

		for _, sale := range sales {
			if sale.AgentID != agent.ID || !included[string(sale.Type)] {
				continue
			}

			saleDay := e.dayKey(sale.CreatedAt)
			if !strings.HasPrefix(saleDay, monthPrefix) {
				continue
			}

			stat.Revenue += sale.Amount
			stat.AdCost += sale.AdCost
			stat.Count++

			dayStat := dayStatFor(days, saleDay)
			dayStat.Revenue += sale.Amount
			dayStat.AdSpend += sale.AdCost
			switch sale.Type {
			case models.SaleTypeCall:
				dayStat.CallRevenue += sale.Amount
			case models.SaleTypeWebsite:
				dayStat.WebsiteRevenue += sale.Amount
			case models.SaleTypeHandCash:
				dayStat.HandCashRevenue += sale.Amount
			}
		}

		for _, expense := range expenses {
			if expense.AgentID != agent.ID || expense.Type == models.ExpenseTypeAdCost {
				continue
			}

			expenseDay := e.dayKey(expense.Date)
			if !strings.HasPrefix(expenseDay, monthPrefix) {
				continue
			}

			dayStatFor(days, expenseDay).Expenses += expense.Amount
		}

		// Batch attribution joins students to the agent by advisor name
		// across all projects, not only the current month.
		if included[models.SourceBatch] {
			for _, project := range projects {
				projectDay := e.dayKey(project.StartDate)

				var paid int64
				for _, student := range project.Students {
					if student.Advisor == agent.Name {
						paid += student.Paid
					}
				}
				if paid == 0 {
					continue
				}

				stat.Revenue += paid

				if strings.HasPrefix(projectDay, monthPrefix) {
					dayStat := dayStatFor(days, projectDay)
					dayStat.BatchRevenue += paid
					dayStat.Revenue += paid
				}
			}
		}

		stat.Profit = stat.Revenue - stat.AdCost
		if stat.AdCost > 0 {
			stat.ROI = float64(stat.Revenue) / float64(stat.AdCost)
		}
		stat.DailyBreakdown = collectDays(days, year, month, lastDay)

		board = append(board, stat)
	}

	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Revenue > board[j].Revenue
	})

	return board
}

// dayKey приводит дату записи к календарному дню отчетного пояса.
// RFC3339-метки конвертируются в пояс, простые Y-M-D строки берутся как есть.
func (e *Engine) dayKey(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	if strings.Contains(trimmed, "T") {
		if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
			return parsed.In(e.loc).Format(dateLayout)
		}
	}

	if len(trimmed) >= len(dateLayout) {
		return trimmed[:len(dateLayout)]
	}

	return trimmed
}

func dayStatFor(days map[string]*DayStat, date string) *DayStat {
	stat, ok := days[date]
	if !ok {
		stat = &DayStat{Date: date}
		days[date] = stat
	}

	return stat
}

// collectDays собирает дни месяца с активностью в порядке убывания даты.
// Дни без выручки, рекламных и прочих расходов опускаются.
func collectDays(days map[string]*DayStat, year, month, lastDay int) []DayStat {
	out := make([]DayStat, 0, len(days))

	for day := lastDay; day >= 1; day-- {
		date := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		stat, ok := days[date]
		if !ok {
			continue
		}

		if stat.Revenue == 0 && stat.AdSpend == 0 && stat.Expenses == 0 {
			continue
		}

		out = append(out, *stat)
	}

	return out
}
