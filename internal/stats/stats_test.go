package stats

import (
	"testing"
	"time"

	"example.com/learningmate-ops/backend/internal/models"
)

var allSources = models.DefaultSources()

func fixedNow() time.Time {
	// 21 June 2024: 30-day month, 10 remaining days.
	return time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)
}

// TestComputeWorkedExample проверяет сквозной пример: одна продажа и один расход.
func TestComputeWorkedExample(t *testing.T) {
	engine := NewEngine(time.UTC)

	sales := []models.Sale{
		{ID: "s1", Type: models.SaleTypeCall, Amount: 1000, AdCost: 200, CreatedAt: "2024-06-10T09:00:00Z"},
	}
	expenses := []models.Expense{
		{ID: "e1", Type: models.ExpenseTypeRent, Amount: 100, Date: "2024-06-05"},
	}

	overview := engine.Compute(sales, expenses, nil, nil, 500000, allSources, fixedNow())

	if overview.TotalRevenue != 1000 {
		t.Fatalf("expected revenue 1000, got %d", overview.TotalRevenue)
	}
	if overview.TotalAdCost != 200 {
		t.Fatalf("expected ad cost 200, got %d", overview.TotalAdCost)
	}
	if overview.OperationalCosts != 100 {
		t.Fatalf("expected operational costs 100, got %d", overview.OperationalCosts)
	}
	if overview.NetProfit != 700 {
		t.Fatalf("expected net profit 700, got %d", overview.NetProfit)
	}
	if overview.ROI != 5.0 {
		t.Fatalf("expected roi 5.0, got %f", overview.ROI)
	}
}

// TestComputeTargetPacing проверяет расчет остатка цели и дневной нормы.
func TestComputeTargetPacing(t *testing.T) {
	engine := NewEngine(time.UTC)

	sales := []models.Sale{
		{ID: "s1", Type: models.SaleTypeWebsite, Amount: 120000, CreatedAt: "2024-06-15T10:00:00Z"},
	}

	overview := engine.Compute(sales, nil, nil, nil, 500000, allSources, fixedNow())

	if overview.RemainingDays != 10 {
		t.Fatalf("expected 10 remaining days, got %d", overview.RemainingDays)
	}
	if overview.TargetLeft != 380000 {
		t.Fatalf("expected target left 380000, got %d", overview.TargetLeft)
	}
	if overview.DailyRequired != 38000 {
		t.Fatalf("expected daily required 38000, got %f", overview.DailyRequired)
	}
	if overview.ProgressPercent < 23.99 || overview.ProgressPercent > 24.01 {
		t.Fatalf("expected progress 24%%, got %f", overview.ProgressPercent)
	}
}

// TestComputeDecomposition проверяет тождество netProfit на смешанных данных.
func TestComputeDecomposition(t *testing.T) {
	engine := NewEngine(time.UTC)

	sales := []models.Sale{
		{ID: "s1", Type: models.SaleTypeCall, Amount: 7000, AdCost: 900, CreatedAt: "2024-06-02T08:00:00Z"},
		{ID: "s2", Type: models.SaleTypeWebsite, Amount: 4500, AdCost: 300, CreatedAt: "2024-06-12T18:00:00Z"},
		{ID: "s3", Type: models.SaleTypeHandCash, Amount: 2500, CreatedAt: "2024-06-20T11:00:00Z"},
	}
	expenses := []models.Expense{
		{ID: "e1", Type: models.ExpenseTypeAdCost, Amount: 1200, Date: "2024-06-03"},
		{ID: "e2", Type: models.ExpenseTypeSalary, Amount: 5000, Date: "2024-06-01"},
		{ID: "e3", Type: models.ExpenseTypeOther, Amount: 750, Date: "2024-06-18"},
	}
	projects := []models.BatchProject{
		{
			ID:        "b1",
			StartDate: "2024-06-10",
			Students:  []models.Student{{ID: "st1", Paid: 3000}, {ID: "st2", Paid: 2000}},
			AdCosts:   []models.BatchAdCost{{ID: "a1", Amount: 400, Date: "2024-06-11"}},
		},
	}

	overview := engine.Compute(sales, expenses, projects, nil, 500000, allSources, fixedNow())

	wantRevenue := int64(7000 + 4500 + 2500 + 5000)
	wantAdCost := int64(900 + 300 + 1200 + 400)
	wantOperational := int64(5000 + 750)

	if overview.TotalRevenue != wantRevenue {
		t.Fatalf("expected revenue %d, got %d", wantRevenue, overview.TotalRevenue)
	}
	if overview.TotalAdCost != wantAdCost {
		t.Fatalf("expected ad cost %d, got %d", wantAdCost, overview.TotalAdCost)
	}
	if overview.NetProfit != wantRevenue-wantAdCost-wantOperational {
		t.Fatalf("net profit does not decompose: %d", overview.NetProfit)
	}
	if overview.BatchRevenue != 5000 {
		t.Fatalf("expected batch revenue 5000, got %d", overview.BatchRevenue)
	}
}

// TestComputeZeroAdCostROI проверяет, что нулевой рекламный бюджет дает ROI 0.
func TestComputeZeroAdCostROI(t *testing.T) {
	engine := NewEngine(time.UTC)

	sales := []models.Sale{
		{ID: "s1", Type: models.SaleTypeCall, Amount: 9000, CreatedAt: "2024-06-10T09:00:00Z"},
	}

	overview := engine.Compute(sales, nil, nil, nil, 0, allSources, fixedNow())
	if overview.ROI != 0 {
		t.Fatalf("expected roi 0 with zero ad cost, got %f", overview.ROI)
	}

	empty := engine.Compute(nil, nil, nil, nil, 0, allSources, fixedNow())
	if empty.ROI != 0 || empty.TotalRevenue != 0 || empty.NetProfit != 0 {
		t.Fatalf("expected all-zero stats for empty input, got %+v", empty)
	}
	if len(empty.DailyBreakdown) != 0 || len(empty.Leaderboard) != 0 {
		t.Fatal("expected empty breakdown and leaderboard")
	}
}

// TestComputeSparseBreakdown проверяет, что дни без активности опускаются.
func TestComputeSparseBreakdown(t *testing.T) {
	engine := NewEngine(time.UTC)

	sales := []models.Sale{
		{ID: "s1", Type: models.SaleTypeCall, Amount: 100, CreatedAt: "2024-06-03T09:00:00Z"},
		{ID: "s2", Type: models.SaleTypeCall, Amount: 200, CreatedAt: "2024-06-15T09:00:00Z"},
	}

	overview := engine.Compute(sales, nil, nil, nil, 0, allSources, fixedNow())

	if len(overview.DailyBreakdown) != 2 {
		t.Fatalf("expected 2 active days, got %d", len(overview.DailyBreakdown))
	}

	// Descending order by date.
	if overview.DailyBreakdown[0].Date != "2024-06-15" || overview.DailyBreakdown[1].Date != "2024-06-03" {
		t.Fatalf("unexpected order: %s, %s", overview.DailyBreakdown[0].Date, overview.DailyBreakdown[1].Date)
	}

	for _, day := range overview.DailyBreakdown {
		if day.Revenue == 0 && day.AdSpend == 0 && day.Expenses == 0 {
			t.Fatalf("zero-activity day %s present in breakdown", day.Date)
		}
	}
}

// TestComputeSourceFilter проверяет исключение каналов из расчета.
func TestComputeSourceFilter(t *testing.T) {
	engine := NewEngine(time.UTC)

	sales := []models.Sale{
		{ID: "s1", Type: models.SaleTypeCall, Amount: 1000, CreatedAt: "2024-06-10T09:00:00Z"},
		{ID: "s2", Type: models.SaleTypeHandCash, Amount: 500, CreatedAt: "2024-06-10T10:00:00Z"},
	}
	projects := []models.BatchProject{
		{ID: "b1", StartDate: "2024-06-12", Students: []models.Student{{ID: "st1", Paid: 2000}}},
	}

	overview := engine.Compute(sales, nil, projects, nil, 0, []string{string(models.SaleTypeCall)}, fixedNow())

	if overview.TotalRevenue != 1000 {
		t.Fatalf("expected only call revenue 1000, got %d", overview.TotalRevenue)
	}
	if overview.HandCashRevenue != 0 || overview.BatchRevenue != 0 {
		t.Fatalf("excluded sources leaked: hand_cash=%d batch=%d", overview.HandCashRevenue, overview.BatchRevenue)
	}
}

// TestComputeLeaderboard проверяет лидерборд агентов и связку advisor по имени.
func TestComputeLeaderboard(t *testing.T) {
	engine := NewEngine(time.UTC)

	agents := []models.Agent{
		{ID: "afrin", Name: "Afrin"},
		{ID: "hridoy", Name: "Hridoy"},
	}
	sales := []models.Sale{
		{ID: "s1", AgentID: "hridoy", Type: models.SaleTypeCall, Amount: 3000, AdCost: 500, CreatedAt: "2024-06-10T09:00:00Z"},
		{ID: "s2", AgentID: "afrin", Type: models.SaleTypeCall, Amount: 1000, AdCost: 100, CreatedAt: "2024-06-11T09:00:00Z"},
	}
	projects := []models.BatchProject{
		// Prior-month batch still attributes to the advisor by name.
		{
			ID:        "b1",
			StartDate: "2024-05-20",
			Students: []models.Student{
				{ID: "st1", Paid: 4000, Advisor: "Afrin"},
				{ID: "st2", Paid: 1500, Advisor: "afrin"}, // case mismatch, no join
			},
		},
	}

	overview := engine.Compute(sales, nil, projects, agents, 0, allSources, fixedNow())

	if len(overview.Leaderboard) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(overview.Leaderboard))
	}

	top := overview.Leaderboard[0]
	if top.ID != "afrin" {
		t.Fatalf("expected afrin on top, got %s", top.ID)
	}
	if top.Revenue != 5000 {
		t.Fatalf("expected afrin revenue 5000, got %d", top.Revenue)
	}
	if top.Count != 1 {
		t.Fatalf("expected 1 direct sale, got %d", top.Count)
	}
	if top.Profit != 4900 {
		t.Fatalf("expected profit 4900, got %d", top.Profit)
	}
	if top.ROI != 50 {
		t.Fatalf("expected roi 50, got %f", top.ROI)
	}

	second := overview.Leaderboard[1]
	if second.ID != "hridoy" || second.Revenue != 3000 {
		t.Fatalf("unexpected second place: %s %d", second.ID, second.Revenue)
	}
	if len(second.DailyBreakdown) != 1 || second.DailyBreakdown[0].Date != "2024-06-10" {
		t.Fatalf("unexpected agent breakdown: %+v", second.DailyBreakdown)
	}
}

// TestComputeTimezoneBoundary проверяет перенос продажи через границу пояса.
func TestComputeTimezoneBoundary(t *testing.T) {
	dhaka := time.FixedZone("BST", 6*3600)
	engine := NewEngine(dhaka)

	// 20:00 UTC on 31 May is already 02:00 on 1 June in Dhaka.
	sales := []models.Sale{
		{ID: "s1", Type: models.SaleTypeCall, Amount: 1000, CreatedAt: "2024-05-31T20:00:00Z"},
	}

	now := time.Date(2024, 6, 21, 12, 0, 0, 0, dhaka)
	overview := engine.Compute(sales, nil, nil, nil, 0, allSources, now)

	if overview.TotalRevenue != 1000 {
		t.Fatalf("expected sale to land in June, got revenue %d", overview.TotalRevenue)
	}
	if len(overview.DailyBreakdown) != 1 || overview.DailyBreakdown[0].Date != "2024-06-01" {
		t.Fatalf("expected activity on 2024-06-01, got %+v", overview.DailyBreakdown)
	}
}

// TestComputeTodayBlock проверяет срез показателей за текущий день.
func TestComputeTodayBlock(t *testing.T) {
	engine := NewEngine(time.UTC)

	sales := []models.Sale{
		{ID: "s1", Type: models.SaleTypeCall, Amount: 800, AdCost: 50, CreatedAt: "2024-06-21T06:00:00Z"},
		{ID: "s2", Type: models.SaleTypeCall, Amount: 700, CreatedAt: "2024-06-10T06:00:00Z"},
	}
	expenses := []models.Expense{
		{ID: "e1", Type: models.ExpenseTypeRent, Amount: 100, Date: "2024-06-21"},
	}

	overview := engine.Compute(sales, expenses, nil, nil, 0, allSources, fixedNow())

	if overview.TodayRevenue != 800 {
		t.Fatalf("expected today revenue 800, got %d", overview.TodayRevenue)
	}
	if overview.TodayAdCost != 50 {
		t.Fatalf("expected today ad cost 50, got %d", overview.TodayAdCost)
	}
	if overview.TodayExpenses != 100 {
		t.Fatalf("expected today expenses 100, got %d", overview.TodayExpenses)
	}
	if overview.TodayNetProfit != 650 {
		t.Fatalf("expected today net profit 650, got %d", overview.TodayNetProfit)
	}
}
