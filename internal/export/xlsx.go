package export

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"example.com/learningmate-ops/backend/internal/models"
	"example.com/learningmate-ops/backend/internal/stats"
)

const dateLayout = "2006-01-02"

// Filename возвращает имя файла выгрузки с текущей датой.
func Filename(productName string, now time.Time) string {
	return fmt.Sprintf("%s_Data_%s.xlsx", productName, now.Format(dateLayout))
}

// Workbook собирает xlsx-книгу с листами Summary, Sales и Expenses.
// Чистое форматирование: никаких вычислений сверх переименования полей
// и денежного формата.
func Workbook(
	overview stats.Overview,
	sales []models.Sale,
	expenses []models.Expense,
	agents []models.Agent,
	now time.Time,
) (*excelize.File, error) {
	file := excelize.NewFile()

	if err := file.SetSheetName("Sheet1", "Summary"); err != nil {
		return nil, err
	}
	if _, err := file.NewSheet("Sales"); err != nil {
		return nil, err
	}
	if _, err := file.NewSheet("Expenses"); err != nil {
		return nil, err
	}

	if err := writeSummary(file, overview, len(sales), now); err != nil {
		return nil, err
	}
	if err := writeSales(file, sales, agents); err != nil {
		return nil, err
	}
	if err := writeExpenses(file, expenses); err != nil {
		return nil, err
	}

	return file, nil
}

func writeSummary(file *excelize.File, overview stats.Overview, salesCount int, now time.Time) error {
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Report Date", now.Format("January 2, 2006")},
		{"Monthly Target", overview.MonthlyTarget},
		{"Total Revenue", overview.TotalRevenue},
		{"Revenue Gap", overview.TargetLeft},
		{"Daily Goal Required", int64(math.Round(overview.DailyRequired))},
		{"Total Ad Spend", overview.TotalAdCost},
		{"Operational Expenses", overview.OperationalCosts},
		{"Net Profit", overview.NetProfit},
		{"Global ROI", fmt.Sprintf("%.2f", overview.ROI)},
		{"Total Sales Count", salesCount},
	}

	return writeRows(file, "Summary", rows)
}

func writeSales(file *excelize.File, sales []models.Sale, agents []models.Agent) error {
	names := make(map[string]string, len(agents))
	for _, agent := range agents {
		names[agent.ID] = agent.Name
	}

	rows := make([][]interface{}, 0, len(sales)+1)
	rows = append(rows, []interface{}{
		"Transaction ID", "Date", "Channel", "Agent Name", "Revenue (৳)", "Ad Cost (৳)", "ROI",
	})

	for _, sale := range sales {
		agentName, ok := names[sale.AgentID]
		if !ok {
			agentName = "Website (Direct)"
		}

		roi := "N/A"
		if sale.AdCost > 0 {
			roi = fmt.Sprintf("%.2f", float64(sale.Amount)/float64(sale.AdCost))
		}

		rows = append(rows, []interface{}{
			sale.ID,
			sale.CreatedAt,
			strings.ToUpper(string(sale.Type)),
			agentName,
			sale.Amount,
			sale.AdCost,
			roi,
		})
	}

	return writeRows(file, "Sales", rows)
}

func writeExpenses(file *excelize.File, expenses []models.Expense) error {
	rows := make([][]interface{}, 0, len(expenses)+1)
	rows = append(rows, []interface{}{
		"Expense ID", "Date", "Category", "Description", "Amount (৳)",
	})

	for _, expense := range expenses {
		rows = append(rows, []interface{}{
			expense.ID,
			expense.Date,
			strings.ToUpper(string(expense.Type)),
			expense.Description,
			expense.Amount,
		})
	}

	return writeRows(file, "Expenses", rows)
}

func writeRows(file *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return nil
}
