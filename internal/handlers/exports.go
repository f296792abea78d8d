package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/learningmate-ops/backend/internal/export"
	"example.com/learningmate-ops/backend/internal/models"
	"example.com/learningmate-ops/backend/internal/repository"
	"example.com/learningmate-ops/backend/internal/stats"
)

const (
	exportTypeSales    = "sales"
	exportTypeExpenses = "expenses"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ExportHandler struct {
	Collections *repository.CollectionRepository
	Settings    *repository.SettingsRepository
	Engine      *stats.Engine
	ProductName string

	now func() time.Time
}

// NewExportHandler создает обработчик выгрузок отчетов.
func NewExportHandler(collections *repository.CollectionRepository, settings *repository.SettingsRepository, engine *stats.Engine, productName string) *ExportHandler {
	return &ExportHandler{
		Collections: collections,
		Settings:    settings,
		Engine:      engine,
		ProductName: productName,
		now:         time.Now,
	}
}

// XLSX выгружает книгу с листами Summary, Sales и Expenses.
func (h *ExportHandler) XLSX(c echo.Context) error {
	data, err := loadDashboardData(c.Request().Context(), h.Collections, h.Settings)
	if err != nil {
		return serverError(c)
	}

	now := h.now()
	overview := h.Engine.Compute(
		data.Sales,
		data.Expenses,
		data.BatchProjects,
		data.Agents,
		data.MonthlyTarget,
		models.DefaultSources(),
		now,
	)

	file, err := export.Workbook(overview, data.Sales, data.Expenses, data.Agents, now)
	if err != nil {
		return serverError(c)
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return serverError(c)
	}

	filename := export.Filename(h.ProductName, now)
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// CSV выгружает продажи или расходы в CSV-файл.
func (h *ExportHandler) CSV(c echo.Context) error {
	exportType := strings.ToLower(strings.TrimSpace(c.QueryParam("type")))
	if exportType == "" {
		exportType = exportTypeSales
	}

	data, err := loadDashboardData(c.Request().Context(), h.Collections, h.Settings)
	if err != nil {
		return serverError(c)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	switch exportType {
	case exportTypeSales:
		if err := writeSalesCSV(writer, data.Sales, data.Agents); err != nil {
			return serverError(c)
		}
	case exportTypeExpenses:
		if err := writeExpensesCSV(writer, data.Expenses); err != nil {
			return serverError(c)
		}
	default:
		return badRequest(c, "invalid export type")
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	filename := h.ProductName + "_" + exportType + "_" + h.now().Format("2006-01-02") + ".csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func writeSalesCSV(writer *csv.Writer, sales []models.Sale, agents []models.Agent) error {
	header := []string{"id", "created_at", "agent", "type", "amount", "ad_cost", "comment"}
	if err := writer.Write(header); err != nil {
		return err
	}

	names := make(map[string]string, len(agents))
	for _, agent := range agents {
		names[agent.ID] = agent.Name
	}

	for _, sale := range sales {
		record := []string{
			sale.ID,
			sale.CreatedAt,
			names[sale.AgentID],
			strings.ToUpper(string(sale.Type)),
			formatInt64(sale.Amount),
			formatInt64(sale.AdCost),
			sale.Comment,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func writeExpensesCSV(writer *csv.Writer, expenses []models.Expense) error {
	header := []string{"id", "date", "type", "amount", "description"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, expense := range expenses {
		record := []string{
			expense.ID,
			expense.Date,
			strings.ToUpper(string(expense.Type)),
			formatInt64(expense.Amount),
			expense.Description,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func formatInt64(value int64) string {
	return strconv.FormatInt(value, 10)
}
