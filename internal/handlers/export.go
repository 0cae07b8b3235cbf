package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/andriwij/planning-app/internal/httpx"
	"github.com/andriwij/planning-app/internal/models"
	"github.com/andriwij/planning-app/internal/services"
	"github.com/xuri/excelize/v2"
)

// Export: GET /api/plannings/export?year=YYYY
// Streams an xlsx with the same columns as the spreadsheet mirror, for
// offline reporting. Defaults to the current year.
func (h *PlanningHandler) Export(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2000 || n > 2100 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_year", nil)
			return
		}
		year = n
	}

	var plannings []models.Planning
	err := h.DB.Preload("Items").
		Where("planning_id LIKE ?", services.YearPrefix(time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC))+"%").
		Order("planning_id asc").
		Find(&plannings).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_plannings", nil)
		return
	}

	products, err := models.ProductNames(h.DB)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []any{"ID", "Bill To", "Status", "Production Date", "Total Amount (after PPH)"}
	for _, name := range products {
		header = append(header, name)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_build_export", nil)
		return
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		_ = f.SetCellStyle(sheet, "A1", last, style)
	}

	row := 2
	for i := range plannings {
		p := &plannings[i]
		totals := make(map[string]float64, len(products))
		for _, item := range p.Items {
			totals[item.ProductName] += item.Total
		}
		excelRow := []any{
			p.PlanningID,
			p.BillTo,
			string(p.Status),
			p.ProductionDate.Format("2006-01-02"),
			p.TotalAmount,
		}
		for _, name := range products {
			excelRow = append(excelRow, totals[name])
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_build_export", nil)
			return
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_build_export", nil)
			return
		}
		row++
	}

	filename := fmt.Sprintf("plannings_%d_%s.xlsx", year, time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := f.Write(w); err != nil {
		h.Log.Error("write export failed", "err", err)
	}
}
