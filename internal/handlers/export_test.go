package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andriwij/planning-app/internal/models"
	"github.com/xuri/excelize/v2"
)

func TestExport_ProducesWorkbook(t *testing.T) {
	h, db := setupHandlerTest(t)
	seedTree(t, db)
	for _, name := range []string{"Lighting", "Multimedia"} {
		if err := db.Create(&models.Product{Name: name}).Error; err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/plannings/export?year=2024", nil)
	w := httptest.NewRecorder()
	h.Export(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Content-Type = %q", ct)
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("workbook has %d rows, want header + 1", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][5] != "Lighting" || rows[0][6] != "Multimedia" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "PLN-2024-0001" {
		t.Errorf("data row = %v", rows[1])
	}
}

func TestExport_RejectsBadYear(t *testing.T) {
	h, _ := setupHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/plannings/export?year=abc", nil)
	w := httptest.NewRecorder()
	h.Export(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}
