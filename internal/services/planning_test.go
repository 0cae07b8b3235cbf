package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/andriwij/planning-app/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Planning{},
		&models.PlanningItem{},
		&models.PlanningItemDetail{},
		&models.PlanningRemark{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedPlanning(t *testing.T, db *gorm.DB, planningID string) *models.Planning {
	t.Helper()
	p := &models.Planning{
		PlanningID:     planningID,
		ProjectName:    "Project " + planningID,
		ProductionDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:         models.PlanningStatusPending,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed planning %s: %v", planningID, err)
	}
	return p
}

func TestGeneratePlanningID_EmptyScope(t *testing.T) {
	db := setupTestDB(t)
	got, err := GeneratePlanningID(db, "PLN-2026-")
	if err != nil {
		t.Fatalf("GeneratePlanningID: %v", err)
	}
	if got != "PLN-2026-0001" {
		t.Errorf("GeneratePlanningID() = %q, want PLN-2026-0001", got)
	}
}

func TestGeneratePlanningID_Sequence(t *testing.T) {
	db := setupTestDB(t)
	for i := 1; i <= 42; i++ {
		seedPlanning(t, db, fmt.Sprintf("PLN-2024-%04d", i))
	}
	got, err := GeneratePlanningID(db, "PLN-2024-")
	if err != nil {
		t.Fatalf("GeneratePlanningID: %v", err)
	}
	if got != "PLN-2024-0043" {
		t.Errorf("GeneratePlanningID() = %q, want PLN-2024-0043", got)
	}
}

func TestGeneratePlanningID_ScopedToPrefix(t *testing.T) {
	db := setupTestDB(t)
	seedPlanning(t, db, "PLN-2023-0099")
	seedPlanning(t, db, "PLN-2024-0002")
	got, err := GeneratePlanningID(db, "PLN-2024-")
	if err != nil {
		t.Fatalf("GeneratePlanningID: %v", err)
	}
	if got != "PLN-2024-0003" {
		t.Errorf("GeneratePlanningID() = %q, want PLN-2024-0003", got)
	}
}

func TestGeneratePlanningID_WidensPast9999(t *testing.T) {
	db := setupTestDB(t)
	seedPlanning(t, db, "PLN-2024-9999")
	got, err := GeneratePlanningID(db, "PLN-2024-")
	if err != nil {
		t.Fatalf("GeneratePlanningID: %v", err)
	}
	if got != "PLN-2024-10000" {
		t.Errorf("GeneratePlanningID() = %q, want PLN-2024-10000", got)
	}

	// A 5-digit sequence must sort above all 4-digit ones.
	seedPlanning(t, db, "PLN-2024-10000")
	got, err = GeneratePlanningID(db, "PLN-2024-")
	if err != nil {
		t.Fatalf("GeneratePlanningID: %v", err)
	}
	if got != "PLN-2024-10001" {
		t.Errorf("GeneratePlanningID() = %q, want PLN-2024-10001", got)
	}
}

func TestCreate_AssignsGeneratedID(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPlanningService(db)

	p := &models.Planning{
		ProjectName:    "Stage Build",
		ProductionDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:         models.PlanningStatusDraft,
	}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	want := fmt.Sprintf("PLN-%d-0001", time.Now().Year())
	if p.PlanningID != want {
		t.Errorf("PlanningID = %q, want %q", p.PlanningID, want)
	}
}

func TestCopy_DeepCopiesTree(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPlanningService(db)

	src := &models.Planning{
		PlanningID:     "PLN-2024-0007",
		ProjectName:    "Annual Gala",
		CompanyName:    "PT Maju Jaya",
		BillTo:         "PT Maju Jaya",
		Notes:          "outdoor venue",
		ProductionDate: time.Date(2024, 9, 20, 0, 0, 0, 0, time.UTC),
		PPh:            2,
		TotalAmount:    1250,
		Status:         models.PlanningStatusAccepted,
		Items: []models.PlanningItem{
			{
				ProductName: "Sound System",
				Total:       1000,
				Details: []models.PlanningItemDetail{
					{Detail: "Main PA", UnitPrice: 400, Qty: 2, Amount: 800},
					{Detail: "Monitors", UnitPrice: 100, Qty: 2, Amount: 200},
				},
			},
			{
				ProductName: "Lighting",
				Total:       250,
				Details: []models.PlanningItemDetail{
					{Detail: "Par cans", UnitPrice: 25, Qty: 10, Amount: 250},
				},
			},
		},
		Remarks: []models.PlanningRemark{
			{Text: "deposit received", IsCompleted: true},
			{Text: "confirm crew", IsCompleted: false},
		},
	}
	if err := db.Create(src).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	dup, err := svc.Copy(context.Background(), src.ID)
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}

	if dup.ID == src.ID {
		t.Error("copy has the same row id as the source")
	}
	if dup.PlanningID == src.PlanningID {
		t.Errorf("copy kept the source identifier %q", src.PlanningID)
	}
	if dup.ProjectName != "Annual Gala - Copy" {
		t.Errorf("ProjectName = %q, want %q", dup.ProjectName, "Annual Gala - Copy")
	}
	if dup.Status != models.PlanningStatusDraft {
		t.Errorf("Status = %q, want draft", dup.Status)
	}
	if dup.CompanyName != src.CompanyName || dup.BillTo != src.BillTo || dup.Notes != src.Notes {
		t.Error("header scalars were not copied verbatim")
	}
	if dup.TotalAmount != src.TotalAmount || dup.PPh != src.PPh {
		t.Error("monetary fields were not copied verbatim")
	}
	if !dup.ProductionDate.Equal(src.ProductionDate) {
		t.Errorf("ProductionDate = %v, want %v", dup.ProductionDate, src.ProductionDate)
	}

	if len(dup.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(dup.Items))
	}
	if len(dup.Items[0].Details) != 2 || len(dup.Items[1].Details) != 1 {
		t.Fatalf("details not deep-copied: %d/%d", len(dup.Items[0].Details), len(dup.Items[1].Details))
	}
	if dup.Items[0].Total != 1000 || dup.Items[0].ProductName != "Sound System" {
		t.Errorf("item[0] = %q/%v, want Sound System/1000", dup.Items[0].ProductName, dup.Items[0].Total)
	}
	d := dup.Items[0].Details[0]
	if d.Detail != "Main PA" || d.UnitPrice != 400 || d.Qty != 2 || d.Amount != 800 {
		t.Errorf("detail fields not copied: %+v", d)
	}
	if d.ID == src.Items[0].Details[0].ID {
		t.Error("detail rows were not duplicated")
	}

	if len(dup.Remarks) != 2 {
		t.Fatalf("len(Remarks) = %d, want 2", len(dup.Remarks))
	}
	if dup.Remarks[0].Text != "deposit received" || !dup.Remarks[0].IsCompleted {
		t.Errorf("remark not copied: %+v", dup.Remarks[0])
	}

	// Source must be untouched.
	var reloaded models.Planning
	if err := db.Preload("Items.Details").Preload("Remarks").First(&reloaded, src.ID).Error; err != nil {
		t.Fatalf("reload source: %v", err)
	}
	if reloaded.Status != models.PlanningStatusAccepted || len(reloaded.Items) != 2 {
		t.Errorf("source modified by copy: status=%q items=%d", reloaded.Status, len(reloaded.Items))
	}
}

func TestCopy_UsesCurrentYearPrefix(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPlanningService(db)

	src := seedPlanning(t, db, "PLN-2019-0042")
	dup, err := svc.Copy(context.Background(), src.ID)
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	want := fmt.Sprintf("PLN-%d-0001", time.Now().Year())
	if dup.PlanningID != want {
		t.Errorf("PlanningID = %q, want %q (copy scoped to the current year)", dup.PlanningID, want)
	}
}

func TestCopy_NotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPlanningService(db)

	_, err := svc.Copy(context.Background(), 9999)
	if !errors.Is(err, ErrPlanningNotFound) {
		t.Fatalf("Copy err = %v, want ErrPlanningNotFound", err)
	}

	var count int64
	db.Model(&models.Planning{}).Count(&count)
	if count != 0 {
		t.Errorf("copy of a missing planning created %d rows", count)
	}
}

func TestYearPrefix(t *testing.T) {
	got := YearPrefix(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	if got != "PLN-2024-" {
		t.Errorf("YearPrefix() = %q, want PLN-2024-", got)
	}
}
