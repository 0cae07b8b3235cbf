package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/andriwij/planning-app/internal/metrics"
	"github.com/andriwij/planning-app/internal/models"
	"gorm.io/gorm"
)

// Fixed header columns; catalog product names follow as dynamic columns.
var headerColumns = []string{"ID", "Bill To", "Status", "Production Date", "Total Amount (after PPH)"}

// Service mirrors quotations into the configured spreadsheet. A nil client
// means the mirror is not configured and every sync is a logged no-op.
type Service struct {
	db     *gorm.DB
	client Client
	log    *slog.Logger

	// serializes the check-then-create of yearly tabs
	mu sync.Mutex
}

func NewService(db *gorm.DB, client Client, log *slog.Logger) *Service {
	return &Service{db: db, client: client, log: log}
}

// SyncQuotation upserts the quotation's row in its yearly tab. It returns
// true only when a row was actually written. Quotations outside the
// pending/accepted statuses are skipped, and all errors are logged and
// swallowed: reporting must never fail the request that saved the planning.
func (s *Service) SyncQuotation(ctx context.Context, p *models.Planning) bool {
	if s.client == nil {
		s.log.Warn("sheets mirror not configured, skipping sync", "planning_id", p.PlanningID)
		metrics.SheetSyncTotal.WithLabelValues("skipped").Inc()
		return false
	}
	if !p.ShouldSync() {
		s.log.Debug("planning status not reportable, skipping sync",
			"planning_id", p.PlanningID, "status", p.Status)
		metrics.SheetSyncTotal.WithLabelValues("skipped").Inc()
		return false
	}
	if err := s.sync(ctx, p); err != nil {
		s.log.Error("sheet sync failed", "planning_id", p.PlanningID, "err", err)
		metrics.SheetSyncTotal.WithLabelValues("failed").Inc()
		return false
	}
	metrics.SheetSyncTotal.WithLabelValues("synced").Inc()
	return true
}

func (s *Service) sync(ctx context.Context, p *models.Planning) error {
	sheetName := fmt.Sprintf("Quotation %d", p.Year())

	products, err := models.ProductNames(s.db)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	if err := s.ensureSheet(ctx, sheetName, products); err != nil {
		return err
	}

	row := s.buildRow(p, products)

	ids, err := s.client.ReadColumn(ctx, sheetName+"!A:A")
	if err != nil {
		return err
	}
	rowIndex := 0 // sheets are 1-indexed; 0 means not found
	for i, v := range ids {
		if v == p.PlanningID {
			rowIndex = i + 1
			break
		}
	}

	if rowIndex > 0 {
		rng := fmt.Sprintf("%s!A%d:ZZ%d", sheetName, rowIndex, rowIndex)
		if err := s.client.UpdateRange(ctx, rng, row); err != nil {
			return err
		}
		s.log.Info("updated quotation in sheet", "planning_id", p.PlanningID, "row", rowIndex)
		return nil
	}
	if err := s.client.AppendRow(ctx, sheetName+"!A:ZZ", row); err != nil {
		return err
	}
	s.log.Info("appended quotation to sheet", "planning_id", p.PlanningID, "sheet", sheetName)
	return nil
}

// ensureSheet creates the yearly tab with its header row if absent.
// Serialized under the service mutex; AddSheet additionally tolerates a tab
// created concurrently by another process.
func (s *Service) ensureSheet(ctx context.Context, name string, products []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	titles, err := s.client.SheetTitles(ctx)
	if err != nil {
		return err
	}
	if _, ok := titles[name]; ok {
		return nil
	}

	sheetID, err := s.client.AddSheet(ctx, name)
	if err != nil {
		return err
	}

	header := make([]any, 0, len(headerColumns)+len(products))
	for _, h := range headerColumns {
		header = append(header, h)
	}
	for _, p := range products {
		header = append(header, p)
	}
	if err := s.client.UpdateRange(ctx, name+"!A1:ZZ1", header); err != nil {
		return err
	}
	if err := s.client.FormatHeader(ctx, sheetID); err != nil {
		return err
	}
	s.log.Info("created sheet", "sheet", name)
	return nil
}

// buildRow assembles fixed columns plus one total per catalog product.
// Items naming products outside the catalog are left out of the totals.
func (s *Service) buildRow(p *models.Planning, products []string) []any {
	totals := make(map[string]float64, len(products))
	for _, name := range products {
		totals[name] = 0
	}
	for _, item := range p.Items {
		if _, ok := totals[item.ProductName]; !ok {
			s.log.Warn("item product not in catalog, excluded from sheet totals",
				"planning_id", p.PlanningID, "product", item.ProductName)
			continue
		}
		totals[item.ProductName] += item.Total
	}

	row := []any{
		p.PlanningID,
		p.BillTo,
		string(p.Status),
		p.ProductionDate.Format("2006-01-02"),
		p.TotalAmount,
	}
	for _, name := range products {
		row = append(row, totals[name])
	}
	return row
}
