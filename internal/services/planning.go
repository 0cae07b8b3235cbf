// Package services encapsulates planning business logic.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andriwij/planning-app/internal/models"
	"gorm.io/gorm"
)

// ErrPlanningNotFound is returned when the requested planning does not exist.
var ErrPlanningNotFound = errors.New("planning not found")

// PlanningService owns identifier generation and aggregate-level writes.
type PlanningService struct {
	db *gorm.DB
}

func NewPlanningService(db *gorm.DB) *PlanningService {
	return &PlanningService{db: db}
}

// YearPrefix returns the identifier prefix for the given moment,
// e.g. "PLN-2026-".
func YearPrefix(t time.Time) string {
	return fmt.Sprintf("PLN-%d-", t.Year())
}

// GeneratePlanningID computes the next sequential identifier under prefix.
// Format: <prefix>NNNN with a 4-digit zero-padded sequence that widens past
// 9999. Ordering by length first keeps 5-digit sequences above 4-digit ones.
// Call inside the transaction that creates the row: uniqueness is enforced
// by the planning_id index, not here.
func GeneratePlanningID(tx *gorm.DB, prefix string) (string, error) {
	var ids []string
	err := tx.Model(&models.Planning{}).
		Where("planning_id LIKE ?", prefix+"%").
		Order("length(planning_id) DESC, planning_id DESC").
		Limit(1).
		Pluck("planning_id", &ids).Error
	if err != nil {
		return "", fmt.Errorf("query last planning id: %w", err)
	}
	next := 1
	if len(ids) > 0 {
		parts := strings.Split(ids[0], "-")
		if len(parts) < 3 {
			return "", fmt.Errorf("malformed planning id %q", ids[0])
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return "", fmt.Errorf("parse planning id %q: %w", ids[0], err)
		}
		next = n + 1
	}
	return fmt.Sprintf("%s%04d", prefix, next), nil
}

// Create persists a planning tree (header, items, details, remarks) in one
// transaction under a freshly generated identifier for the current year.
func (s *PlanningService) Create(ctx context.Context, p *models.Planning) error {
	prefix := YearPrefix(time.Now())
	var lastErr error
	// Generation is read-then-write; two concurrent creates can draw the
	// same sequence number. The unique index catches that, and one retry
	// re-reads the sequence.
	for attempt := 0; attempt < 2; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			id, err := GeneratePlanningID(tx, prefix)
			if err != nil {
				return err
			}
			p.PlanningID = id
			return tx.Create(p).Error
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		lastErr = err
		p.ID = 0
	}
	return lastErr
}

// Copy duplicates the planning tree under a new identifier. Header scalars
// are copied verbatim except the identifier, the project name (suffixed
// " - Copy") and the status, which always resets to draft. Item totals and
// detail amounts are copied as stored, never recalculated.
func (s *PlanningService) Copy(ctx context.Context, id uint) (*models.Planning, error) {
	var src models.Planning
	err := s.db.WithContext(ctx).
		Preload("Items.Details").
		Preload("Remarks").
		First(&src, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanningNotFound
		}
		return nil, fmt.Errorf("load planning %d: %w", id, err)
	}

	dup := clonePlanning(&src)
	if err := s.Create(ctx, dup); err != nil {
		return nil, fmt.Errorf("create planning copy: %w", err)
	}
	return dup, nil
}

func clonePlanning(src *models.Planning) *models.Planning {
	dup := &models.Planning{
		ProjectName:            src.ProjectName + " - Copy",
		CompanyName:            src.CompanyName,
		CompanyAddress:         src.CompanyAddress,
		CompanyCity:            src.CompanyCity,
		CompanyProvince:        src.CompanyProvince,
		CompanyTelp:            src.CompanyTelp,
		CompanyEmail:           src.CompanyEmail,
		ProductionDate:         src.ProductionDate,
		BillTo:                 src.BillTo,
		Notes:                  src.Notes,
		BillingName:            src.BillingName,
		BillingBankName:        src.BillingBankName,
		BillingBankAccount:     src.BillingBankAccount,
		BillingBankAccountName: src.BillingBankAccountName,
		BillingKtp:             src.BillingKtp,
		BillingNpwp:            src.BillingNpwp,
		SignatureName:          src.SignatureName,
		SignatureRole:          src.SignatureRole,
		SignatureImageData:     src.SignatureImageData,
		PPh:                    src.PPh,
		TotalAmount:            src.TotalAmount,
		Status:                 models.PlanningStatusDraft,
	}
	for _, item := range src.Items {
		ni := models.PlanningItem{
			ProductName: item.ProductName,
			Total:       item.Total,
		}
		for _, d := range item.Details {
			ni.Details = append(ni.Details, models.PlanningItemDetail{
				Detail:    d.Detail,
				UnitPrice: d.UnitPrice,
				Qty:       d.Qty,
				Amount:    d.Amount,
			})
		}
		dup.Items = append(dup.Items, ni)
	}
	for _, r := range src.Remarks {
		dup.Remarks = append(dup.Remarks, models.PlanningRemark{
			Text:        r.Text,
			IsCompleted: r.IsCompleted,
		})
	}
	return dup
}
