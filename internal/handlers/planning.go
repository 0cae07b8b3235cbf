// Package handlers contains the HTTP handlers for the JSON API.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/andriwij/planning-app/internal/httpx"
	"github.com/andriwij/planning-app/internal/metrics"
	"github.com/andriwij/planning-app/internal/models"
	"github.com/andriwij/planning-app/internal/services"
	"github.com/andriwij/planning-app/internal/sheets"
	"gorm.io/gorm"
)

// PlanningHandler serves the planning CRUD and copy endpoints.
type PlanningHandler struct {
	DB   *gorm.DB
	Svc  *services.PlanningService
	Sync *sheets.Service
	Log  *slog.Logger
}

func NewPlanningHandler(db *gorm.DB, svc *services.PlanningService, sync *sheets.Service, log *slog.Logger) *PlanningHandler {
	return &PlanningHandler{DB: db, Svc: svc, Sync: sync, Log: log}
}

type planningDetailRequest struct {
	Detail    string  `json:"detail"`
	UnitPrice float64 `json:"unit_price"`
	Qty       float64 `json:"qty"`
	Amount    float64 `json:"amount"`
}

type planningItemRequest struct {
	ProductName string                  `json:"product_name"`
	Total       float64                 `json:"total"`
	Details     []planningDetailRequest `json:"details"`
}

type planningRemarkRequest struct {
	Text        string `json:"text"`
	IsCompleted bool   `json:"is_completed"`
}

type planningRequest struct {
	ProjectName            string                  `json:"project_name"`
	CompanyName            string                  `json:"company_name"`
	CompanyAddress         string                  `json:"company_address"`
	CompanyCity            string                  `json:"company_city"`
	CompanyProvince        string                  `json:"company_province"`
	CompanyTelp            string                  `json:"company_telp"`
	CompanyEmail           string                  `json:"company_email"`
	ProductionDate         time.Time               `json:"production_date"`
	BillTo                 string                  `json:"bill_to"`
	Notes                  string                  `json:"notes"`
	BillingName            string                  `json:"billing_name"`
	BillingBankName        string                  `json:"billing_bank_name"`
	BillingBankAccount     string                  `json:"billing_bank_account"`
	BillingBankAccountName string                  `json:"billing_bank_account_name"`
	BillingKtp             string                  `json:"billing_ktp"`
	BillingNpwp            string                  `json:"billing_npwp"`
	SignatureName          string                  `json:"signature_name"`
	SignatureRole          string                  `json:"signature_role"`
	SignatureImageData     string                  `json:"signature_image_data"`
	PPh                    float64                 `json:"pph"`
	TotalAmount            float64                 `json:"total_amount"`
	Status                 models.PlanningStatus   `json:"status"`
	Items                  []planningItemRequest   `json:"items"`
	Remarks                []planningRemarkRequest `json:"remarks"`
}

func (req *planningRequest) validate() map[string]string {
	problems := map[string]string{}
	if req.ProjectName == "" {
		problems["project_name"] = "required"
	}
	if req.ProductionDate.IsZero() {
		problems["production_date"] = "required"
	}
	switch req.Status {
	case "", models.PlanningStatusDraft, models.PlanningStatusPending,
		models.PlanningStatusAccepted, models.PlanningStatusRejected:
	default:
		problems["status"] = "unknown status"
	}
	if len(problems) > 0 {
		return problems
	}
	return nil
}

func (req *planningRequest) toModel() *models.Planning {
	p := &models.Planning{
		ProjectName:            req.ProjectName,
		CompanyName:            req.CompanyName,
		CompanyAddress:         req.CompanyAddress,
		CompanyCity:            req.CompanyCity,
		CompanyProvince:        req.CompanyProvince,
		CompanyTelp:            req.CompanyTelp,
		CompanyEmail:           req.CompanyEmail,
		ProductionDate:         req.ProductionDate,
		BillTo:                 req.BillTo,
		Notes:                  req.Notes,
		BillingName:            req.BillingName,
		BillingBankName:        req.BillingBankName,
		BillingBankAccount:     req.BillingBankAccount,
		BillingBankAccountName: req.BillingBankAccountName,
		BillingKtp:             req.BillingKtp,
		BillingNpwp:            req.BillingNpwp,
		SignatureName:          req.SignatureName,
		SignatureRole:          req.SignatureRole,
		SignatureImageData:     req.SignatureImageData,
		PPh:                    req.PPh,
		TotalAmount:            req.TotalAmount,
		Status:                 req.Status,
	}
	if p.Status == "" {
		p.Status = models.PlanningStatusDraft
	}
	for _, it := range req.Items {
		item := models.PlanningItem{ProductName: it.ProductName, Total: it.Total}
		for _, d := range it.Details {
			item.Details = append(item.Details, models.PlanningItemDetail{
				Detail:    d.Detail,
				UnitPrice: d.UnitPrice,
				Qty:       d.Qty,
				Amount:    d.Amount,
			})
		}
		p.Items = append(p.Items, item)
	}
	for _, rm := range req.Remarks {
		p.Remarks = append(p.Remarks, models.PlanningRemark{Text: rm.Text, IsCompleted: rm.IsCompleted})
	}
	return p
}

// List: GET /api/plannings?year=&status=&limit=&page=
func (h *PlanningHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}

	dbq := h.DB.Model(&models.Planning{})
	if v := r.URL.Query().Get("year"); v != "" {
		if year, err := strconv.Atoi(v); err == nil {
			dbq = dbq.Where("planning_id LIKE ?", services.YearPrefix(time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC))+"%")
		}
	}
	if v := r.URL.Query().Get("status"); v != "" {
		dbq = dbq.Where("status = ?", v)
	}

	var total int64
	dbq.Count(&total)

	var plannings []models.Planning
	if err := dbq.Preload("Items.Details").Preload("Remarks").
		Order("id desc").Limit(limit).Offset(offset).
		Find(&plannings).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_plannings", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items": plannings, "total": total, "limit": limit, "offset": offset,
	})
}

// Get: GET /api/plannings/{id}
func (h *PlanningHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var p models.Planning
	err := h.DB.Preload("Items.Details").Preload("Remarks").First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Planning not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_planning", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Create: POST /api/plannings
func (h *PlanningHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req planningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if problems := req.validate(); problems != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", problems)
		return
	}
	p := req.toModel()
	if err := h.Svc.Create(r.Context(), p); err != nil {
		h.Log.Error("create planning failed", "err", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_planning", nil)
		return
	}
	h.Sync.SyncQuotation(r.Context(), p)
	httpx.JSON(w, http.StatusCreated, p)
}

// Update: PUT /api/plannings/{id}
// Replaces header fields and all owned collections in one transaction.
func (h *PlanningHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req planningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if problems := req.validate(); problems != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", problems)
		return
	}

	var existing models.Planning
	if err := h.DB.Preload("Items").First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Planning not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_planning", nil)
		return
	}

	updated := req.toModel()
	updated.ID = existing.ID
	updated.PlanningID = existing.PlanningID
	updated.CreatedAt = existing.CreatedAt

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := deleteOwned(tx, &existing); err != nil {
			return err
		}
		// Save re-creates the owned collections alongside the header update.
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(updated).Error
	})
	if err != nil {
		h.Log.Error("update planning failed", "planning_id", existing.PlanningID, "err", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_planning", nil)
		return
	}

	h.Sync.SyncQuotation(r.Context(), updated)
	httpx.JSON(w, http.StatusOK, updated)
}

// Delete: DELETE /api/plannings/{id}
func (h *PlanningHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var p models.Planning
	if err := h.DB.Preload("Items").First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Planning not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_planning", nil)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := deleteOwned(tx, &p); err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
	if err != nil {
		h.Log.Error("delete planning failed", "planning_id", p.PlanningID, "err", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_planning", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": p.PlanningID})
}

// Copy: POST /api/plannings/{id}/copy
func (h *PlanningHandler) Copy(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "Planning not found", nil)
		return
	}
	dup, err := h.Svc.Copy(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrPlanningNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Planning not found", nil)
			return
		}
		h.Log.Error("copy planning failed", "id", id, "err", err)
		httpx.JSONError(w, http.StatusInternalServerError, "Failed to copy planning", nil)
		return
	}
	metrics.PlanningCopiesTotal.Inc()
	h.Log.Info("planning copied", "source_id", id, "planning_id", dup.PlanningID)
	httpx.JSON(w, http.StatusCreated, dup)
}

// deleteOwned hard-deletes the items (with their details) and remarks of a
// planning. Soft delete does not cascade, so the tree is cleared explicitly.
func deleteOwned(tx *gorm.DB, p *models.Planning) error {
	itemIDs := make([]uint, 0, len(p.Items))
	for _, it := range p.Items {
		itemIDs = append(itemIDs, it.ID)
	}
	if len(itemIDs) > 0 {
		if err := tx.Unscoped().Where("planning_item_id IN ?", itemIDs).
			Delete(&models.PlanningItemDetail{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Unscoped().Where("planning_id = ?", p.ID).
		Delete(&models.PlanningItem{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Where("planning_id = ?", p.ID).
		Delete(&models.PlanningRemark{}).Error
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (uint, bool) {
	v := r.PathValue("id")
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return uint(n), true
}
