package models

import (
	"time"

	"gorm.io/gorm"
)

// PlanningStatus represents the lifecycle status of a planning.
type PlanningStatus string

const (
	PlanningStatusDraft    PlanningStatus = "draft"
	PlanningStatusPending  PlanningStatus = "pending"
	PlanningStatusAccepted PlanningStatus = "accepted"
	PlanningStatusRejected PlanningStatus = "rejected"
)

// Planning represents one customer quotation / production plan.
// It owns its items (with their details) and remarks: they are created and
// deleted together with the planning.
type Planning struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Business identifier, format PLN-YYYY-NNNN, unique per (prefix, year).
	PlanningID  string `gorm:"size:50;uniqueIndex;not null" json:"planning_id"`
	ProjectName string `gorm:"size:255;not null" json:"project_name"`

	// Customer company block
	CompanyName     string `gorm:"size:255" json:"company_name"`
	CompanyAddress  string `gorm:"size:500" json:"company_address"`
	CompanyCity     string `gorm:"size:100" json:"company_city"`
	CompanyProvince string `gorm:"size:100" json:"company_province"`
	CompanyTelp     string `gorm:"size:50" json:"company_telp"`
	CompanyEmail    string `gorm:"size:255" json:"company_email"`

	ProductionDate time.Time `gorm:"not null" json:"production_date"`
	BillTo         string    `gorm:"size:255" json:"bill_to"`
	Notes          string    `gorm:"type:text" json:"notes,omitempty"`

	// Billing block
	BillingName            string `gorm:"size:255" json:"billing_name"`
	BillingBankName        string `gorm:"size:100" json:"billing_bank_name"`
	BillingBankAccount     string `gorm:"size:50" json:"billing_bank_account"`
	BillingBankAccountName string `gorm:"size:255" json:"billing_bank_account_name"`
	BillingKtp             string `gorm:"size:50" json:"billing_ktp"`
	BillingNpwp            string `gorm:"size:50" json:"billing_npwp"`

	// Signature block
	SignatureName      string `gorm:"size:255" json:"signature_name"`
	SignatureRole      string `gorm:"size:100" json:"signature_role"`
	SignatureImageData string `gorm:"type:text" json:"signature_image_data,omitempty"`

	// PPh is the Indonesian withholding tax rate applied to the total, in percent.
	PPh         float64        `gorm:"type:decimal(5,2)" json:"pph"`
	TotalAmount float64        `gorm:"type:decimal(15,2)" json:"total_amount"`
	Status      PlanningStatus `gorm:"size:20;default:'draft'" json:"status"`

	Items   []PlanningItem   `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Remarks []PlanningRemark `gorm:"constraint:OnDelete:CASCADE" json:"remarks,omitempty"`
}

// IsDraft returns true if the planning has not been submitted yet.
func (p *Planning) IsDraft() bool {
	return p.Status == PlanningStatusDraft
}

// CanEdit returns true if the planning can still be modified.
func (p *Planning) CanEdit() bool {
	return p.Status == PlanningStatusDraft || p.Status == PlanningStatusPending
}

// ShouldSync returns true if the planning qualifies for the spreadsheet mirror.
// Only pending and accepted quotations are reported.
func (p *Planning) ShouldSync() bool {
	return p.Status == PlanningStatusPending || p.Status == PlanningStatusAccepted
}

// Year returns the calendar year of the production date.
func (p *Planning) Year() int {
	return p.ProductionDate.Year()
}

// PlanningItem is a product line within a planning. Total is stored as
// entered, not recomputed from details, so historical values survive price
// changes.
type PlanningItem struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PlanningID  uint   `gorm:"index;not null" json:"planning_id"`
	ProductName string `gorm:"size:255;not null" json:"product_name"`

	Total float64 `gorm:"type:decimal(15,2)" json:"total"`

	Details []PlanningItemDetail `gorm:"constraint:OnDelete:CASCADE" json:"details,omitempty"`
}

// PlanningItemDetail is a sub-line of an item: unit price x qty = amount.
type PlanningItemDetail struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PlanningItemID uint `gorm:"index;not null" json:"item_id"`

	Detail    string  `gorm:"size:500" json:"detail"`
	UnitPrice float64 `gorm:"type:decimal(15,2)" json:"unit_price"`
	Qty       float64 `gorm:"type:decimal(10,3);default:1" json:"qty"`
	Amount    float64 `gorm:"type:decimal(15,2)" json:"amount"`
}

// ComputedAmount returns unit price x qty. The stored Amount is the source
// of truth; this helper exists for validation and display.
func (d *PlanningItemDetail) ComputedAmount() float64 {
	return d.UnitPrice * d.Qty
}

// PlanningRemark is a free-text note on a planning.
type PlanningRemark struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PlanningID uint `gorm:"index;not null" json:"planning_id"`

	Text        string `gorm:"size:500;not null" json:"text"`
	IsCompleted bool   `gorm:"default:false" json:"is_completed"`
}
