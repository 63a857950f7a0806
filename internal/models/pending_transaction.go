package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PendingStatusPending   = "pending"
	PendingStatusProcessed = "processed"
	PendingStatusDismissed = "dismissed"
)

// Suggestion confidence bands. At or above High the suggested category is
// trusted; below Medium it is treated as a default guess.
const (
	ConfidenceHigh   = 0.8
	ConfidenceMedium = 0.5
)

var (
	ErrInvalidPendingStatus = errors.New("invalid pending transaction status")
	ErrInvalidConfidence    = errors.New("confidence must be between 0.0 and 1.0")
	ErrBankTxnIDRequired    = errors.New("bank transaction id is required")
)

// PendingTransaction is a bank-imported transaction awaiting user review.
// It never touches account balances itself; only the confirmed Transaction
// created during promotion posts. Terminal statuses (processed, dismissed)
// admit no further transitions.
type PendingTransaction struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BankTransactionID   string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"bank_transaction_id"`
	Amount              decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Description         string          `gorm:"type:text" json:"description"`
	MerchantName        string          `gorm:"type:varchar(255)" json:"merchant_name,omitempty"`
	TransactionDate     time.Time       `gorm:"not null" json:"transaction_date"`
	TransactionType     string          `gorm:"type:varchar(20);not null" json:"transaction_type"`
	AccountID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"account_id"`
	SuggestedCategoryID *uuid.UUID      `gorm:"type:uuid" json:"suggested_category_id,omitempty"`
	Confidence          float64         `gorm:"not null;default:0" json:"confidence"`
	Status              string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ImportedAt          time.Time       `gorm:"not null" json:"imported_at"`
	ProcessedAt         *time.Time      `json:"processed_at,omitempty"`

	// Associations
	Account           Account   `gorm:"foreignKey:AccountID" json:"-"`
	SuggestedCategory *Category `gorm:"foreignKey:SuggestedCategoryID" json:"suggested_category,omitempty"`
}

// BeforeCreate hook for PendingTransaction
func (p *PendingTransaction) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	if p.Status == "" {
		p.Status = PendingStatusPending
	}

	now := time.Now()
	if p.ImportedAt.IsZero() {
		p.ImportedAt = now
	}
	if p.TransactionDate.IsZero() {
		p.TransactionDate = now
	}

	return p.Validate()
}

// Validate validates the pending transaction fields
func (p *PendingTransaction) Validate() error {
	if p.BankTransactionID == "" {
		return ErrBankTxnIDRequired
	}

	if p.AccountID == uuid.Nil {
		return errors.New("account ID is required")
	}

	if !IsValidTransactionType(p.TransactionType) {
		return ErrInvalidTransactionType
	}

	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !IsValidPendingStatus(p.Status) {
		return ErrInvalidPendingStatus
	}

	if p.Confidence < 0.0 || p.Confidence > 1.0 {
		return ErrInvalidConfidence
	}

	return nil
}

// IsPending reports whether the record still awaits review
func (p *PendingTransaction) IsPending() bool {
	return p.Status == PendingStatusPending
}

// IsTerminal reports whether the status admits no further transitions
func (p *PendingTransaction) IsTerminal() bool {
	return p.Status == PendingStatusProcessed || p.Status == PendingStatusDismissed
}

// CanTransitionTo checks a status transition against the lifecycle machine
func (p *PendingTransaction) CanTransitionTo(newStatus string) bool {
	if p.Status != PendingStatusPending {
		return false
	}
	return newStatus == PendingStatusProcessed || newStatus == PendingStatusDismissed
}

// ConfidenceBand returns "high", "medium" or "low" for the stored confidence
func (p *PendingTransaction) ConfidenceBand() string {
	switch {
	case p.Confidence >= ConfidenceHigh:
		return "high"
	case p.Confidence >= ConfidenceMedium:
		return "medium"
	default:
		return "low"
	}
}

// TableName returns the table name for PendingTransaction
func (p *PendingTransaction) TableName() string {
	return "pending_transactions"
}

// IsValidPendingStatus checks if the pending status is valid
func IsValidPendingStatus(status string) bool {
	switch status {
	case PendingStatusPending, PendingStatusProcessed, PendingStatusDismissed:
		return true
	default:
		return false
	}
}
