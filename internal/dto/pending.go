package dto

import (
	"time"

	"github.com/ggegelya/expensetracker/internal/models"
)

// Pending Request DTOs

// ImportPendingRequest represents one bank feed row submitted for review
type ImportPendingRequest struct {
	BankTransactionID string     `json:"bank_transaction_id" validate:"required,min=1,max=255"`
	AccountID         string     `json:"account_id" validate:"required,uuid"`
	Amount            string     `json:"amount" validate:"required,positive_amount"`
	Type              string     `json:"type" validate:"required,oneof=expense income"`
	RawDescription    string     `json:"raw_description" validate:"required,min=1,max=500"`
	MerchantName      string     `json:"merchant_name" validate:"omitempty,max=255"`
	TransactionDate   *time.Time `json:"transaction_date"`
}

// ProcessPendingRequest represents the confirmation of a pending import.
// CategoryID overrides the suggestion when set, Description overrides the
// raw bank text.
type ProcessPendingRequest struct {
	CategoryID  *string `json:"category_id" validate:"omitempty,uuid"`
	Description *string `json:"description" validate:"omitempty,min=1,max=255"`
}

// Pending Response DTOs

// PendingListResponse represents the review queue
type PendingListResponse struct {
	Pending []models.PendingTransaction `json:"pending"`
	Total   int                         `json:"total"`
}

// ProcessPendingResponse carries the posted transaction created from a
// pending import
type ProcessPendingResponse struct {
	Transaction *models.Transaction `json:"transaction"`
}
