package dto

import (
	"time"

	"github.com/ggegelya/expensetracker/internal/models"
)

// Transaction Request DTOs

// CreateTransactionRequest represents the request payload for recording a transaction
type CreateTransactionRequest struct {
	Amount          string     `json:"amount" validate:"required,positive_amount"`
	Type            string     `json:"type" validate:"required,transaction_type"`
	Description     string     `json:"description" validate:"required,min=1,max=255"`
	CategoryID      *string    `json:"category_id" validate:"omitempty,uuid"`
	FromAccountID   *string    `json:"from_account_id" validate:"omitempty,uuid"`
	ToAccountID     *string    `json:"to_account_id" validate:"omitempty,uuid"`
	TransactionDate *time.Time `json:"transaction_date"`
}

// UpdateTransactionRequest represents the request payload for editing a transaction
type UpdateTransactionRequest struct {
	Amount          *string    `json:"amount" validate:"omitempty,positive_amount"`
	Type            *string    `json:"type" validate:"omitempty,transaction_type"`
	Description     *string    `json:"description" validate:"omitempty,min=1,max=255"`
	CategoryID      *string    `json:"category_id" validate:"omitempty,uuid"`
	FromAccountID   *string    `json:"from_account_id" validate:"omitempty,uuid"`
	ToAccountID     *string    `json:"to_account_id" validate:"omitempty,uuid"`
	TransactionDate *time.Time `json:"transaction_date"`
}

// SplitAllocationRequest is one category slice of a split
type SplitAllocationRequest struct {
	CategoryID string `json:"category_id" validate:"required,uuid"`
	Amount     string `json:"amount" validate:"required,positive_amount"`
}

// SplitTransactionRequest represents the request payload for splitting a
// transaction across categories. Allocations must sum to the parent amount.
type SplitTransactionRequest struct {
	Allocations []SplitAllocationRequest `json:"allocations" validate:"required,min=2,dive"`
}

// CreateTransferRequest represents the request payload for moving money
// between two accounts
type CreateTransferRequest struct {
	FromAccountID   string     `json:"from_account_id" validate:"required,uuid"`
	ToAccountID     string     `json:"to_account_id" validate:"required,uuid"`
	Amount          string     `json:"amount" validate:"required,positive_amount"`
	Description     string     `json:"description" validate:"omitempty,max=255"`
	TransactionDate *time.Time `json:"transaction_date"`
}

// BulkDeleteRequest represents the request payload for deleting several
// transactions in one atomic operation
type BulkDeleteRequest struct {
	TransactionIDs []string `json:"transaction_ids" validate:"required,min=1,max=100,dive,uuid"`
}

// TransactionQueryParams contains filtering options for transaction queries
type TransactionQueryParams struct {
	AccountID  string     `query:"account_id"`
	CategoryID string     `query:"category_id"`
	Type       string     `query:"type"`
	StartDate  *time.Time `query:"start_date"`
	EndDate    *time.Time `query:"end_date"`
	Offset     int        `query:"offset"`
	Limit      int        `query:"limit"`
}

// Transaction Response DTOs

// TransactionListResponse represents a paginated list of transactions
type TransactionListResponse struct {
	Transactions []models.Transaction `json:"transactions"`
	Total        int64                `json:"total"`
	Offset       int                  `json:"offset"`
	Limit        int                  `json:"limit"`
}

// TransferResponse represents the two legs created for a transfer
type TransferResponse struct {
	TransferGroupID string               `json:"transfer_group_id"`
	Transactions    []models.Transaction `json:"transactions"`
}

// BulkDeleteResponse reports how many transaction units were removed
type BulkDeleteResponse struct {
	Deleted int `json:"deleted"`
}

// CategoryBreakdownResponse represents per-category spending over a period
type CategoryBreakdownResponse struct {
	Breakdown []models.CategoryBreakdownRow `json:"breakdown"`
	StartDate *time.Time                    `json:"start_date,omitempty"`
	EndDate   *time.Time                    `json:"end_date,omitempty"`
}
