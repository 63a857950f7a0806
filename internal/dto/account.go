package dto

import (
	"github.com/ggegelya/expensetracker/internal/models"
)

// Account Request DTOs

// CreateAccountRequest represents the request payload for creating a new account
type CreateAccountRequest struct {
	Tag         string `json:"tag" validate:"required,account_tag"`
	Name        string `json:"name" validate:"required,min=1,max=64"`
	AccountType string `json:"account_type" validate:"required,account_type"`
	Currency    string `json:"currency" validate:"omitempty,currency_code"`
	IsDefault   bool   `json:"is_default"`
}

// UpdateAccountRequest represents the request payload for updating an account.
// Balance is never accepted here, it is derived from the posted ledger.
type UpdateAccountRequest struct {
	Tag         *string `json:"tag" validate:"omitempty,account_tag"`
	Name        *string `json:"name" validate:"omitempty,min=1,max=64"`
	AccountType *string `json:"account_type" validate:"omitempty,account_type"`
	Currency    *string `json:"currency" validate:"omitempty,currency_code"`
	IsDefault   *bool   `json:"is_default"`
}

// Account Response DTOs

// AccountListResponse represents the list of accounts
type AccountListResponse struct {
	Accounts []models.Account `json:"accounts"`
	Total    int              `json:"total"`
}

// AccountDriftResponse reports per-account differences between the stored
// balance and the balance derived from posted transactions
type AccountDriftResponse struct {
	Accounts []models.AccountDrift `json:"accounts"`
	Repaired int                   `json:"repaired"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}
