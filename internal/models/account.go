package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	AccountTypeCash       = "cash"
	AccountTypeCard       = "card"
	AccountTypeSavings    = "savings"
	AccountTypeInvestment = "investment"

	MaxAccountTagLength  = 12
	MaxAccountNameLength = 64
)

var (
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidAccountTag  = errors.New("account tag must be 1-12 alphanumeric characters")
	ErrInvalidCurrency    = errors.New("currency must be a 3-letter ISO code")
)

// Account is a balance-carrying ledger account. The stored balance is a cache
// of a derived quantity: at rest it equals the signed sum of all posted
// transactions referencing the account.
type Account struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name          string          `gorm:"type:varchar(64);not null" json:"name"`
	Tag           string          `gorm:"type:varchar(12);not null" json:"tag"`
	TagNormalized string          `gorm:"type:varchar(12);uniqueIndex;not null" json:"-"`
	AccountType   string          `gorm:"type:varchar(20);not null" json:"account_type"`
	Balance       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	IsDefault     bool            `gorm:"not null;default:false" json:"is_default"`
	Currency      string          `gorm:"type:varchar(3);not null" json:"currency"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for Account
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	if a.Currency == "" {
		a.Currency = "UAH"
	}

	a.TagNormalized = NormalizeTag(a.Tag)

	// Set timestamps if not already set (for tests)
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	return a.Validate()
}

// BeforeUpdate hook for Account
func (a *Account) BeforeUpdate(tx *gorm.DB) error {
	a.UpdatedAt = time.Now()
	if a.Tag != "" {
		a.TagNormalized = NormalizeTag(a.Tag)
	}
	return nil
}

// Validate validates the account fields
func (a *Account) Validate() error {
	if a.Name == "" {
		return errors.New("account name is required")
	}

	if len(a.Name) > MaxAccountNameLength {
		return errors.New("account name too long")
	}

	if !IsValidAccountTag(a.Tag) {
		return ErrInvalidAccountTag
	}

	if !IsValidAccountType(a.AccountType) {
		return ErrInvalidAccountType
	}

	if len(a.Currency) != 3 {
		return ErrInvalidCurrency
	}

	return nil
}

// Credit adds amount to the account balance
func (a *Account) Credit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("credit amount must be positive")
	}

	a.Balance = a.Balance.Add(amount)
	return nil
}

// Debit subtracts amount from the account balance. Negative balances are
// allowed: an overdrawn card account is a valid ledger state.
func (a *Account) Debit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("debit amount must be positive")
	}

	a.Balance = a.Balance.Sub(amount)
	return nil
}

// TableName returns the table name for Account
func (a *Account) TableName() string {
	return "accounts"
}

// Helper functions

// IsValidAccountType checks if the account type is valid
func IsValidAccountType(accountType string) bool {
	switch accountType {
	case AccountTypeCash, AccountTypeCard, AccountTypeSavings, AccountTypeInvestment:
		return true
	default:
		return false
	}
}

// IsValidAccountTag checks the short-tag format: 1-12 alphanumeric characters
func IsValidAccountTag(tag string) bool {
	if len(tag) == 0 || len(tag) > MaxAccountTagLength {
		return false
	}

	for _, r := range tag {
		if !isAlphanumeric(r) {
			return false
		}
	}
	return true
}

// NormalizeTag lowercases a tag for case-insensitive uniqueness
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
