package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionFilters defines conjunctive (AND) filters for transaction
// queries. Zero values mean "no filter". Queries return posting transactions
// only, date-descending.
type TransactionFilters struct {
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	Type       string
	Offset     int
	Limit      int
}

// CategoryBreakdownRow is one category's share of spending over a period.
// Split parents are excluded and their allocation children counted instead,
// which is the reporting purpose splits exist for.
type CategoryBreakdownRow struct {
	CategoryID       uuid.UUID       `json:"category_id"`
	CategoryKey      string          `json:"category_key"`
	CategoryName     string          `json:"category_name"`
	TransactionCount int64           `json:"transaction_count"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
}

// AccountDrift is one account's divergence between the stored balance cache
// and the balance re-derived from the posted transaction set.
type AccountDrift struct {
	AccountID uuid.UUID       `json:"account_id"`
	Tag       string          `json:"tag"`
	Stored    decimal.Decimal `json:"stored"`
	Derived   decimal.Decimal `json:"derived"`
	Drift     decimal.Decimal `json:"drift"`
}
