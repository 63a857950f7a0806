package services

import (
	"context"
	"time"

	"github.com/ggegelya/expensetracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SplitAllocation is one category-amount leg of a split request
type SplitAllocation struct {
	CategoryID uuid.UUID
	Amount     decimal.Decimal
}

// TransferRequest describes an atomic two-leg transfer between accounts
type TransferRequest struct {
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
	Description   string
	Date          time.Time
}

// LedgerServiceInterface is the single serialized write path for everything
// that touches account balances, plus the read surface over transactions
type LedgerServiceInterface interface {
	CreateTransaction(ctx context.Context, txn *models.Transaction) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *models.Transaction) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	BulkDeleteTransactions(ctx context.Context, ids []uuid.UUID) (int, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	QueryTransactions(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, int64, error)

	SplitTransaction(ctx context.Context, parentID uuid.UUID, allocations []SplitAllocation) (*models.Transaction, error)
	UnsplitTransaction(ctx context.Context, parentID uuid.UUID) (*models.Transaction, error)

	CreateTransfer(ctx context.Context, req TransferRequest) ([]models.Transaction, error)

	PromotePending(ctx context.Context, pendingID uuid.UUID, categoryID *uuid.UUID, overrideDescription *string) (*models.Transaction, error)
	DismissPending(ctx context.Context, pendingID uuid.UUID) error

	CategoryBreakdown(ctx context.Context, startDate, endDate *time.Time, accountID *uuid.UUID) ([]models.CategoryBreakdownRow, error)
	RebuildBalances(ctx context.Context) ([]models.AccountDrift, error)
}

// AccountServiceInterface manages account metadata, balances change only
// through the ledger write path
type AccountServiceInterface interface {
	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetAccounts(ctx context.Context) ([]models.Account, error)
	UpdateAccount(ctx context.Context, account *models.Account) (*models.Account, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

// CategoryServiceInterface manages the category set
type CategoryServiceInterface interface {
	CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetCategories(ctx context.Context) ([]models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	EnsureSystemCategories(ctx context.Context) error
}

// Suggestion is a confidence-scored category guess for an imported transaction
type Suggestion struct {
	CategoryID *uuid.UUID
	Confidence float64
}

// SuggestionServiceInterface is the categorization port consumed by the
// pending lifecycle. Learned merchant rules take precedence over the static
// pattern table.
type SuggestionServiceInterface interface {
	SuggestCategory(ctx context.Context, description, merchantName string) (Suggestion, error)
	LearnFromCorrection(ctx context.Context, description, merchantName string, categoryID uuid.UUID) error
}

// PendingServiceInterface drives the pending import lifecycle. Promotion and
// dismissal delegate to the ledger write path, the listing is a plain read.
type PendingServiceInterface interface {
	ListPending(ctx context.Context, accountID *uuid.UUID) ([]models.PendingTransaction, error)
	ImportPending(ctx context.Context, pending *models.PendingTransaction) (*models.PendingTransaction, error)
	Process(ctx context.Context, id uuid.UUID, categoryID *uuid.UUID, overrideDescription *string) (*models.Transaction, error)
	Dismiss(ctx context.Context, id uuid.UUID) error
}

// TokenServiceInterface pairs devices and validates their tokens
type TokenServiceInterface interface {
	Pair(pairingSecret, deviceName string) (token string, expiresAt time.Time, err error)
	ValidateToken(token string) (*models.DeviceClaims, error)
}
