package repositories

import (
	"time"

	"github.com/ggegelya/expensetracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountRepositoryInterface defines the contract for account repository operations
type AccountRepositoryInterface interface {
	Create(account *models.Account) error
	GetByID(id uuid.UUID) (*models.Account, error)
	GetByTag(tag string) (*models.Account, error)
	GetAll() ([]models.Account, error)
	GetDefault() (*models.Account, error)
	Update(account *models.Account) error
	Delete(id uuid.UUID) error
	ClearDefaultExcept(id uuid.UUID) error
	AdjustBalance(id uuid.UUID, delta decimal.Decimal) error
	ReferencingTransactionCount(id uuid.UUID) (int64, error)
	DerivedBalance(id uuid.UUID) (decimal.Decimal, error)
	WithTx(tx *gorm.DB) AccountRepositoryInterface
}

// CategoryRepositoryInterface defines the contract for category repository operations
type CategoryRepositoryInterface interface {
	Create(category *models.Category) error
	GetByID(id uuid.UUID) (*models.Category, error)
	GetByKey(key string) (*models.Category, error)
	GetAll() ([]models.Category, error)
	Update(category *models.Category) error
	Delete(id uuid.UUID) error
	ReferencingCount(id uuid.UUID) (int64, error)
	EnsureSystemCategories() error
	WithTx(tx *gorm.DB) CategoryRepositoryInterface
}

// TransactionRepositoryInterface defines the contract for transaction repository operations
type TransactionRepositoryInterface interface {
	Create(transaction *models.Transaction) error
	GetByID(id uuid.UUID) (*models.Transaction, error)
	GetWithFilters(filters models.TransactionFilters) ([]models.Transaction, int64, error)
	GetByTransferGroup(groupID uuid.UUID) ([]models.Transaction, error)
	GetChildren(parentID uuid.UUID) ([]models.Transaction, error)
	GetByBankTransactionID(bankTxnID string) (*models.Transaction, error)
	Update(transaction *models.Transaction) error
	Delete(id uuid.UUID) error
	DeleteChildren(parentID uuid.UUID) error
	CategoryBreakdown(startDate, endDate *time.Time, accountID *uuid.UUID) ([]models.CategoryBreakdownRow, error)
	WithTx(tx *gorm.DB) TransactionRepositoryInterface
}

// PendingTransactionRepositoryInterface defines the contract for pending transaction operations
type PendingTransactionRepositoryInterface interface {
	Create(pending *models.PendingTransaction) error
	GetByID(id uuid.UUID) (*models.PendingTransaction, error)
	GetByBankTransactionID(bankTxnID string) (*models.PendingTransaction, error)
	GetPending(accountID *uuid.UUID) ([]models.PendingTransaction, error)
	TransitionStatus(id uuid.UUID, from, to string, processedAt time.Time) error
	Update(pending *models.PendingTransaction) error
	CountByStatus(status string) (int64, error)
	WithTx(tx *gorm.DB) PendingTransactionRepositoryInterface
}

// MerchantRuleRepositoryInterface defines the contract for learned merchant rule operations
type MerchantRuleRepositoryInterface interface {
	GetByMatchKey(matchKey string) (*models.MerchantRule, error)
	Upsert(matchKey string, categoryID uuid.UUID) error
	RecordHit(matchKey string) error
	GetAll() ([]models.MerchantRule, error)
	WithTx(tx *gorm.DB) MerchantRuleRepositoryInterface
}
