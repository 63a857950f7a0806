package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TransactionTypeExpense     = "expense"
	TransactionTypeIncome      = "income"
	TransactionTypeTransferOut = "transfer_out"
	TransactionTypeTransferIn  = "transfer_in"
)

var (
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAmount          = errors.New("transaction amount must be positive")
	ErrFromAccountRequired    = errors.New("expense and transfer_out transactions require a from account")
	ErrToAccountRequired      = errors.New("income and transfer_in transactions require a to account")
	ErrNoPostingAccount       = errors.New("transaction has no posting account")
)

// Transaction is a ledger entry. A transaction with a nil ParentTransactionID
// is a posting record: it is the one record whose signed amount is applied to
// an account balance. A transaction with a parent is an allocation child of a
// split and never posts; it only carries a category slice of the parent's
// amount for reporting.
type Transaction struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TransactionType     string          `gorm:"type:varchar(20);not null;index" json:"transaction_type"`
	Amount              decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Description         string          `gorm:"type:text" json:"description"`
	TransactionDate     time.Time       `gorm:"not null;index" json:"transaction_date"`
	CategoryID          *uuid.UUID      `gorm:"type:uuid;index" json:"category_id,omitempty"`
	FromAccountID       *uuid.UUID      `gorm:"type:uuid;index" json:"from_account_id,omitempty"`
	ToAccountID         *uuid.UUID      `gorm:"type:uuid;index" json:"to_account_id,omitempty"`
	ParentTransactionID *uuid.UUID      `gorm:"type:uuid;index" json:"parent_transaction_id,omitempty"`
	TransferGroupID     *uuid.UUID      `gorm:"type:uuid;index" json:"transfer_group_id,omitempty"`
	BankTransactionID   *string         `gorm:"type:varchar(100);index" json:"bank_transaction_id,omitempty"`
	IsReconciled        bool            `gorm:"not null;default:false" json:"is_reconciled"`
	CreatedAt           time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"not null" json:"updated_at"`

	// Associations
	Category *Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Children []Transaction `gorm:"foreignKey:ParentTransactionID" json:"children,omitempty"`
}

// BeforeCreate hook for Transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	now := time.Now()
	if t.TransactionDate.IsZero() {
		t.TransactionDate = now
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	return t.Validate()
}

// BeforeUpdate hook for Transaction
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now()
	return nil
}

// Validate checks the type/account pairing invariant and amount sign.
// Expense and transfer_out must name a from account; income and transfer_in
// must name a to account.
func (t *Transaction) Validate() error {
	if !IsValidTransactionType(t.TransactionType) {
		return ErrInvalidTransactionType
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	switch t.TransactionType {
	case TransactionTypeExpense, TransactionTypeTransferOut:
		if t.FromAccountID == nil {
			return ErrFromAccountRequired
		}
	case TransactionTypeIncome, TransactionTypeTransferIn:
		if t.ToAccountID == nil {
			return ErrToAccountRequired
		}
	}

	return nil
}

// IsPosting reports whether this record posts against an account balance.
// Allocation children of a split never post.
func (t *Transaction) IsPosting() bool {
	return t.ParentTransactionID == nil
}

// IsSplitParent reports whether the transaction owns allocation children
func (t *Transaction) IsSplitParent() bool {
	return len(t.Children) > 0
}

// IsOutgoing reports whether the amount leaves the posting account
func (t *Transaction) IsOutgoing() bool {
	return t.TransactionType == TransactionTypeExpense || t.TransactionType == TransactionTypeTransferOut
}

// PostingAccountID returns the account the transaction posts against
func (t *Transaction) PostingAccountID() (uuid.UUID, error) {
	if t.IsOutgoing() {
		if t.FromAccountID == nil {
			return uuid.Nil, ErrNoPostingAccount
		}
		return *t.FromAccountID, nil
	}

	if t.ToAccountID == nil {
		return uuid.Nil, ErrNoPostingAccount
	}
	return *t.ToAccountID, nil
}

// EffectiveAmount returns the signed delta the transaction contributes to its
// posting account: negative for expense/transfer_out, positive for
// income/transfer_in.
func (t *Transaction) EffectiveAmount() decimal.Decimal {
	if t.IsOutgoing() {
		return t.Amount.Neg()
	}
	return t.Amount
}

// ChildrenSum returns the sum of allocation child amounts
func (t *Transaction) ChildrenSum() decimal.Decimal {
	sum := decimal.Zero
	for _, child := range t.Children {
		sum = sum.Add(child.Amount)
	}
	return sum
}

// TableName returns the table name for Transaction
func (t *Transaction) TableName() string {
	return "transactions"
}

// IsValidTransactionType checks if the transaction type is valid
func IsValidTransactionType(transactionType string) bool {
	switch transactionType {
	case TransactionTypeExpense, TransactionTypeIncome, TransactionTypeTransferOut, TransactionTypeTransferIn:
		return true
	default:
		return false
	}
}
