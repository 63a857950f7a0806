package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/ggegelya/expensetracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrBankTransactionExists = errors.New("bank transaction already recorded")
)

// transactionRepository implements TransactionRepositoryInterface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &transactionRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *transactionRepository) WithTx(tx *gorm.DB) TransactionRepositoryInterface {
	return &transactionRepository{db: tx}
}

// Create creates a new transaction
func (r *transactionRepository) Create(transaction *models.Transaction) error {
	if err := r.db.Omit(clause.Associations).Create(transaction).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrBankTransactionExists
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction with its category and split children
func (r *transactionRepository) GetByID(id uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.
		Preload("Category").
		Preload("Children").
		Preload("Children.Category").
		Where("id = ?", id).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &transaction, nil
}

// GetWithFilters retrieves posting transactions matching the filters,
// newest first. Split children are only visible through their parent.
func (r *transactionRepository) GetWithFilters(filters models.TransactionFilters) ([]models.Transaction, int64, error) {
	query := r.db.Model(&models.Transaction{}).
		Where("parent_transaction_id IS NULL")

	if filters.AccountID != nil {
		query = query.Where("from_account_id = ? OR to_account_id = ?", *filters.AccountID, *filters.AccountID)
	}
	if filters.CategoryID != nil {
		query = query.Where(
			"category_id = ? OR id IN (?)",
			*filters.CategoryID,
			r.db.Model(&models.Transaction{}).
				Select("parent_transaction_id").
				Where("parent_transaction_id IS NOT NULL AND category_id = ?", *filters.CategoryID),
		)
	}
	if filters.StartDate != nil {
		query = query.Where("transaction_date >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		query = query.Where("transaction_date <= ?", *filters.EndDate)
	}
	if filters.Type != "" {
		query = query.Where("transaction_type = ?", filters.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count filtered transactions: %w", err)
	}

	var transactions []models.Transaction
	err := query.
		Preload("Category").
		Preload("Children").
		Preload("Children.Category").
		Order("transaction_date DESC, created_at DESC").
		Offset(filters.Offset).
		Limit(filters.Limit).
		Find(&transactions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get filtered transactions: %w", err)
	}

	return transactions, total, nil
}

// GetByTransferGroup retrieves both legs of a transfer
func (r *transactionRepository) GetByTransferGroup(groupID uuid.UUID) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.Where("transfer_group_id = ?", groupID).Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get transfer group: %w", err)
	}
	return transactions, nil
}

// GetChildren retrieves the split children of a parent transaction
func (r *transactionRepository) GetChildren(parentID uuid.UUID) ([]models.Transaction, error) {
	var children []models.Transaction
	if err := r.db.Where("parent_transaction_id = ?", parentID).
		Order("created_at ASC").
		Find(&children).Error; err != nil {
		return nil, fmt.Errorf("failed to get split children: %w", err)
	}
	return children, nil
}

// GetByBankTransactionID retrieves a transaction by its bank import identifier
func (r *transactionRepository) GetByBankTransactionID(bankTxnID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.db.Where("bank_transaction_id = ?", bankTxnID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by bank id: %w", err)
	}
	return &transaction, nil
}

// Update updates a transaction. Associations stay untouched, children are
// managed explicitly by the split path.
func (r *transactionRepository) Update(transaction *models.Transaction) error {
	if err := r.db.Omit(clause.Associations).Save(transaction).Error; err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

// Delete deletes a transaction. Split children go with the parent.
func (r *transactionRepository) Delete(id uuid.UUID) error {
	if err := r.DeleteChildren(id); err != nil {
		return err
	}

	result := r.db.Delete(&models.Transaction{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// DeleteChildren deletes all split children of a parent transaction
func (r *transactionRepository) DeleteChildren(parentID uuid.UUID) error {
	if err := r.db.Delete(&models.Transaction{}, "parent_transaction_id = ?", parentID).Error; err != nil {
		return fmt.Errorf("failed to delete split children: %w", err)
	}
	return nil
}

// CategoryBreakdown aggregates expense totals per category in the given
// window. Split parents are excluded so each hryvnia counts once, children
// carry their own categories into the aggregate.
func (r *transactionRepository) CategoryBreakdown(startDate, endDate *time.Time, accountID *uuid.UUID) ([]models.CategoryBreakdownRow, error) {
	query := r.db.Model(&models.Transaction{}).
		Select(`categories.id AS category_id,
			categories.key AS category_key,
			categories.name AS category_name,
			COUNT(transactions.id) AS transaction_count,
			COALESCE(SUM(transactions.amount), 0) AS total_amount`).
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.transaction_type = ?", models.TransactionTypeExpense).
		Where(`NOT EXISTS (
			SELECT 1 FROM transactions children
			WHERE children.parent_transaction_id = transactions.id
		)`)

	if startDate != nil {
		query = query.Where("transactions.transaction_date >= ?", *startDate)
	}
	if endDate != nil {
		query = query.Where("transactions.transaction_date <= ?", *endDate)
	}
	if accountID != nil {
		query = query.Where(`transactions.from_account_id = ? OR EXISTS (
			SELECT 1 FROM transactions parents
			WHERE parents.id = transactions.parent_transaction_id
			AND parents.from_account_id = ?
		)`, *accountID, *accountID)
	}

	var rows []models.CategoryBreakdownRow
	err := query.
		Group("categories.id, categories.key, categories.name").
		Order("total_amount DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute category breakdown: %w", err)
	}

	return rows, nil
}
