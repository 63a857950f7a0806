package repositories

import (
	"errors"
	"fmt"

	"github.com/ggegelya/expensetracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryKeyExists = errors.New("category key already exists")
)

// categoryRepository implements CategoryRepositoryInterface
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepositoryInterface {
	return &categoryRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *categoryRepository) WithTx(tx *gorm.DB) CategoryRepositoryInterface {
	return &categoryRepository{db: tx}
}

// Create creates a new category
func (r *categoryRepository) Create(category *models.Category) error {
	if err := r.db.Create(category).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrCategoryKeyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetByID retrieves a category by ID
func (r *categoryRepository) GetByID(id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// GetByKey retrieves a category by its stable key
func (r *categoryRepository) GetByKey(key string) (*models.Category, error) {
	var category models.Category
	if err := r.db.Where("key = ?", key).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category by key: %w", err)
	}
	return &category, nil
}

// GetAll retrieves all categories ordered for display
func (r *categoryRepository) GetAll() ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Order("sort_order ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// Update updates a category
func (r *categoryRepository) Update(category *models.Category) error {
	if err := r.db.Save(category).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrCategoryKeyExists
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

// Delete deletes a category
func (r *categoryRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// ReferencingCount counts transactions, pending suggestions, and learned
// rules that reference the category.
func (r *categoryRepository) ReferencingCount(id uuid.UUID) (int64, error) {
	var txnCount int64
	if err := r.db.Model(&models.Transaction{}).
		Where("category_id = ?", id).
		Count(&txnCount).Error; err != nil {
		return 0, fmt.Errorf("failed to count referencing transactions: %w", err)
	}

	var pendingCount int64
	if err := r.db.Model(&models.PendingTransaction{}).
		Where("suggested_category_id = ?", id).
		Count(&pendingCount).Error; err != nil {
		return 0, fmt.Errorf("failed to count referencing pending transactions: %w", err)
	}

	var ruleCount int64
	if err := r.db.Model(&models.MerchantRule{}).
		Where("category_id = ?", id).
		Count(&ruleCount).Error; err != nil {
		return 0, fmt.Errorf("failed to count referencing merchant rules: %w", err)
	}

	return txnCount + pendingCount + ruleCount, nil
}

// EnsureSystemCategories creates any missing system categories. Existing
// rows are left untouched so user edits to names and icons survive restarts.
func (r *categoryRepository) EnsureSystemCategories() error {
	for _, category := range models.SystemCategories() {
		var count int64
		if err := r.db.Model(&models.Category{}).
			Where("key = ?", category.Key).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check system category %s: %w", category.Key, err)
		}
		if count > 0 {
			continue
		}

		c := category
		if err := r.db.Create(&c).Error; err != nil {
			return fmt.Errorf("failed to seed system category %s: %w", category.Key, err)
		}
	}
	return nil
}
