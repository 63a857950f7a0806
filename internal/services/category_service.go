package services

import (
	"context"
	"log/slog"

	"github.com/ggegelya/expensetracker/internal/database"
	"github.com/ggegelya/expensetracker/internal/models"
	"github.com/ggegelya/expensetracker/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// categoryService manages the category set. Keys are stable identifiers used
// for matching and migration, they never change after creation.
type categoryService struct {
	db         *database.DB
	categories repositories.CategoryRepositoryInterface
	notifier   *ChangeNotifier
	logger     *slog.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(db *database.DB, categories repositories.CategoryRepositoryInterface, notifier *ChangeNotifier, logger *slog.Logger) CategoryServiceInterface {
	return &categoryService{
		db:         db,
		categories: categories,
		notifier:   notifier,
		logger:     logger,
	}
}

// CreateCategory creates a user category
func (s *categoryService) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := category.Validate(); err != nil {
		return nil, err
	}

	// User-created categories never claim system status
	category.IsSystem = false

	if err := s.categories.Create(category); err != nil {
		return nil, err
	}

	s.logger.Info("category created", "category_id", category.ID, "key", category.Key)
	s.notifier.Notify()
	return category, nil
}

// GetCategory retrieves one category
func (s *categoryService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.categories.GetByID(id)
}

// GetCategories lists all categories in display order
func (s *categoryService) GetCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.GetAll()
}

// UpdateCategory edits display fields. The key is immutable.
func (s *categoryService) UpdateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	var updated *models.Category

	err := s.db.Transaction(func(tx *gorm.DB) error {
		categories := s.categories.WithTx(tx)

		prior, err := categories.GetByID(category.ID)
		if err != nil {
			return err
		}

		if category.Key != "" && category.Key != prior.Key {
			return ErrCategoryKeyImmutable
		}

		next := *prior
		next.Name = category.Name
		next.Icon = category.Icon
		next.Color = category.Color
		next.SortOrder = category.SortOrder

		if err := next.Validate(); err != nil {
			return err
		}
		if err := categories.Update(&next); err != nil {
			return err
		}

		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("category updated", "category_id", updated.ID, "key", updated.Key)
	s.notifier.Notify()
	return updated, nil
}

// DeleteCategory removes a category that nothing references. System
// categories are protected.
func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		categories := s.categories.WithTx(tx)

		category, err := categories.GetByID(id)
		if err != nil {
			return err
		}
		if category.IsSystem {
			return ErrCategorySystemProtected
		}

		references, err := categories.ReferencingCount(id)
		if err != nil {
			return err
		}
		if references > 0 {
			return ErrCategoryInUse
		}

		return categories.Delete(id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("category deleted", "category_id", id)
	s.notifier.Notify()
	return nil
}

// EnsureSystemCategories seeds any missing system categories at startup
func (s *categoryService) EnsureSystemCategories(ctx context.Context) error {
	if err := s.categories.EnsureSystemCategories(); err != nil {
		return err
	}
	s.logger.Info("system categories ensured")
	return nil
}
