package repositories

import (
	"errors"
	"fmt"

	"github.com/ggegelya/expensetracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrMerchantRuleNotFound = errors.New("merchant rule not found")

// merchantRuleRepository implements MerchantRuleRepositoryInterface
type merchantRuleRepository struct {
	db *gorm.DB
}

// NewMerchantRuleRepository creates a new merchant rule repository
func NewMerchantRuleRepository(db *gorm.DB) MerchantRuleRepositoryInterface {
	return &merchantRuleRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *merchantRuleRepository) WithTx(tx *gorm.DB) MerchantRuleRepositoryInterface {
	return &merchantRuleRepository{db: tx}
}

// GetByMatchKey retrieves a learned rule for a normalized merchant key
func (r *merchantRuleRepository) GetByMatchKey(matchKey string) (*models.MerchantRule, error) {
	var rule models.MerchantRule
	if err := r.db.Where("match_key = ?", matchKey).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantRuleNotFound
		}
		return nil, fmt.Errorf("failed to get merchant rule: %w", err)
	}
	return &rule, nil
}

// Upsert records a merchant to category association. An existing rule is
// repointed at the new category, a correction overrides earlier learning.
func (r *merchantRuleRepository) Upsert(matchKey string, categoryID uuid.UUID) error {
	var rule models.MerchantRule
	err := r.db.Where("match_key = ?", matchKey).First(&rule).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up merchant rule: %w", err)
		}
		rule = models.MerchantRule{
			MatchKey:   matchKey,
			CategoryID: categoryID,
			HitCount:   1,
		}
		if err := r.db.Create(&rule).Error; err != nil {
			return fmt.Errorf("failed to create merchant rule: %w", err)
		}
		return nil
	}

	rule.CategoryID = categoryID
	rule.HitCount++
	if err := r.db.Save(&rule).Error; err != nil {
		return fmt.Errorf("failed to update merchant rule: %w", err)
	}
	return nil
}

// RecordHit increments the hit counter for a rule that produced a confirmed match
func (r *merchantRuleRepository) RecordHit(matchKey string) error {
	result := r.db.Model(&models.MerchantRule{}).
		Where("match_key = ?", matchKey).
		Update("hit_count", gorm.Expr("hit_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to record merchant rule hit: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMerchantRuleNotFound
	}
	return nil
}

// GetAll retrieves all learned rules, most used first
func (r *merchantRuleRepository) GetAll() ([]models.MerchantRule, error) {
	var rules []models.MerchantRule
	if err := r.db.Order("hit_count DESC, match_key ASC").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to get merchant rules: %w", err)
	}
	return rules, nil
}
