package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stable internal keys of the seeded system categories. The key is immutable
// once created and is what suggestion rules and migrations match against.
const (
	CategoryKeyGroceries     = "groceries"
	CategoryKeyDining        = "dining"
	CategoryKeyTaxi          = "taxi"
	CategoryKeyTransport     = "transport"
	CategoryKeyEntertainment = "entertainment"
	CategoryKeyShopping      = "shopping"
	CategoryKeyUtilities     = "utilities"
	CategoryKeyHealth        = "health"
	CategoryKeyEducation     = "education"
	CategoryKeyTravel        = "travel"
	CategoryKeySalary        = "salary"
	CategoryKeyFees          = "fees"
	CategoryKeyOther         = "other"
)

var ErrInvalidCategoryKey = errors.New("category key must be non-empty lowercase alphanumeric")

// Category is a spending/income category. System categories are seeded and
// cannot be deleted; user categories can, unless a transaction references them.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Key       string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"key"`
	Name      string    `gorm:"type:varchar(64);not null" json:"name"`
	Icon      string    `gorm:"type:varchar(64)" json:"icon,omitempty"`
	Color     string    `gorm:"type:varchar(16)" json:"color,omitempty"`
	IsSystem  bool      `gorm:"not null;default:false" json:"is_system"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for Category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	return c.Validate()
}

// BeforeUpdate hook for Category
func (c *Category) BeforeUpdate(tx *gorm.DB) error {
	c.UpdatedAt = time.Now()
	return nil
}

// Validate validates the category fields
func (c *Category) Validate() error {
	if !IsValidCategoryKey(c.Key) {
		return ErrInvalidCategoryKey
	}

	if c.Name == "" {
		return errors.New("category name is required")
	}

	return nil
}

// TableName returns the table name for Category
func (c *Category) TableName() string {
	return "categories"
}

// IsValidCategoryKey checks the stable-key format
func IsValidCategoryKey(key string) bool {
	if len(key) == 0 || len(key) > 32 {
		return false
	}

	for _, r := range key {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '_' {
			return false
		}
	}
	return true
}

// SystemCategories returns the seed set, in sort order
func SystemCategories() []Category {
	keys := []struct {
		key, name, icon, color string
	}{
		{CategoryKeyGroceries, "Groceries", "cart", "#4CAF50"},
		{CategoryKeyDining, "Dining", "fork.knife", "#FF9800"},
		{CategoryKeyTaxi, "Taxi", "car", "#FFC107"},
		{CategoryKeyTransport, "Transport", "bus", "#03A9F4"},
		{CategoryKeyEntertainment, "Entertainment", "film", "#9C27B0"},
		{CategoryKeyShopping, "Shopping", "bag", "#E91E63"},
		{CategoryKeyUtilities, "Utilities", "bolt", "#607D8B"},
		{CategoryKeyHealth, "Health", "cross.case", "#F44336"},
		{CategoryKeyEducation, "Education", "book", "#3F51B5"},
		{CategoryKeyTravel, "Travel", "airplane", "#00BCD4"},
		{CategoryKeySalary, "Salary", "banknote", "#8BC34A"},
		{CategoryKeyFees, "Fees", "percent", "#795548"},
		{CategoryKeyOther, "Other", "ellipsis.circle", "#9E9E9E"},
	}

	categories := make([]Category, 0, len(keys))
	for i, k := range keys {
		categories = append(categories, Category{
			Key:       k.key,
			Name:      k.name,
			Icon:      k.icon,
			Color:     k.color,
			IsSystem:  true,
			SortOrder: i,
		})
	}
	return categories
}
