package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MerchantRule is a learned association between a normalized merchant or
// description key and a category. Rules are written when the user corrects a
// low- or medium-confidence suggestion and are consulted before the static
// pattern table, so repeated merchants resolve with high confidence.
type MerchantRule struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MatchKey   string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"match_key"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	HitCount   int       `gorm:"not null;default:0" json:"hit_count"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`

	// Associations
	Category Category `gorm:"foreignKey:CategoryID" json:"-"`
}

// BeforeCreate hook for MerchantRule
func (r *MerchantRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now
	}

	if r.MatchKey == "" {
		return errors.New("match key is required")
	}
	if r.CategoryID == uuid.Nil {
		return errors.New("category ID is required")
	}

	return nil
}

// TableName returns the table name for MerchantRule
func (r *MerchantRule) TableName() string {
	return "merchant_rules"
}

// NormalizeMatchKey collapses merchant/description text into a match key:
// lowercased, punctuation and whitespace stripped, truncated to the column
// width.
func NormalizeMatchKey(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))

	var b strings.Builder
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r > 127 {
			b.WriteRune(r)
		}
	}

	key := b.String()
	if len(key) > 128 {
		key = key[:128]
	}
	return key
}
