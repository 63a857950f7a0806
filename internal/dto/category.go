package dto

import (
	"github.com/ggegelya/expensetracker/internal/models"
)

// Category Request DTOs

// CreateCategoryRequest represents the request payload for creating a category
type CreateCategoryRequest struct {
	Key       string `json:"key" validate:"required,min=2,max=50"`
	Name      string `json:"name" validate:"required,min=1,max=100"`
	Icon      string `json:"icon" validate:"omitempty,max=50"`
	Color     string `json:"color" validate:"omitempty,hexcolor"`
	SortOrder int    `json:"sort_order" validate:"omitempty,min=0"`
}

// UpdateCategoryRequest represents the request payload for updating a category.
// The key is immutable after creation and is not accepted here.
type UpdateCategoryRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	Icon      *string `json:"icon" validate:"omitempty,max=50"`
	Color     *string `json:"color" validate:"omitempty,hexcolor"`
	SortOrder *int    `json:"sort_order" validate:"omitempty,min=0"`
}

// Category Response DTOs

// CategoryListResponse represents the list of categories
type CategoryListResponse struct {
	Categories []models.Category `json:"categories"`
	Total      int               `json:"total"`
}
