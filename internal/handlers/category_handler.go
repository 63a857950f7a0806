package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/ggegelya/expensetracker/internal/dto"
	"github.com/ggegelya/expensetracker/internal/errors"
	"github.com/ggegelya/expensetracker/internal/models"
	"github.com/ggegelya/expensetracker/internal/repositories"
	"github.com/ggegelya/expensetracker/internal/services"

	"github.com/labstack/echo/v4"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService services.CategoryServiceInterface
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService services.CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategory creates a user-defined category
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req dto.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	category := &models.Category{
		Key:       req.Key,
		Name:      req.Name,
		Icon:      req.Icon,
		Color:     req.Color,
		SortOrder: req.SortOrder,
	}

	created, err := h.categoryService.CreateCategory(c.Request().Context(), category)
	if err != nil {
		return h.mapCategoryErr(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

// GetCategory retrieves one category by ID
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	categoryID, err := getUUIDParam(c, "categoryId")
	if err != nil {
		return err
	}

	category, err := h.categoryService.GetCategory(c.Request().Context(), categoryID)
	if err != nil {
		return h.mapCategoryErr(c, err)
	}

	return c.JSON(http.StatusOK, category)
}

// GetCategories lists all categories in sort order
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	categories, err := h.categoryService.GetCategories(c.Request().Context())
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.CategoryListResponse{
		Categories: categories,
		Total:      len(categories),
	})
}

// UpdateCategory edits category display fields. The key is immutable.
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	categoryID, err := getUUIDParam(c, "categoryId")
	if err != nil {
		return err
	}

	var req dto.UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	ctx := c.Request().Context()
	category, err := h.categoryService.GetCategory(ctx, categoryID)
	if err != nil {
		return h.mapCategoryErr(c, err)
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}
	if req.Color != nil {
		category.Color = *req.Color
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}

	updated, err := h.categoryService.UpdateCategory(ctx, category)
	if err != nil {
		return h.mapCategoryErr(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteCategory removes a user-defined category that nothing references
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	categoryID, err := getUUIDParam(c, "categoryId")
	if err != nil {
		return err
	}

	if err := h.categoryService.DeleteCategory(c.Request().Context(), categoryID); err != nil {
		return h.mapCategoryErr(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Category deleted successfully"})
}

func (h *CategoryHandler) mapCategoryErr(c echo.Context, err error) error {
	switch {
	case stderrors.Is(err, repositories.ErrCategoryNotFound):
		return SendError(c, errors.CategoryNotFound)
	case stderrors.Is(err, repositories.ErrCategoryKeyExists):
		return SendError(c, errors.CategoryDuplicateKey)
	case stderrors.Is(err, services.ErrCategoryInUse):
		return SendError(c, errors.CategoryInUse)
	case stderrors.Is(err, services.ErrCategorySystemProtected):
		return SendError(c, errors.CategorySystemProtected)
	case stderrors.Is(err, services.ErrCategoryKeyImmutable):
		return SendError(c, errors.CategoryKeyImmutable)
	default:
		return SendSystemError(c, err)
	}
}
