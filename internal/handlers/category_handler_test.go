package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ggegelya/expensetracker/internal/dto"
	"github.com/ggegelya/expensetracker/internal/models"

	"github.com/stretchr/testify/suite"
)

// CategoryHandlerSuite defines the test suite for CategoryHandler
type CategoryHandlerSuite struct {
	suite.Suite
	env     *testEnv
	handler *CategoryHandler
}

func (s *CategoryHandlerSuite) SetupTest() {
	s.env = newTestEnv(s.T())
	s.handler = NewCategoryHandler(s.env.categories)
}

func TestCategoryHandlerSuite(t *testing.T) {
	suite.Run(t, new(CategoryHandlerSuite))
}

func (s *CategoryHandlerSuite) TestCreateCategory_Success() {
	reqBody := dto.CreateCategoryRequest{
		Key:   "hobby",
		Name:  "Hobby",
		Icon:  "paintpalette",
		Color: "#FF8800",
	}

	c, rec := s.env.newContext(http.MethodPost, "/api/v1/categories", reqBody)
	s.NoError(s.handler.CreateCategory(c))
	s.Equal(http.StatusCreated, rec.Code)

	var created models.Category
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	s.Equal("hobby", created.Key)
	s.False(created.IsSystem)
}

func (s *CategoryHandlerSuite) TestCreateCategory_DuplicateKey() {
	s.Require().NoError(s.env.categories.EnsureSystemCategories(context.Background()))

	reqBody := dto.CreateCategoryRequest{
		Key:  models.CategoryKeyGroceries,
		Name: "My Groceries",
	}

	c, rec := s.env.newContext(http.MethodPost, "/api/v1/categories", reqBody)
	s.NoError(s.handler.CreateCategory(c))
	s.Equal(http.StatusConflict, rec.Code)
	s.Contains(rec.Body.String(), "CATEGORY_004")
}

func (s *CategoryHandlerSuite) TestCreateCategory_InvalidColor() {
	reqBody := map[string]interface{}{
		"key":   "hobby",
		"name":  "Hobby",
		"color": "orange",
	}

	c, rec := s.env.newContext(http.MethodPost, "/api/v1/categories", reqBody)
	s.NoError(s.handler.CreateCategory(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "VALIDATION_001")
}

func (s *CategoryHandlerSuite) TestGetCategories_ReturnsSystemSet() {
	s.Require().NoError(s.env.categories.EnsureSystemCategories(context.Background()))

	c, rec := s.env.newContext(http.MethodGet, "/api/v1/categories", nil)
	s.NoError(s.handler.GetCategories(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.CategoryListResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.NotEmpty(resp.Categories)
	s.Equal(len(resp.Categories), resp.Total)
}

func (s *CategoryHandlerSuite) TestGetCategory_NotFound() {
	c, rec := s.env.newContext(http.MethodGet, "/api/v1/categories/x", nil)
	c.SetParamNames("categoryId")
	c.SetParamValues("7e640e2e-9e7b-4c9d-a0e7-1f8f0f1f2f3f")

	s.NoError(s.handler.GetCategory(c))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), "CATEGORY_001")
}

func (s *CategoryHandlerSuite) TestUpdateCategory_RenamesDisplayFields() {
	created, err := s.env.categories.CreateCategory(context.Background(), &models.Category{
		Key:  "hobby",
		Name: "Hobby",
	})
	s.Require().NoError(err)

	newName := "Hobbies"
	newColor := "#00CC66"
	reqBody := dto.UpdateCategoryRequest{Name: &newName, Color: &newColor}

	c, rec := s.env.newContext(http.MethodPut, "/api/v1/categories/x", reqBody)
	c.SetParamNames("categoryId")
	c.SetParamValues(created.ID.String())

	s.NoError(s.handler.UpdateCategory(c))
	s.Equal(http.StatusOK, rec.Code)

	var updated models.Category
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &updated))
	s.Equal("Hobbies", updated.Name)
	s.Equal("#00CC66", updated.Color)
	// Key survives untouched
	s.Equal("hobby", updated.Key)
}

func (s *CategoryHandlerSuite) TestDeleteCategory_SystemProtected() {
	s.Require().NoError(s.env.categories.EnsureSystemCategories(context.Background()))

	all, err := s.env.categories.GetCategories(context.Background())
	s.Require().NoError(err)
	var system *models.Category
	for i := range all {
		if all[i].IsSystem {
			system = &all[i]
			break
		}
	}
	s.Require().NotNil(system)

	c, rec := s.env.newContext(http.MethodDelete, "/api/v1/categories/x", nil)
	c.SetParamNames("categoryId")
	c.SetParamValues(system.ID.String())

	s.NoError(s.handler.DeleteCategory(c))
	s.Equal(http.StatusConflict, rec.Code)
	s.Contains(rec.Body.String(), "CATEGORY_003")
}

func (s *CategoryHandlerSuite) TestDeleteCategory_Success() {
	created, err := s.env.categories.CreateCategory(context.Background(), &models.Category{
		Key:  "hobby",
		Name: "Hobby",
	})
	s.Require().NoError(err)

	c, rec := s.env.newContext(http.MethodDelete, "/api/v1/categories/x", nil)
	c.SetParamNames("categoryId")
	c.SetParamValues(created.ID.String())

	s.NoError(s.handler.DeleteCategory(c))
	s.Equal(http.StatusOK, rec.Code)
}
