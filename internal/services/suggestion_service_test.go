package services

import (
	"context"
	"testing"

	"github.com/ggegelya/expensetracker/internal/database"
	"github.com/ggegelya/expensetracker/internal/models"
	"github.com/ggegelya/expensetracker/internal/repositories"

	"github.com/stretchr/testify/suite"
)

type SuggestionServiceSuite struct {
	suite.Suite
	db        *database.DB
	service   SuggestionServiceInterface
	groceries *models.Category
	dining    *models.Category
	ctx       context.Context
}

func (s *SuggestionServiceSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.ctx = context.Background()

	rules := repositories.NewMerchantRuleRepository(s.db.DB)
	categories := repositories.NewCategoryRepository(s.db.DB)
	s.Require().NoError(categories.EnsureSystemCategories())

	var err error
	s.groceries, err = categories.GetByKey(models.CategoryKeyGroceries)
	s.Require().NoError(err)
	s.dining, err = categories.GetByKey(models.CategoryKeyDining)
	s.Require().NoError(err)

	s.service = NewSuggestionService(rules, categories, NewNoopMetrics(), testLogger())
}

func (s *SuggestionServiceSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestSuggestionServiceSuite(t *testing.T) {
	suite.Run(t, new(SuggestionServiceSuite))
}

func (s *SuggestionServiceSuite) TestKnownMerchant_HighConfidence() {
	suggestion, err := s.service.SuggestCategory(s.ctx, "SILPO KYIV UA", "Silpo")
	s.Require().NoError(err)
	s.Require().NotNil(suggestion.CategoryID)
	s.Equal(s.groceries.ID, *suggestion.CategoryID)
	s.GreaterOrEqual(suggestion.Confidence, models.ConfidenceHigh)
}

func (s *SuggestionServiceSuite) TestDescriptionKeyword_MediumConfidence() {
	suggestion, err := s.service.SuggestCategory(s.ctx, "Local coffee point", "")
	s.Require().NoError(err)
	s.Require().NotNil(suggestion.CategoryID)
	s.Equal(s.dining.ID, *suggestion.CategoryID)
	s.GreaterOrEqual(suggestion.Confidence, models.ConfidenceMedium)
	s.Less(suggestion.Confidence, models.ConfidenceHigh)
}

func (s *SuggestionServiceSuite) TestUnknownMerchant_LowConfidenceNoCategory() {
	suggestion, err := s.service.SuggestCategory(s.ctx, "ZQX-3000 PAYMENT", "Zhmerynka Vodokanal")
	s.Require().NoError(err)
	s.Nil(suggestion.CategoryID)
	s.Less(suggestion.Confidence, models.ConfidenceMedium)
}

func (s *SuggestionServiceSuite) TestFuzzyMatch_TypoInMerchant() {
	suggestion, err := s.service.SuggestCategory(s.ctx, "", "Silpoo")
	s.Require().NoError(err)
	s.Require().NotNil(suggestion.CategoryID)
	s.Equal(s.groceries.ID, *suggestion.CategoryID)
}

func (s *SuggestionServiceSuite) TestLearnedRule_BeatsPatternTable() {
	// The pattern table says groceries, the user insists on dining
	s.Require().NoError(s.service.LearnFromCorrection(s.ctx, "SILPO KYIV UA", "Silpo", s.dining.ID))

	suggestion, err := s.service.SuggestCategory(s.ctx, "SILPO KYIV UA", "Silpo")
	s.Require().NoError(err)
	s.Require().NotNil(suggestion.CategoryID)
	s.Equal(s.dining.ID, *suggestion.CategoryID)
	s.GreaterOrEqual(suggestion.Confidence, models.ConfidenceHigh)
}

func (s *SuggestionServiceSuite) TestLearn_UnknownMerchantResolvesNextTime() {
	before, err := s.service.SuggestCategory(s.ctx, "", "Zhmerynka Vodokanal")
	s.Require().NoError(err)
	s.Nil(before.CategoryID)

	s.Require().NoError(s.service.LearnFromCorrection(s.ctx, "", "Zhmerynka Vodokanal", s.groceries.ID))

	after, err := s.service.SuggestCategory(s.ctx, "", "Zhmerynka Vodokanal")
	s.Require().NoError(err)
	s.Require().NotNil(after.CategoryID)
	s.Equal(s.groceries.ID, *after.CategoryID)
	s.GreaterOrEqual(after.Confidence, models.ConfidenceHigh)
}
