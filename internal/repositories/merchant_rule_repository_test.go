package repositories

import (
	"testing"

	"github.com/ggegelya/expensetracker/internal/database"

	"github.com/stretchr/testify/suite"
)

type MerchantRuleRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo MerchantRuleRepositoryInterface
}

func (s *MerchantRuleRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewMerchantRuleRepository(s.db.DB)
}

func (s *MerchantRuleRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestMerchantRuleRepositorySuite(t *testing.T) {
	suite.Run(t, new(MerchantRuleRepositorySuite))
}

func (s *MerchantRuleRepositorySuite) TestUpsert_CreateThenRepoint() {
	groceries := database.CreateTestCategory(s.T(), s.db, "groceries")
	dining := database.CreateTestCategory(s.T(), s.db, "dining")

	s.NoError(s.repo.Upsert("silpo", groceries.ID))

	rule, err := s.repo.GetByMatchKey("silpo")
	s.NoError(err)
	s.Equal(groceries.ID, rule.CategoryID)
	s.Equal(1, rule.HitCount)

	// A correction repoints the rule and bumps the counter
	s.NoError(s.repo.Upsert("silpo", dining.ID))

	rule, err = s.repo.GetByMatchKey("silpo")
	s.NoError(err)
	s.Equal(dining.ID, rule.CategoryID)
	s.Equal(2, rule.HitCount)
}

func (s *MerchantRuleRepositorySuite) TestGetByMatchKey_NotFound() {
	_, err := s.repo.GetByMatchKey("ghost")
	s.ErrorIs(err, ErrMerchantRuleNotFound)
}

func (s *MerchantRuleRepositorySuite) TestRecordHit() {
	groceries := database.CreateTestCategory(s.T(), s.db, "groceries")
	s.NoError(s.repo.Upsert("atb", groceries.ID))

	s.NoError(s.repo.RecordHit("atb"))

	rule, err := s.repo.GetByMatchKey("atb")
	s.NoError(err)
	s.Equal(2, rule.HitCount)

	s.ErrorIs(s.repo.RecordHit("ghost"), ErrMerchantRuleNotFound)
}
