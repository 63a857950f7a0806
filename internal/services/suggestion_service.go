package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ggegelya/expensetracker/internal/models"
	"github.com/ggegelya/expensetracker/internal/repositories"

	"github.com/google/uuid"
)

type merchantPattern struct {
	categoryKey string
	confidence  float64
}

type descriptionPattern struct {
	keywords    []string
	categoryKey string
	confidence  float64
}

// suggestionService is the categorization port. Learned merchant rules win
// over the static pattern tables, a user correction beats any heuristic.
type suggestionService struct {
	rules               repositories.MerchantRuleRepositoryInterface
	categories          repositories.CategoryRepositoryInterface
	merchantPatterns    map[string]merchantPattern
	descriptionPatterns []descriptionPattern
	metrics             MetricsRecorderInterface
	logger              *slog.Logger
}

// NewSuggestionService creates the categorization suggestion service
func NewSuggestionService(
	rules repositories.MerchantRuleRepositoryInterface,
	categories repositories.CategoryRepositoryInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) SuggestionServiceInterface {
	return &suggestionService{
		rules:               rules,
		categories:          categories,
		merchantPatterns:    initMerchantPatterns(),
		descriptionPatterns: initDescriptionPatterns(),
		metrics:             metrics,
		logger:              logger,
	}
}

// SuggestCategory returns a confidence-scored category guess for an imported
// transaction. Order of precedence: learned rule, merchant pattern,
// description keywords, fuzzy merchant match, low-confidence fallback.
func (s *suggestionService) SuggestCategory(ctx context.Context, description, merchantName string) (Suggestion, error) {
	matchKey := models.NormalizeMatchKey(merchantName)
	if matchKey == "" {
		matchKey = models.NormalizeMatchKey(description)
	}

	if matchKey != "" {
		rule, err := s.rules.GetByMatchKey(matchKey)
		if err == nil {
			return s.record(Suggestion{CategoryID: &rule.CategoryID, Confidence: 0.95}), nil
		}
		if !errors.Is(err, repositories.ErrMerchantRuleNotFound) {
			return Suggestion{}, err
		}
	}

	if key, confidence, ok := s.matchMerchant(merchantName); ok {
		return s.resolve(key, confidence)
	}
	if key, confidence, ok := s.matchDescription(description); ok {
		return s.resolve(key, confidence)
	}
	if key, confidence, ok := s.fuzzyMatchMerchant(merchantName); ok {
		return s.resolve(key, confidence)
	}

	return s.record(Suggestion{CategoryID: nil, Confidence: 0.2}), nil
}

// LearnFromCorrection records a user's category choice for a merchant so the
// next import of the same merchant resolves with high confidence
func (s *suggestionService) LearnFromCorrection(ctx context.Context, description, merchantName string, categoryID uuid.UUID) error {
	matchKey := models.NormalizeMatchKey(merchantName)
	if matchKey == "" {
		matchKey = models.NormalizeMatchKey(description)
	}
	if matchKey == "" {
		return nil
	}

	if err := s.rules.Upsert(matchKey, categoryID); err != nil {
		return err
	}

	s.logger.Info("merchant rule learned",
		"match_key", matchKey,
		"category_id", categoryID)
	return nil
}

func (s *suggestionService) resolve(categoryKey string, confidence float64) (Suggestion, error) {
	category, err := s.categories.GetByKey(categoryKey)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			// Pattern points at a category the user deleted, fall back quietly
			return s.record(Suggestion{CategoryID: nil, Confidence: 0.2}), nil
		}
		return Suggestion{}, err
	}
	return s.record(Suggestion{CategoryID: &category.ID, Confidence: confidence}), nil
}

func (s *suggestionService) record(suggestion Suggestion) Suggestion {
	band := "low"
	switch {
	case suggestion.Confidence >= models.ConfidenceHigh:
		band = "high"
	case suggestion.Confidence >= models.ConfidenceMedium:
		band = "medium"
	}
	s.metrics.RecordSuggestion(band)
	return suggestion
}

func (s *suggestionService) matchMerchant(merchantName string) (string, float64, bool) {
	if merchantName == "" {
		return "", 0, false
	}

	normalized := normalizeForMatching(merchantName)
	for pattern, mapping := range s.merchantPatterns {
		if strings.Contains(normalized, normalizeForMatching(pattern)) {
			return mapping.categoryKey, mapping.confidence, true
		}
	}
	return "", 0, false
}

func (s *suggestionService) matchDescription(description string) (string, float64, bool) {
	if description == "" {
		return "", 0, false
	}

	normalized := strings.ToLower(description)
	for _, pattern := range s.descriptionPatterns {
		for _, keyword := range pattern.keywords {
			if strings.Contains(normalized, strings.ToLower(keyword)) {
				return pattern.categoryKey, pattern.confidence, true
			}
		}
	}
	return "", 0, false
}

func (s *suggestionService) fuzzyMatchMerchant(merchantName string) (string, float64, bool) {
	if merchantName == "" {
		return "", 0, false
	}

	input := normalizeForMatching(merchantName)
	var bestPattern string
	bestScore := 0.0

	for pattern := range s.merchantPatterns {
		score := calculateSimilarity(input, normalizeForMatching(pattern))
		if score > bestScore {
			bestScore = score
			bestPattern = pattern
		}
	}

	if bestScore > 0.7 && bestPattern != "" {
		mapping := s.merchantPatterns[bestPattern]
		return mapping.categoryKey, bestScore * mapping.confidence, true
	}
	return "", 0, false
}

// normalizeForMatching lowercases and strips whitespace and punctuation
func normalizeForMatching(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// initMerchantPatterns initializes common merchant patterns
func initMerchantPatterns() map[string]merchantPattern {
	return map[string]merchantPattern{
		// Groceries
		"Silpo":   {categoryKey: models.CategoryKeyGroceries, confidence: 0.9},
		"ATB":     {categoryKey: models.CategoryKeyGroceries, confidence: 0.9},
		"Novus":   {categoryKey: models.CategoryKeyGroceries, confidence: 0.9},
		"Auchan":  {categoryKey: models.CategoryKeyGroceries, confidence: 0.9},
		"Fora":    {categoryKey: models.CategoryKeyGroceries, confidence: 0.85},
		"Metro":   {categoryKey: models.CategoryKeyGroceries, confidence: 0.85},
		"Varus":   {categoryKey: models.CategoryKeyGroceries, confidence: 0.85},

		// Dining
		"McDonalds":          {categoryKey: models.CategoryKeyDining, confidence: 0.9},
		"KFC":                {categoryKey: models.CategoryKeyDining, confidence: 0.9},
		"Puzata Hata":        {categoryKey: models.CategoryKeyDining, confidence: 0.9},
		"Aroma Kava":         {categoryKey: models.CategoryKeyDining, confidence: 0.85},
		"Lvivski Croissants": {categoryKey: models.CategoryKeyDining, confidence: 0.85},

		// Taxi
		"Uklon": {categoryKey: models.CategoryKeyTaxi, confidence: 0.9},
		"Bolt":  {categoryKey: models.CategoryKeyTaxi, confidence: 0.9},
		"Uber":  {categoryKey: models.CategoryKeyTaxi, confidence: 0.9},

		// Transport and fuel
		"WOG":            {categoryKey: models.CategoryKeyTransport, confidence: 0.9},
		"OKKO":           {categoryKey: models.CategoryKeyTransport, confidence: 0.9},
		"Socar":          {categoryKey: models.CategoryKeyTransport, confidence: 0.85},
		"Ukrzaliznytsia": {categoryKey: models.CategoryKeyTransport, confidence: 0.9},

		// Entertainment
		"Megogo":  {categoryKey: models.CategoryKeyEntertainment, confidence: 0.9},
		"Netflix": {categoryKey: models.CategoryKeyEntertainment, confidence: 0.9},
		"Spotify": {categoryKey: models.CategoryKeyEntertainment, confidence: 0.9},
		"Steam":   {categoryKey: models.CategoryKeyEntertainment, confidence: 0.85},

		// Shopping
		"Rozetka":  {categoryKey: models.CategoryKeyShopping, confidence: 0.85},
		"Allo":     {categoryKey: models.CategoryKeyShopping, confidence: 0.8},
		"Comfy":    {categoryKey: models.CategoryKeyShopping, confidence: 0.8},
		"Epicentr": {categoryKey: models.CategoryKeyShopping, confidence: 0.8},

		// Utilities and telecom
		"Kyivstar": {categoryKey: models.CategoryKeyUtilities, confidence: 0.9},
		"Lifecell": {categoryKey: models.CategoryKeyUtilities, confidence: 0.9},
		"Yasno":    {categoryKey: models.CategoryKeyUtilities, confidence: 0.9},

		// Health
		"Apteka":      {categoryKey: models.CategoryKeyHealth, confidence: 0.85},
		"Podorozhnyk": {categoryKey: models.CategoryKeyHealth, confidence: 0.85},
	}
}

// initDescriptionPatterns initializes description keyword patterns
func initDescriptionPatterns() []descriptionPattern {
	return []descriptionPattern{
		{
			keywords:    []string{"salary", "payroll", "zarplata", "direct deposit"},
			categoryKey: models.CategoryKeySalary,
			confidence:  0.9,
		},
		{
			keywords:    []string{"commission", "service fee", "monthly fee", "bank fee"},
			categoryKey: models.CategoryKeyFees,
			confidence:  0.85,
		},
		{
			keywords:    []string{"supermarket", "grocery", "market"},
			categoryKey: models.CategoryKeyGroceries,
			confidence:  0.7,
		},
		{
			keywords:    []string{"restaurant", "cafe", "coffee", "pizza"},
			categoryKey: models.CategoryKeyDining,
			confidence:  0.7,
		},
		{
			keywords:    []string{"taxi", "ride"},
			categoryKey: models.CategoryKeyTaxi,
			confidence:  0.7,
		},
		{
			keywords:    []string{"pharmacy", "clinic", "hospital"},
			categoryKey: models.CategoryKeyHealth,
			confidence:  0.7,
		},
	}
}

// calculateSimilarity scores two strings with normalized Levenshtein distance
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}

	distance := levenshteinDistance(s1, s2)
	maxLen := len(s1)
	if len(s2) > maxLen {
		maxLen = len(s2)
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			deletion := matrix[i-1][j] + 1
			insertion := matrix[i][j-1] + 1
			substitution := matrix[i-1][j-1] + cost

			min := deletion
			if insertion < min {
				min = insertion
			}
			if substitution < min {
				min = substitution
			}
			matrix[i][j] = min
		}
	}

	return matrix[len(s1)][len(s2)]
}
