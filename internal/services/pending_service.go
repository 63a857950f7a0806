package services

import (
	"context"
	"log/slog"

	"github.com/ggegelya/expensetracker/internal/models"
	"github.com/ggegelya/expensetracker/internal/repositories"

	"github.com/google/uuid"
)

// pendingService drives the bank import lifecycle. Promotion and dismissal
// delegate to the ledger write path so balance effects never bypass it, this
// layer owns suggestion wiring and the learning hook.
type pendingService struct {
	pendings    repositories.PendingTransactionRepositoryInterface
	suggestions SuggestionServiceInterface
	ledger      LedgerServiceInterface
	metrics     MetricsRecorderInterface
	logger      *slog.Logger
}

// NewPendingService creates the pending transaction service
func NewPendingService(
	pendings repositories.PendingTransactionRepositoryInterface,
	suggestions SuggestionServiceInterface,
	ledger LedgerServiceInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) PendingServiceInterface {
	return &pendingService{
		pendings:    pendings,
		suggestions: suggestions,
		ledger:      ledger,
		metrics:     metrics,
		logger:      logger,
	}
}

// ListPending lists unresolved imports, optionally scoped to one account
func (s *pendingService) ListPending(ctx context.Context, accountID *uuid.UUID) ([]models.PendingTransaction, error) {
	pendings, err := s.pendings.GetPending(accountID)
	if err != nil {
		return nil, err
	}
	s.metrics.SetPendingDepth(float64(len(pendings)))
	return pendings, nil
}

// ImportPending records an incoming bank transaction with a category
// suggestion attached. Duplicate bank transaction ids are rejected.
func (s *pendingService) ImportPending(ctx context.Context, pending *models.PendingTransaction) (*models.PendingTransaction, error) {
	suggestion, err := s.suggestions.SuggestCategory(ctx, pending.Description, pending.MerchantName)
	if err != nil {
		return nil, err
	}
	pending.SuggestedCategoryID = suggestion.CategoryID
	pending.Confidence = suggestion.Confidence
	pending.Status = models.PendingStatusPending

	if err := pending.Validate(); err != nil {
		return nil, err
	}
	if err := s.pendings.Create(pending); err != nil {
		return nil, err
	}

	s.logger.Info("pending transaction imported",
		"pending_id", pending.ID,
		"bank_transaction_id", pending.BankTransactionID,
		"confidence_band", pending.ConfidenceBand())
	return pending, nil
}

// Process promotes a pending import into a confirmed transaction. When the
// user overrides a low or medium confidence suggestion, the correction is
// learned so the same merchant resolves with high confidence next time.
func (s *pendingService) Process(ctx context.Context, id uuid.UUID, categoryID *uuid.UUID, overrideDescription *string) (*models.Transaction, error) {
	pending, err := s.pendings.GetByID(id)
	if err != nil {
		return nil, err
	}

	txn, err := s.ledger.PromotePending(ctx, id, categoryID, overrideDescription)
	if err != nil {
		return nil, err
	}

	if categoryID != nil && s.isCorrection(pending, *categoryID) {
		if err := s.suggestions.LearnFromCorrection(ctx, pending.Description, pending.MerchantName, *categoryID); err != nil {
			// The promotion already committed, learning is best effort
			s.logger.Warn("failed to learn from category correction",
				"pending_id", id,
				"error", err)
		}
	}

	return txn, nil
}

// Dismiss resolves a pending import without posting anything
func (s *pendingService) Dismiss(ctx context.Context, id uuid.UUID) error {
	return s.ledger.DismissPending(ctx, id)
}

// isCorrection reports whether the chosen category overrides a low or medium
// confidence suggestion. High confidence matches confirm rather than correct.
func (s *pendingService) isCorrection(pending *models.PendingTransaction, chosen uuid.UUID) bool {
	if pending.ConfidenceBand() == "high" {
		return false
	}
	return pending.SuggestedCategoryID == nil || *pending.SuggestedCategoryID != chosen
}
