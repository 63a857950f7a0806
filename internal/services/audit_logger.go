package services

import (
	"log/slog"

	"github.com/ggegelya/expensetracker/internal/models"

	"github.com/google/uuid"
)

// AuditLogger emits structured records for every committed ledger mutation.
// Records go to the process log stream, aggregation happens downstream.
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger.With("component", "ledger_audit")}
}

func (a *AuditLogger) TransactionCreated(txn *models.Transaction) {
	a.logger.Info("transaction created",
		"transaction_id", txn.ID,
		"type", txn.TransactionType,
		"amount", txn.Amount.String(),
		"reconciled", txn.IsReconciled)
}

func (a *AuditLogger) TransactionUpdated(txn *models.Transaction) {
	a.logger.Info("transaction updated",
		"transaction_id", txn.ID,
		"type", txn.TransactionType,
		"amount", txn.Amount.String())
}

func (a *AuditLogger) TransactionDeleted(id uuid.UUID, childCount int) {
	a.logger.Info("transaction deleted",
		"transaction_id", id,
		"child_count", childCount)
}

func (a *AuditLogger) TransactionSplit(parentID uuid.UUID, allocationCount int) {
	a.logger.Info("transaction split",
		"transaction_id", parentID,
		"allocations", allocationCount)
}

func (a *AuditLogger) TransferCreated(groupID uuid.UUID, fromAccountID, toAccountID uuid.UUID, amount string) {
	a.logger.Info("transfer created",
		"transfer_group_id", groupID,
		"from_account_id", fromAccountID,
		"to_account_id", toAccountID,
		"amount", amount)
}

func (a *AuditLogger) PendingResolved(pendingID uuid.UUID, outcome string, transactionID *uuid.UUID) {
	attrs := []any{
		"pending_id", pendingID,
		"outcome", outcome,
	}
	if transactionID != nil {
		attrs = append(attrs, "transaction_id", *transactionID)
	}
	a.logger.Info("pending transaction resolved", attrs...)
}

func (a *AuditLogger) BalancesRebuilt(driftCount int) {
	a.logger.Info("account balances rebuilt", "accounts_with_drift", driftCount)
}
