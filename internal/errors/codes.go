package errors

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationInvalidDate   ErrorCode = "VALIDATION_005"
)

// Account error codes (ACCOUNT_*)
const (
	AccountNotFound     ErrorCode = "ACCOUNT_001"
	AccountInUse        ErrorCode = "ACCOUNT_002"
	AccountDuplicateTag ErrorCode = "ACCOUNT_003"
	AccountInvalidType  ErrorCode = "ACCOUNT_004"
)

// Category error codes (CATEGORY_*)
const (
	CategoryNotFound        ErrorCode = "CATEGORY_001"
	CategoryInUse           ErrorCode = "CATEGORY_002"
	CategorySystemProtected ErrorCode = "CATEGORY_003"
	CategoryDuplicateKey    ErrorCode = "CATEGORY_004"
	CategoryKeyImmutable    ErrorCode = "CATEGORY_005"
)

// Transaction error codes (TRANSACTION_*)
const (
	TransactionNotFound          ErrorCode = "TRANSACTION_001"
	TransactionInvalidAmount     ErrorCode = "TRANSACTION_002"
	TransactionInvalidPairing    ErrorCode = "TRANSACTION_003"
	TransactionSplitMismatch     ErrorCode = "TRANSACTION_004"
	TransactionSplitChildLocked  ErrorCode = "TRANSACTION_005"
	TransactionDuplicateBankTxn  ErrorCode = "TRANSACTION_006"
	TransactionSplitParentLocked ErrorCode = "TRANSACTION_007"
	TransactionTransferLegLocked ErrorCode = "TRANSACTION_008"
)

// Pending transaction error codes (PENDING_*)
const (
	PendingNotFound         ErrorCode = "PENDING_001"
	PendingAlreadyProcessed ErrorCode = "PENDING_002"
	PendingInvalidStatus    ErrorCode = "PENDING_003"
)

// Sync/device authentication error codes (SYNC_*)
const (
	SyncInvalidPairingSecret ErrorCode = "SYNC_001"
	SyncMissingToken         ErrorCode = "SYNC_002"
	SyncExpiredToken         ErrorCode = "SYNC_003"
	SyncInvalidTokenFormat   ErrorCode = "SYNC_004"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_004"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Validation errors
	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",
	ValidationOutOfRange:    "Field value is out of allowed range",
	ValidationInvalidDate:   "Invalid date format or range",

	// Account errors
	AccountNotFound:     "Account not found",
	AccountInUse:        "Account still has transactions referencing it",
	AccountDuplicateTag: "An account with this tag already exists",
	AccountInvalidType:  "Invalid account type",

	// Category errors
	CategoryNotFound:        "Category not found",
	CategoryInUse:           "Category still has transactions referencing it",
	CategorySystemProtected: "System categories cannot be deleted",
	CategoryDuplicateKey:    "A category with this key already exists",
	CategoryKeyImmutable:    "Category key cannot be changed once created",

	// Transaction errors
	TransactionNotFound:          "Transaction not found",
	TransactionInvalidAmount:     "Invalid transaction amount",
	TransactionInvalidPairing:    "Transaction type requires the matching account reference",
	TransactionSplitMismatch:     "Split allocations must sum exactly to the parent amount",
	TransactionSplitChildLocked:  "Split children cannot be modified independently of their parent",
	TransactionDuplicateBankTxn:  "A transaction with this bank transaction id already exists",
	TransactionSplitParentLocked: "A split parent's amount is defined by its allocations",
	TransactionTransferLegLocked: "Transfer legs can only change descriptive fields, recreate the transfer to move money differently",

	// Pending errors
	PendingNotFound:         "Pending transaction not found",
	PendingAlreadyProcessed: "Pending transaction was already processed or dismissed",
	PendingInvalidStatus:    "Invalid pending transaction status",

	// Sync errors
	SyncInvalidPairingSecret: "Invalid pairing secret",
	SyncMissingToken:         "Device token is required",
	SyncExpiredToken:         "Device token has expired",
	SyncInvalidTokenFormat:   "Invalid device token",

	// System errors
	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
