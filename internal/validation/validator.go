package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/ggegelya/expensetracker/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator wraps the go-playground validator with the ledger's custom rules
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

var instance *Validator

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a validator with the ledger's custom rules registered
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("account_type", validateAccountType)
	_ = v.RegisterValidation("account_tag", validateAccountTag)
	_ = v.RegisterValidation("category_key", validateCategoryKey)
	_ = v.RegisterValidation("currency_code", validateCurrencyCode)
	_ = v.RegisterValidation("positive_amount", validatePositiveAmount)
	_ = v.RegisterValidation("confidence", validateConfidence)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return models.IsValidTransactionType(fl.Field().String())
}

func validateAccountType(fl validator.FieldLevel) bool {
	return models.IsValidAccountType(fl.Field().String())
}

func validateAccountTag(fl validator.FieldLevel) bool {
	return models.IsValidAccountTag(fl.Field().String())
}

func validateCategoryKey(fl validator.FieldLevel) bool {
	return models.IsValidCategoryKey(fl.Field().String())
}

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

func validateCurrencyCode(fl validator.FieldLevel) bool {
	return currencyPattern.MatchString(fl.Field().String())
}

// validatePositiveAmount accepts decimal strings with a positive value and
// at most two fractional digits
func validatePositiveAmount(fl validator.FieldLevel) bool {
	amount, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	if !amount.IsPositive() {
		return false
	}
	return amount.Exponent() >= -2
}

func validateConfidence(fl validator.FieldLevel) bool {
	confidence := fl.Field().Float()
	return confidence >= 0.0 && confidence <= 1.0
}
