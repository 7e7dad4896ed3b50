package domain

import "errors"

// Validation errors. The transport layer maps every error in this block to 400.
var (
	ErrEmptyName              = errors.New("promotion name cannot be empty")
	ErrNameTooLong            = errors.New("promotion name cannot exceed 200 characters")
	ErrInvalidPromotionID     = errors.New("promotion id is not a valid UUID")
	ErrInvalidDiscountKind    = errors.New("discount kind must be percentage or fixed_amount")
	ErrInvalidPercentage      = errors.New("percentage discount must be greater than 0 and at most 100")
	ErrInvalidDiscountValue   = errors.New("fixed discount amount must be greater than 0")
	ErrInvalidScopeKind       = errors.New("scope kind must be global, category, brand, skus or mixed")
	ErrEmptyScope             = errors.New("non-global scope needs at least one category, brand or sku")
	ErrScopeListMismatch      = errors.New("scope lists do not match the scope kind")
	ErrInvalidPromotionWindow = errors.New("promotion end date must be after start date")
	ErrInvalidDuration        = errors.New("promotion must last between 1 and 365 days")
	ErrStartInPast            = errors.New("promotion cannot start before today")
	ErrInvalidEventType       = errors.New("event type must be created, updated, deactivated or deleted")
)

// Lookup and conflict errors.
var (
	ErrPromotionNotFound      = errors.New("promotion not found")
	ErrProductNotFound        = errors.New("product not found")
	ErrDuplicateName          = errors.New("a promotion with this name already exists")
	ErrDeletionBlocked        = errors.New("promotion cannot be deleted while orders are pending")
	ErrConcurrentModification = errors.New("promotion was modified concurrently")
)

var validationErrors = []error{
	ErrEmptyName, ErrNameTooLong, ErrInvalidPromotionID, ErrInvalidDiscountKind,
	ErrInvalidPercentage, ErrInvalidDiscountValue, ErrInvalidScopeKind, ErrEmptyScope,
	ErrScopeListMismatch, ErrInvalidPromotionWindow, ErrInvalidDuration, ErrStartInPast,
	ErrInvalidEventType,
}

// IsValidationError reports whether err wraps one of the validation errors.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
