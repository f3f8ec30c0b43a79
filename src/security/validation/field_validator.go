// backend/src/security/validation/field_validator.go
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/username/walletpulse/backend/src/logger"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	MaxTitleLength          = 120
	MaxInstrumentCodeLength = 20
	DateLayout              = "2006-01-02"
)

// maxAmount keeps amounts inside a range every downstream computation handles comfortably.
var maxAmount = decimal.New(1, 15)

// --- String Validators ---

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateStringRegex checks if a string matches a given regex pattern.
func ValidateStringRegex(s string, pattern *regexp.Regexp, fieldName, formatDescription string) error {
	if !pattern.MatchString(s) {
		return fmt.Errorf("%w: %s ('%s') is not in the expected format (%s)", ErrValidationFailed, fieldName, s, formatDescription)
	}
	return nil
}

// ValidateTitle checks a cleaned title for presence and length.
func ValidateTitle(s string) error {
	if err := ValidateStringNotEmpty(s, "title"); err != nil {
		return err
	}
	return ValidateStringMaxLength(s, MaxTitleLength, "title")
}

// --- Numeric Validators ---

// ValidateAmount parses a decimal amount that must be positive and below the supported maximum.
func ValidateAmount(s, fieldName string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, fieldName); err != nil {
		return decimal.Zero, err
	}
	val, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s ('%s') is not a valid number", ErrValidationFailed, fieldName, s)
	}
	if !val.IsPositive() {
		logger.L.Warn("Non-positive amount rejected", "field", fieldName, "value", trimmed)
		return decimal.Zero, fmt.Errorf("%w: %s must be greater than zero", ErrValidationFailed, fieldName)
	}
	if val.GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, fmt.Errorf("%w: %s is too large", ErrValidationFailed, fieldName)
	}
	return val, nil
}

// ValidateIntRange checks that an integer lies within [minVal, maxVal].
func ValidateIntRange(val int, fieldName string, minVal, maxVal int) error {
	if val < minVal || val > maxVal {
		logger.L.Warn("Integer value out of range", "field", fieldName, "value", val, "min", minVal, "max", maxVal)
		return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrValidationFailed, fieldName, minVal, maxVal, val)
	}
	return nil
}

// --- Date Validator ---

// ValidateDateString checks if a string is a valid date in "YYYY-MM-DD" format.
func ValidateDateString(s, fieldName string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, fieldName); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s ('%s') is not a valid date (expected YYYY-MM-DD)", ErrValidationFailed, fieldName, s)
	}
	return t, nil
}

// --- Specific Format Validators ---

// Instrument codes are currency codes (USD), commodity codes (XAU) or market symbols (THYAO.IS, BTC-USD, ^GSPC).
var instrumentCodeRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.=^_-]*$`)

// NormalizeInstrumentCode upper-cases and validates an instrument code. Empty means base currency.
func NormalizeInstrumentCode(s string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if code == "" {
		return "", nil
	}
	if err := ValidateStringMaxLength(code, MaxInstrumentCodeLength, "instrument code"); err != nil {
		return "", err
	}
	if err := ValidateStringRegex(code, instrumentCodeRegex, "instrument code", "letters, digits and . = ^ _ -"); err != nil {
		return "", err
	}
	return code, nil
}

// ValidateOptionalID accepts a missing id or a positive one.
func ValidateOptionalID(id *int64, fieldName string) error {
	if id != nil && *id <= 0 {
		return fmt.Errorf("%w: %s must be a positive id", ErrValidationFailed, fieldName)
	}
	return nil
}
