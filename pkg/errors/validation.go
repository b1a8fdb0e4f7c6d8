package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// ValidateUnitInterval checks that v lies in [0, 1). NaN is rejected.
func ValidateUnitInterval(name string, v float64) error {
	if !(v >= 0 && v < 1) {
		return New(ErrCodeInvalidConfig, "%s must be in [0, 1): got %v", name, v)
	}
	return nil
}

// ValidateNonNegative checks that v is a finite number >= 0.
func ValidateNonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return New(ErrCodeInvalidConfig, "%s must not be negative: got %v", name, v)
	}
	return nil
}

// ValidatePositive checks that v is at least 1.
func ValidatePositive(name string, v int) error {
	if v < 1 {
		return New(ErrCodeInvalidConfig, "%s must be positive: got %d", name, v)
	}
	return nil
}

// planIDRegex matches canonical lowercase UUIDs.
var planIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidatePlanID validates a plan identifier. IDs end up in file names and
// cache keys, so only canonical UUIDs are accepted.
func ValidatePlanID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "plan id cannot be empty")
	}
	if !planIDRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid plan id: %q", id)
	}
	return nil
}

// ValidateUploadName validates the filename of an uploaded image.
// It must be a simple basename without path components.
func ValidateUploadName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "upload filename cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "upload filename too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "upload filename contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "upload filename cannot contain path separators")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidInput, "upload filename cannot be a hidden file")
	}

	return nil
}
