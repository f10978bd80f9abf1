package tax

import (
	"errors"
	"regexp"
	"strings"
)

var hsnPattern = regexp.MustCompile(`^(\d{4}|\d{6}|\d{8})$`)

var ErrInvalidHSNCode = errors.New("invalid_hsn_code")

// NormalizeHSNCode trims code and checks it is a 4, 6 or 8 digit HSN/SAC code.
// An empty code is allowed and returns nil.
func NormalizeHSNCode(code *string) (*string, error) {
	if code == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*code)
	if value == "" {
		return nil, nil
	}
	if !hsnPattern.MatchString(value) {
		return nil, ErrInvalidHSNCode
	}
	return &value, nil
}
