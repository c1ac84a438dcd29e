package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MaxEmailLength      = 254
	MaxExternalIDLength = 128
	MaxPrizeIDLength    = 128
	MaxOfferURLLength   = 2048
)

// Opaque identifiers end up in storage keys and query strings.
var identifierRegex = regexp.MustCompile(`^[A-Za-z0-9._:@\-]+$`)

var validate = validator.New()

// ValidateEmail checks an email address used as participant identifier.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email cannot exceed %d characters", MaxEmailLength)
	}
	if err := validate.Var(email, "email"); err != nil {
		return fmt.Errorf("email is not valid")
	}
	return nil
}

// ValidateExternalID checks an opaque external participant ID.
func ValidateExternalID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}
	if len(id) > MaxExternalIDLength {
		return fmt.Errorf("ID cannot exceed %d characters", MaxExternalIDLength)
	}
	if !identifierRegex.MatchString(id) {
		return fmt.Errorf("ID contains unsupported characters")
	}
	return nil
}

func ValidatePrizeID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("prize ID cannot be empty")
	}
	if len(id) > MaxPrizeIDLength {
		return fmt.Errorf("prize ID cannot exceed %d characters", MaxPrizeIDLength)
	}
	if !identifierRegex.MatchString(id) {
		return fmt.Errorf("prize ID contains unsupported characters")
	}
	return nil
}

// ParseOfferURL parses an external offer URL. Only absolute http(s) URLs
// are accepted.
func ParseOfferURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("offer URL cannot be empty")
	}
	if len(raw) > MaxOfferURLLength {
		return nil, fmt.Errorf("offer URL cannot exceed %d characters", MaxOfferURLLength)
	}
	if err := validate.Var(raw, "url"); err != nil {
		return nil, fmt.Errorf("offer URL is not valid")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("offer URL is not valid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("offer URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("offer URL must have a host")
	}
	return u, nil
}

// ValidatePositiveInt checks that a numeric field is positive.
func ValidatePositiveInt(value int64, fieldName string) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive", fieldName)
	}
	return nil
}
