package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("user@example.com"))
	assert.NoError(t, ValidateEmail("  user+tag@example.co.uk "))

	for _, bad := range []string{"", "   ", "user", "user@", "@example.com", strings.Repeat("a", 250) + "@example.com"} {
		err := ValidateEmail(bad)
		require.Error(t, err, bad)
		assert.Contains(t, err.Error(), "email")
	}
}

func TestValidateExternalID(t *testing.T) {
	assert.NoError(t, ValidateExternalID("ext-123_ABC"))
	assert.NoError(t, ValidateExternalID("tg:42"))

	for _, bad := range []string{"", "has space", "semi;colon", strings.Repeat("x", MaxExternalIDLength+1)} {
		err := ValidateExternalID(bad)
		require.Error(t, err, bad)
		assert.Contains(t, err.Error(), "ID")
	}
}

func TestValidatePrizeID(t *testing.T) {
	assert.NoError(t, ValidatePrizeID("prize_42"))
	assert.Error(t, ValidatePrizeID(""))
	assert.Error(t, ValidatePrizeID("prize/42"))
}

func TestParseOfferURL(t *testing.T) {
	u, err := ParseOfferURL("https://offers.example.com/go?aff=7")
	require.NoError(t, err)
	assert.Equal(t, "offers.example.com", u.Host)

	for _, bad := range []string{"", "not a url", "ftp://offers.example.com/x", "javascript:alert(1)", "/relative/path"} {
		_, err := ParseOfferURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidatePositiveInt(t *testing.T) {
	assert.NoError(t, ValidatePositiveInt(1, "count"))
	assert.EqualError(t, ValidatePositiveInt(0, "count"), "count must be positive")
}
