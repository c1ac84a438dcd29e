package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusPending, true},
		{StatusPending, StatusVerified, true},
		{StatusPending, StatusDelivered, true},
		{StatusVerified, StatusDelivered, true},
		{StatusVerified, StatusPending, false},
		{StatusDelivered, StatusVerified, false},
		{StatusDelivered, StatusPending, false},
		{Status("bogus"), StatusVerified, false},
		{StatusPending, Status(""), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("verified")
	assert.NoError(t, err)
	assert.Equal(t, StatusVerified, s)

	_, err = ParseStatus("won")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSubmissionKey(t *testing.T) {
	assert.Equal(t, "user@example.com_prize_42", SubmissionKey("user@example.com", "prize_42"))
}
