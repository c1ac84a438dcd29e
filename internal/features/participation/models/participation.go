package models

import (
	"errors"
	"time"
)

var (
	ErrInvalidStatus     = errors.New("invalid participation status")
	ErrInvalidTransition = errors.New("participation status cannot move backwards")
)

// Status is the lifecycle state of a participation. It only moves forward:
// pending -> verified -> delivered.
type Status string

const (
	StatusPending   Status = "pending"   // created by a submission
	StatusVerified  Status = "verified"  // offer completion confirmed by the network
	StatusDelivered Status = "delivered" // prize handed out by an administrator
)

func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 1
	case StatusVerified:
		return 2
	case StatusDelivered:
		return 3
	default:
		return 0
	}
}

func (s Status) Valid() bool {
	return s.rank() > 0
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// CanTransition reports whether a record may move from one status to another.
// Staying on the same status is allowed so callbacks can be replayed.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	return to.rank() >= from.rank()
}

// Mode selects what kind of identifier participants submit.
type Mode string

const (
	ModeEmail      Mode = "email"
	ModeExternalID Mode = "external_id"
	ModeTelegram   Mode = "telegram"
)

// Participation is one attempt by one participant to qualify for one prize.
// The token doubles as the storage key.
type Participation struct {
	Token         string     `json:"token"`
	ParticipantID string     `json:"participant_id"`
	PrizeID       string     `json:"prize_id"`
	Status        Status     `json:"status"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	Retried       bool       `json:"retried,omitempty"`
	RetryTime     *time.Time `json:"retry_time,omitempty"`
	OfferID       string     `json:"offer_id,omitempty"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
	PayoutAddress string     `json:"payout_address,omitempty"`
}

// SubmissionKey builds the in-flight key for a participant/prize pair.
func SubmissionKey(participantID, prizeID string) string {
	return participantID + "_" + prizeID
}

// Winner is one entry picked by a draw.
type Winner struct {
	Place         int    `json:"place"`
	Token         string `json:"token"`
	ParticipantID string `json:"participant_id"`
}
