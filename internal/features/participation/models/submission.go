package models

// Outcome is the result category of a submission.
type Outcome string

const (
	OutcomeAccepted   Outcome = "accepted"
	OutcomeInProgress Outcome = "in_progress"
	OutcomeInvalid    Outcome = "invalid"
	OutcomeFailed     Outcome = "failed"
)

const (
	MessageAccepted   = "Registration successful"
	MessageInProgress = "Submission already in progress"
	MessageFailed     = "Registration failed, please try again"
)

// SubmitRequest is the input of a participation submission.
type SubmitRequest struct {
	ParticipantID string `json:"participant_id" example:"user@example.com"`
	PrizeID       string `json:"prize_id" example:"prize_42"`
	OfferURL      string `json:"offer_url,omitempty" example:"https://offers.example.com/go"`
}

// SubmitResult is what the caller gets back. Callers clear their input and
// close the modal only when OK is true.
type SubmitResult struct {
	OK          bool    `json:"ok"`
	Outcome     Outcome `json:"outcome"`
	Message     string  `json:"message"`
	Token       string  `json:"token,omitempty"`
	RedirectURL string  `json:"redirect_url,omitempty"`
}

type DeliverRequest struct {
	PayoutAddress string `json:"payout_address,omitempty" example:"EQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqB2N"`
}

type DrawRequest struct {
	Count int `json:"count" binding:"required,min=1" example:"3"`
}

type CanSubmitResponse struct {
	CanSubmit bool `json:"can_submit"`
}

type ParticipationListResponse struct {
	PrizeID        string           `json:"prize_id"`
	Total          int              `json:"total"`
	Participations []*Participation `json:"participations"`
}

type DrawResponse struct {
	PrizeID string   `json:"prize_id"`
	Winners []Winner `json:"winners"`
}

type PostbackResponse struct {
	Token  string `json:"token"`
	Status Status `json:"status"`
}
