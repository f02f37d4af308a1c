// README: KYC document model and review state machine.
package kyc

import (
	"time"

	"wireconnect/internal/types"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Review is one-shot: an approved or rejected document never moves again; a
// technician with a rejected document submits a new one.
var allowedTransitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {},
	StatusRejected: {},
}

func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Document is a submitted identity proof. FileRef is an opaque reference to
// the uploaded file (object storage key); this service never reads the bytes.
type Document struct {
	ID           types.ID
	TechnicianID types.ID
	Kind         string // "national_id", "passport", "trade_license"
	FileRef      string
	Status       Status
	ReviewNote   string
	SubmittedAt  time.Time
	ReviewedAt   *time.Time
}
