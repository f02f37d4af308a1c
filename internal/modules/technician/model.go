// README: Technician account and directory model.
package technician

import (
	"time"

	"wireconnect/internal/types"
)

// KYC verification states mirrored onto the account. The kyc module owns the
// review flow; this field is the denormalized outcome.
const (
	KYCUnverified = "unverified"
	KYCPending    = "pending"
	KYCApproved   = "approved"
	KYCRejected   = "rejected"
)

type Technician struct {
	ID           types.ID
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	State        string
	City         string
	Skills       []string
	KYCStatus    string
	CreatedAt    time.Time
}
