// README: Client account model.
package client

import (
	"time"

	"wireconnect/internal/types"
)

type Client struct {
	ID           types.ID
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}
