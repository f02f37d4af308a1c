// README: Shared JSON helpers and service error mapping.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"wireconnect/internal/modules/assignment"
	"wireconnect/internal/modules/client"
	"wireconnect/internal/modules/job"
	"wireconnect/internal/modules/kyc"
	"wireconnect/internal/modules/pricing"
	"wireconnect/internal/modules/technician"
)

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, job.ErrBadRequest),
		errors.Is(err, technician.ErrBadRequest),
		errors.Is(err, client.ErrBadRequest),
		errors.Is(err, kyc.ErrBadRequest),
		errors.Is(err, assignment.ErrBadAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, technician.ErrBadCredentials),
		errors.Is(err, client.ErrBadCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, assignment.ErrNotOfferee):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, job.ErrNotFound),
		errors.Is(err, technician.ErrNotFound),
		errors.Is(err, client.ErrNotFound),
		errors.Is(err, kyc.ErrNotFound),
		errors.Is(err, pricing.ErrNoRate):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, job.ErrConflict),
		errors.Is(err, kyc.ErrAlreadyReviewed),
		errors.Is(err, technician.ErrEmailTaken),
		errors.Is(err, client.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type pointView struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type jobView struct {
	ID             string     `json:"id"`
	Category       string     `json:"category"`
	Description    string     `json:"description,omitempty"`
	State          string     `json:"state"`
	City           string     `json:"city,omitempty"`
	Location       *pointView `json:"location,omitempty"`
	PriceAmount    int64      `json:"price_amount"`
	PriceCurrency  string     `json:"price_currency,omitempty"`
	WorkersNeeded  int        `json:"workers_needed"`
	Status         string     `json:"status"`
	AssignedTechID string     `json:"assigned_tech_id,omitempty"`
	AcceptedTechs  []string   `json:"accepted_techs,omitempty"`
	ExpiresAt      string     `json:"expires_at,omitempty"`
	CreatedAt      string     `json:"created_at"`
}

func toJobView(j *job.Job) jobView {
	v := jobView{
		ID:            string(j.ID),
		Category:      j.Category,
		Description:   j.Description,
		State:         j.State,
		City:          j.City,
		PriceAmount:   j.Price.Amount,
		PriceCurrency: j.Price.Currency,
		WorkersNeeded: j.WorkersNeeded,
		Status:        string(j.Status),
		CreatedAt:     j.CreatedAt.UTC().Format(time.RFC3339),
	}
	if j.Location != nil {
		v.Location = &pointView{Lat: j.Location.Lat, Lng: j.Location.Lng}
	}
	if j.AssignedTechID != nil {
		v.AssignedTechID = string(*j.AssignedTechID)
	}
	for _, id := range j.AssignedTechIDs {
		v.AcceptedTechs = append(v.AcceptedTechs, string(id))
	}
	if j.ExpiresAt != nil {
		v.ExpiresAt = j.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return v
}
