// README: Booking lifecycle: create, view, cancel, technician respond/seen.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wireconnect/internal/http/middleware"
	"wireconnect/internal/modules/assignment"
	"wireconnect/internal/modules/job"
	"wireconnect/internal/session"
	"wireconnect/internal/types"
)

type BookingHandler struct {
	jobs   *job.Service
	engine *assignment.Engine
}

func NewBookingHandler(jobs *job.Service, engine *assignment.Engine) *BookingHandler {
	return &BookingHandler{jobs: jobs, engine: engine}
}

type createBookingReq struct {
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	State         string   `json:"state"`
	City          string   `json:"city"`
	Address       string   `json:"address"`
	Lat           *float64 `json:"lat"`
	Lng           *float64 `json:"lng"`
	PriceAmount   int64    `json:"price_amount"`
	PriceCurrency string   `json:"price_currency"`
	WorkersNeeded int      `json:"workers_needed"`
}

// Create books a job and runs the first assignment round before answering, so
// the client immediately sees either an offered technician or
// pending_assignment ("no technician available yet").
func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	var loc *types.Point
	if req.Lat != nil && req.Lng != nil {
		loc = &types.Point{Lat: *req.Lat, Lng: *req.Lng}
	}
	j, err := h.jobs.Create(c.Request.Context(), job.CreateCommand{
		ClientID:      middleware.CallerID(c),
		Category:      req.Category,
		Description:   req.Description,
		State:         req.State,
		City:          req.City,
		Address:       req.Address,
		Location:      loc,
		Price:         types.Money{Amount: req.PriceAmount, Currency: req.PriceCurrency},
		WorkersNeeded: req.WorkersNeeded,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if _, err := h.engine.Assign(c.Request.Context(), j.ID); err != nil {
		respondError(c, err)
		return
	}
	fresh, err := h.jobs.Get(c.Request.Context(), j.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toJobView(fresh))
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	jobs, err := h.jobs.ListByClient(c.Request.Context(), middleware.CallerID(c), 50)
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]jobView, len(jobs))
	for i := range jobs {
		views[i] = toJobView(&jobs[i])
	}
	c.JSON(http.StatusOK, gin.H{"jobs": views})
}

func (h *BookingHandler) Get(c *gin.Context) {
	j, err := h.jobs.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.mayView(c, j) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, toJobView(j))
}

// mayView allows the booking client, any technician the job was offered to,
// and admins.
func (h *BookingHandler) mayView(c *gin.Context, j *job.Job) bool {
	caller := middleware.CallerID(c)
	switch middleware.CallerRole(c) {
	case session.RoleAdmin:
		return true
	case session.RoleClient:
		return j.ClientID == caller
	case session.RoleTechnician:
		return j.WasNotified(caller)
	default:
		return false
	}
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id := types.ID(c.Param("id"))
	caller := middleware.CallerID(c)
	j, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if j.ClientID != caller {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your booking"})
		return
	}
	if err := h.jobs.Cancel(c.Request.Context(), id, caller); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": job.StatusCancelled})
}

type respondReq struct {
	Action string `json:"action"`
}

// Respond handles the technician's accept or decline for an offer.
func (h *BookingHandler) Respond(c *gin.Context) {
	var req respondReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	updated, err := h.engine.Respond(c.Request.Context(),
		types.ID(c.Param("id")), middleware.CallerID(c), req.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toJobView(updated))
}

// Seen acknowledges that the offer reached the technician's device.
func (h *BookingHandler) Seen(c *gin.Context) {
	err := h.jobs.MarkSeen(c.Request.Context(), types.ID(c.Param("id")), middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seen": true})
}
