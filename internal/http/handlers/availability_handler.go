// README: Technician availability and position updates.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wireconnect/internal/http/middleware"
	"wireconnect/internal/modules/matching"
	"wireconnect/internal/types"
)

type AvailabilityHandler struct {
	presence *matching.Presence
}

func NewAvailabilityHandler(presence *matching.Presence) *AvailabilityHandler {
	return &AvailabilityHandler{presence: presence}
}

type availabilityReq struct {
	Online bool     `json:"online"`
	State  string   `json:"state"`
	Lat    *float64 `json:"lat"`
	Lng    *float64 `json:"lng"`
}

func (h *AvailabilityHandler) Set(c *gin.Context) {
	var req availabilityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.State == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state required"})
		return
	}
	techID := middleware.CallerID(c)

	var err error
	if req.Online {
		var pos *types.Point
		if req.Lat != nil && req.Lng != nil {
			pos = &types.Point{Lat: *req.Lat, Lng: *req.Lng}
		}
		err = h.presence.SetOnline(c.Request.Context(), techID, req.State, pos)
	} else {
		err = h.presence.SetOffline(c.Request.Context(), techID, req.State)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"online": req.Online})
}

type positionReq struct {
	State string  `json:"state"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

func (h *AvailabilityHandler) UpdatePosition(c *gin.Context) {
	var req positionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.State == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state required"})
		return
	}
	err := h.presence.UpdatePosition(c.Request.Context(), middleware.CallerID(c),
		req.State, types.Point{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}
