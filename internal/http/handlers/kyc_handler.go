// README: KYC submission for technicians and review endpoints for admins.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wireconnect/internal/http/middleware"
	"wireconnect/internal/modules/kyc"
	"wireconnect/internal/types"
)

type KYCHandler struct {
	kyc *kyc.Service
}

func NewKYCHandler(svc *kyc.Service) *KYCHandler {
	return &KYCHandler{kyc: svc}
}

type submitKYCReq struct {
	Kind    string `json:"kind"`
	FileRef string `json:"file_ref"`
}

func (h *KYCHandler) Submit(c *gin.Context) {
	var req submitKYCReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	d, err := h.kyc.Submit(c.Request.Context(), middleware.CallerID(c), req.Kind, req.FileRef)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"document_id": d.ID, "status": d.Status})
}

func (h *KYCHandler) MyDocuments(c *gin.Context) {
	docs, err := h.kyc.ListByTechnician(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (h *KYCHandler) Pending(c *gin.Context) {
	docs, err := h.kyc.ListPending(c.Request.Context(), 50)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

type reviewReq struct {
	Verdict string `json:"verdict"`
	Note    string `json:"note"`
}

func (h *KYCHandler) Review(c *gin.Context) {
	var req reviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	d, err := h.kyc.Review(c.Request.Context(), types.ID(c.Param("id")), kyc.Status(req.Verdict), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document_id": d.ID, "status": d.Status})
}
