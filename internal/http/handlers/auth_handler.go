// README: Registration and login for clients and technicians.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"wireconnect/internal/modules/client"
	"wireconnect/internal/modules/technician"
	"wireconnect/internal/session"
	"wireconnect/internal/types"
)

// tokenIssuer is the slice of session.Store the handler needs.
type tokenIssuer interface {
	Issue(ctx context.Context, userID types.ID, role string) (string, error)
}

type AuthHandler struct {
	clients  *client.Service
	techs    *technician.Service
	sessions tokenIssuer
}

func NewAuthHandler(clients *client.Service, techs *technician.Service, sessions tokenIssuer) *AuthHandler {
	return &AuthHandler{clients: clients, techs: techs, sessions: sessions}
}

type registerClientReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h *AuthHandler) ClientRegister(c *gin.Context) {
	var req registerClientReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	acct, err := h.clients.Register(c.Request.Context(), client.RegisterCommand{
		Name: req.Name, Email: req.Email, Phone: req.Phone, Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	token, err := h.sessions.Issue(c.Request.Context(), acct.ID, session.RoleClient)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"client_id": acct.ID, "token": token})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) ClientLogin(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	acct, err := h.clients.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	token, err := h.sessions.Issue(c.Request.Context(), acct.ID, session.RoleClient)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client_id": acct.ID, "token": token})
}

type registerTechReq struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Password string   `json:"password"`
	State    string   `json:"state"`
	City     string   `json:"city"`
	Skills   []string `json:"skills"`
}

func (h *AuthHandler) TechnicianRegister(c *gin.Context) {
	var req registerTechReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	acct, err := h.techs.Register(c.Request.Context(), technician.RegisterCommand{
		Name: req.Name, Email: req.Email, Phone: req.Phone, Password: req.Password,
		State: req.State, City: req.City, Skills: req.Skills,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	token, err := h.sessions.Issue(c.Request.Context(), acct.ID, session.RoleTechnician)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"technician_id": acct.ID,
		"token":         token,
		"kyc_status":    acct.KYCStatus,
	})
}

func (h *AuthHandler) TechnicianLogin(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	acct, err := h.techs.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	token, err := h.sessions.Issue(c.Request.Context(), acct.ID, session.RoleTechnician)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"technician_id": acct.ID,
		"token":         token,
		"kyc_status":    acct.KYCStatus,
	})
}
