// README: HTTP router registration.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"wireconnect/internal/http/handlers"
	"wireconnect/internal/http/middleware"
	"wireconnect/internal/modules/assignment"
	"wireconnect/internal/modules/client"
	"wireconnect/internal/modules/job"
	"wireconnect/internal/modules/kyc"
	"wireconnect/internal/modules/matching"
	"wireconnect/internal/modules/technician"
	"wireconnect/internal/session"
	"wireconnect/internal/types"
)

// SessionStore issues and verifies bearer tokens; *session.Store in
// production, a stub in handler tests.
type SessionStore interface {
	session.Verifier
	Issue(ctx context.Context, userID types.ID, role string) (string, error)
}

type RouterDeps struct {
	Jobs     *job.Service
	Engine   *assignment.Engine
	Presence *matching.Presence
	Clients  *client.Service
	Techs    *technician.Service
	KYC      *kyc.Service
	Sessions SessionStore
	Logger   *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.CORS(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	authHandler := handlers.NewAuthHandler(deps.Clients, deps.Techs, deps.Sessions)
	bookingHandler := handlers.NewBookingHandler(deps.Jobs, deps.Engine)
	availabilityHandler := handlers.NewAvailabilityHandler(deps.Presence)
	kycHandler := handlers.NewKYCHandler(deps.KYC)
	adminHandler := handlers.NewAdminHandler(deps.Jobs)

	v1 := r.Group("/api/v1")
	v1.POST("/clients/register", authHandler.ClientRegister)
	v1.POST("/clients/login", authHandler.ClientLogin)
	v1.POST("/technicians/register", authHandler.TechnicianRegister)
	v1.POST("/technicians/login", authHandler.TechnicianLogin)

	authed := v1.Group("", middleware.Auth(deps.Sessions))
	authed.GET("/jobs/:id", bookingHandler.Get)

	clients := authed.Group("", middleware.RequireRole(session.RoleClient))
	clients.POST("/bookings", bookingHandler.Create)
	clients.GET("/bookings", bookingHandler.ListMine)
	clients.POST("/jobs/:id/cancel", bookingHandler.Cancel)

	techs := authed.Group("", middleware.RequireRole(session.RoleTechnician))
	techs.POST("/jobs/:id/respond", bookingHandler.Respond)
	techs.POST("/jobs/:id/seen", bookingHandler.Seen)
	techs.POST("/technicians/availability", availabilityHandler.Set)
	techs.PUT("/technicians/position", availabilityHandler.UpdatePosition)
	techs.POST("/technicians/kyc", kycHandler.Submit)
	techs.GET("/technicians/kyc", kycHandler.MyDocuments)

	admin := authed.Group("/admin", middleware.RequireRole(session.RoleAdmin))
	admin.GET("/kyc/pending", kycHandler.Pending)
	admin.POST("/kyc/:id/review", kycHandler.Review)
	admin.GET("/jobs", adminHandler.ListJobs)

	return r
}
