// README: Admin job listings.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wireconnect/internal/modules/job"
)

type AdminHandler struct {
	jobs *job.Service
}

func NewAdminHandler(jobs *job.Service) *AdminHandler {
	return &AdminHandler{jobs: jobs}
}

func (h *AdminHandler) ListJobs(c *gin.Context) {
	status := job.Status(c.Query("status"))
	if status == "" {
		status = job.StatusPendingAssignment
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	jobs, err := h.jobs.ListByStatus(c.Request.Context(), status, limit)
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
