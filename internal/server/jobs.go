package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RunOccupancyJob triggers an aggregation run outside the daily schedule.
// The run itself is idempotent; concurrent triggers are the caller's problem,
// matching the job's no-self-exclusion contract.
func (s *Server) RunOccupancyJob(c *gin.Context) {
	if err := s.aggWorker.RunOnce(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
