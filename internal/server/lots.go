package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	lotdomain "github.com/parkscope/parkscope/internal/lot/domain"
)

func (s *Server) ListParkingLots(c *gin.Context) {
	lots, err := s.lotRepo.List(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, lots)
}

func (s *Server) CreateParkingLot(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Capacity int    `json:"capacity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		AbortWithError(c, newValidationError("name", "required", "name is required"))
		return
	}
	if req.Capacity <= 0 {
		AbortWithError(c, newValidationError("capacity", "invalid_capacity", "capacity must be positive"))
		return
	}

	lot := &lotdomain.ParkingLot{
		ID:       s.genID.Generate(),
		Name:     req.Name,
		Capacity: req.Capacity,
	}
	if err := s.lotRepo.Insert(c.Request.Context(), s.db, lot); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lot)
}

func (s *Server) DeleteParkingLot(c *gin.Context) {
	lotID, ok := s.lotIDParam(c)
	if !ok {
		return
	}
	if err := s.lotRepo.Delete(c.Request.Context(), s.db, lotID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
