package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxImportBytes = 10 << 20 // 10 MiB upload cap

func (s *Server) ImportParkingHistory(c *gin.Context) {
	file, ok := s.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	imported, err := s.importSvc.ImportHistory(c.Request.Context(), file)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "imported": imported})
}

func (s *Server) ImportParkingTransactions(c *gin.Context) {
	file, ok := s.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	imported, err := s.importSvc.ImportTransactions(c.Request.Context(), file)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "imported": imported})
}

func (s *Server) ParkingHistoryTemplate(c *gin.Context) {
	writeTemplateHeaders(c, "parking_history_template.xlsx")
	if err := s.importSvc.HistoryTemplate(c.Writer); err != nil {
		AbortWithError(c, err)
	}
}

func (s *Server) ParkingTransactionsTemplate(c *gin.Context) {
	writeTemplateHeaders(c, "parking_transactions_template.xlsx")
	if err := s.importSvc.TransactionsTemplate(c.Writer); err != nil {
		AbortWithError(c, err)
	}
}

func (s *Server) openUpload(c *gin.Context) (interface {
	Read([]byte) (int, error)
	Close() error
}, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "required", "multipart field 'file' is required"))
		return nil, false
	}
	if header.Size > maxImportBytes {
		AbortWithError(c, newValidationError("file", "too_large", "upload exceeds the size limit"))
		return nil, false
	}
	file, err := header.Open()
	if err != nil {
		AbortWithError(c, err)
		return nil, false
	}
	return file, true
}

func writeTemplateHeaders(c *gin.Context, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
}
