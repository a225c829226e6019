package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupanel/edupanel-api/internal/service"
	"github.com/edupanel/edupanel-api/pkg/response"
)

// ReportHandler wires HTTP endpoints to the report service.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// ReportCard godoc
// @Summary Download report card
// @Description Render a student's marks and attendance as PDF or CSV
// @Tags Reports
// @Produce application/pdf
// @Produce text/csv
// @Param studentId path string true "Student ID"
// @Param format query string false "pdf or csv (default pdf)"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/report-card/{studentId} [get]
func (h *ReportHandler) ReportCard(c *gin.Context) {
	format := service.ReportFormat(c.Query("format"))

	file, err := h.service.ReportCard(c.Request.Context(), c.Param("studentId"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
