package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupanel/edupanel-api/internal/service"
	appErrors "github.com/edupanel/edupanel-api/pkg/errors"
	"github.com/edupanel/edupanel-api/pkg/response"
)

// GradeHandler wires HTTP endpoints to the grade service.
type GradeHandler struct {
	service *service.GradeService
}

// NewGradeHandler creates a new handler.
func NewGradeHandler(svc *service.GradeService) *GradeHandler {
	return &GradeHandler{service: svc}
}

// Roster godoc
// @Summary Marks roster
// @Description Class roster with current marks in one subject
// @Tags Grades
// @Produce json
// @Param subject_id query string true "Subject ID"
// @Param class query string true "Class name"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) Roster(c *gin.Context) {
	subjectID := c.Query("subject_id")
	className := c.Query("class")
	if subjectID == "" || className == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "subject_id and class are required"))
		return
	}

	rows, err := h.service.Roster(c.Request.Context(), subjectID, className)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, rows, nil)
}

// Save godoc
// @Summary Save marks
// @Description Upsert a batch of marks for one subject and class
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.SaveMarksRequest true "Marks payload"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Save(c *gin.Context) {
	var req service.SaveMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid marks payload"))
		return
	}

	if err := h.service.Save(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
