package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupanel/edupanel-api/internal/models"
	"github.com/edupanel/edupanel-api/internal/service"
	appErrors "github.com/edupanel/edupanel-api/pkg/errors"
	"github.com/edupanel/edupanel-api/pkg/response"
)

// LiveRequestHandler wires HTTP endpoints to the live request service.
type LiveRequestHandler struct {
	service *service.LiveRequestService
}

// NewLiveRequestHandler creates a new handler.
func NewLiveRequestHandler(svc *service.LiveRequestService) *LiveRequestHandler {
	return &LiveRequestHandler{service: svc}
}

// List godoc
// @Summary List live requests
// @Description Active sessions; teachers see their own requests
// @Tags LiveRequests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /live-requests [get]
func (h *LiveRequestHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if claims.Role == models.RoleTeacher {
		requests, err := h.service.ListByTeacher(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, requests, nil)
		return
	}

	requests, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Create godoc
// @Summary Schedule live class
// @Description Create a live class session in PENDING state
// @Tags LiveRequests
// @Accept json
// @Produce json
// @Param payload body service.CreateLiveRequestRequest true "Live request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /live-requests [post]
func (h *LiveRequestHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateLiveRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid live request payload"))
		return
	}

	request, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, request)
}

// UpdateStatus godoc
// @Summary Update live request status
// @Description Transition a session between PENDING, STARTED, ENDED and CANCELLED
// @Tags LiveRequests
// @Accept json
// @Produce json
// @Param id path string true "Live request ID"
// @Param payload body service.UpdateLiveRequestRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /live-requests/{id} [patch]
func (h *LiveRequestHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateLiveRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	request, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, request, nil)
}
