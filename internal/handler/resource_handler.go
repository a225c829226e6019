package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupanel/edupanel-api/internal/models"
	"github.com/edupanel/edupanel-api/internal/service"
	appErrors "github.com/edupanel/edupanel-api/pkg/errors"
	"github.com/edupanel/edupanel-api/pkg/response"
)

// ResourceHandler wires HTTP endpoints to the resource service.
type ResourceHandler struct {
	service *service.ResourceService
}

// NewResourceHandler creates a new handler.
func NewResourceHandler(svc *service.ResourceService) *ResourceHandler {
	return &ResourceHandler{service: svc}
}

// List godoc
// @Summary List resources
// @Description Study materials for a class, or the caller's own when a teacher
// @Tags Resources
// @Produce json
// @Param class query string false "Class name"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /resources [get]
func (h *ResourceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if className := c.Query("class"); className != "" {
		resources, err := h.service.ListByClass(ctx, className)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, resources, nil)
		return
	}

	claims := claimsFromContext(c)
	if claims != nil && claims.Role == models.RoleTeacher {
		resources, err := h.service.ListByTeacher(ctx, claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, resources, nil)
		return
	}

	response.Error(c, appErrors.Clone(appErrors.ErrValidation, "class is required"))
}

// Create godoc
// @Summary Share resource
// @Description Share a study file with a class
// @Tags Resources
// @Accept json
// @Produce json
// @Param payload body service.CreateResourceRequest true "Resource payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /resources [post]
func (h *ResourceHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resource payload"))
		return
	}

	resource, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, resource)
}
