package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/internhub/intern-management-api/internal/dto"
	apierrors "github.com/internhub/intern-management-api/internal/errors"
	"github.com/internhub/intern-management-api/internal/services"
	"github.com/internhub/intern-management-api/internal/utils"
)

type InternHandler struct {
	internService *services.InternService
}

func NewInternHandler(internService *services.InternService) *InternHandler {
	return &InternHandler{
		internService: internService,
	}
}

// ListInterns returns every intern profile (admin only)
func (h *InternHandler) ListInterns(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	profiles, total, err := h.internService.ListInterns(principal, params)
	if err != nil {
		respondInternError(c, err)
		return
	}

	utils.SetTotalCountHeader(c, params, total)
	c.JSON(http.StatusOK, dto.ToInternDTOs(profiles))
}

// CreateIntern creates an INTERN account together with its profile
func (h *InternHandler) CreateIntern(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	// Presence is checked by the service so every missing field is reported at once.
	type CreateInternRequest struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Password   string `json:"password"`
		Department string `json:"department"`
	}

	var req CreateInternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingFailed(c, err)
		return
	}

	profile, err := h.internService.CreateIntern(principal, services.CreateInternInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
	})
	if err != nil {
		respondInternError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToInternDTO(*profile))
}

// GetIntern returns one intern profile by account id
func (h *InternHandler) GetIntern(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	userID, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid intern ID")
		return
	}

	profile, err := h.internService.GetIntern(principal, userID)
	if err != nil {
		respondInternError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInternDTO(*profile))
}

// ListInternsWithProgress returns interns with task-derived progress and task stats.
// Interns only see their own entry.
func (h *InternHandler) ListInternsWithProgress(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	rows, total, err := h.internService.ListInternsWithTasks(principal, params)
	if err != nil {
		respondInternError(c, err)
		return
	}

	items := make([]dto.InternProgressDTO, len(rows))
	for i, row := range rows {
		items[i] = dto.ToInternProgressDTO(row.Profile, row.Tasks)
	}

	utils.SetTotalCountHeader(c, params, total)
	c.JSON(http.StatusOK, items)
}

func respondInternError(c *gin.Context, err error) {
	if respondValidationError(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, "You do not have permission to perform this action.")
	case errors.Is(err, services.ErrInternNotFound):
		apierrors.NotFound(c, "Intern not found")
	case errors.Is(err, services.ErrEmailTaken):
		respondEmailTaken(c)
	case errors.Is(err, services.ErrFailedToCreateIntern),
		errors.Is(err, services.ErrFailedToHashPassword):
		apierrors.InternalError(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
