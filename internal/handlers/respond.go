package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/internhub/intern-management-api/internal/errors"
	"github.com/internhub/intern-management-api/internal/middleware"
	"github.com/internhub/intern-management-api/internal/policy"
	"github.com/internhub/intern-management-api/internal/services"
)

// respondValidationError answers a *services.ValidationError and reports
// whether err was one.
func respondValidationError(c *gin.Context, err error) bool {
	var verr *services.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	apierrors.ValidationFailed(c, apierrors.FieldErrors(verr.Fields))
	return true
}

func respondEmailTaken(c *gin.Context) {
	apierrors.Conflict(c, "A user with this email already exists.", apierrors.FieldErrors{
		"email": {"A user with this email already exists."},
	})
}

// requirePrincipal writes a 401 and returns false when no principal is set.
func requirePrincipal(c *gin.Context) (policy.Principal, bool) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return policy.Principal{}, false
	}
	return principal, true
}

func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
