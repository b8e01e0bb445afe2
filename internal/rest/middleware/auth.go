package middleware

import (
	"strings"

	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/types"
	"github.com/gin-gonic/gin"
)

// BearerPassthroughMiddleware requires a bearer token and stores it in the request context.
// The token is not verified here; the Billing API validates it on every forwarded call.
func BearerPassthroughMiddleware(c *gin.Context) {
	authHeader := c.GetHeader(types.HeaderAuthorization)
	if authHeader == "" {
		abortWithError(c, ierr.NewError("missing authorization header").
			WithHint("Please sign in again").
			Mark(ierr.ErrPermissionDenied))
		return
	}

	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		abortWithError(c, ierr.NewError("invalid authorization header format").
			WithHint("Please sign in again").
			Mark(ierr.ErrPermissionDenied))
		return
	}

	ctx := types.SetJWT(c.Request.Context(), token)
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

// OrganizationMiddleware copies the :org_id path parameter into the request context for logging
func OrganizationMiddleware(c *gin.Context) {
	if orgID := c.Param("org_id"); orgID != "" {
		c.Request = c.Request.WithContext(types.SetOrganizationID(c.Request.Context(), orgID))
	}
	c.Next()
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
