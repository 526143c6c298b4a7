// internal/middleware/helpers.go
package middleware

import (
	"slices"
	"time"

	"github.com/gin-gonic/gin"
)

// GetOperatorID returns the authenticated operator, if any.
func GetOperatorID(c *gin.Context) (string, bool) {
	id, ok := c.Get(ctxOperatorID)
	if !ok {
		return "", false
	}
	s, ok := id.(string)
	return s, ok && s != ""
}

// MustGetOperatorID gets operator ID from context or panics
func MustGetOperatorID(c *gin.Context) string {
	id, exists := GetOperatorID(c)
	if !exists {
		panic("operator_id not found in context")
	}
	return id
}

// GetJTI gets the token ID from context
func GetJTI(c *gin.Context) (string, bool) {
	jti, exists := c.Get(ctxJTI)
	if !exists {
		return "", false
	}
	s, ok := jti.(string)
	return s, ok
}

// GetOperatorName returns the display name carried by the token.
func GetOperatorName(c *gin.Context) string {
	return c.GetString(ctxOperatorName)
}

// GetTokenExpiry returns when the presented token expires.
func GetTokenExpiry(c *gin.Context) time.Time {
	return c.GetTime(ctxExpiresAt)
}

// GetRoles gets operator roles from context
func GetRoles(c *gin.Context) []string {
	roles, exists := c.Get(ctxRoles)
	if !exists {
		return []string{}
	}

	rolesList, ok := roles.([]string)
	if !ok {
		return []string{}
	}

	return rolesList
}

func HasRole(c *gin.Context, role string) bool {
	return slices.Contains(GetRoles(c), role)
}

// GetRequestID returns the ID assigned by LoggingMiddleware.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}
