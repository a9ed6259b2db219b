package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	handler "educoin-engine/services/auction/handler"
	"educoin-engine/utils"
)

// Roles assigned by the authentication gateway
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"user_id": c.GetString(handler.CtxUserID),
		"latency": time.Since(start).String(),
	})
}

// IdentityMiddleware reads the caller identity set by the upstream
// authentication gateway. The engine trusts these headers; session
// verification happens before requests reach it.
func IdentityMiddleware(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	role := c.GetHeader("X-User-Role")
	if userID == "" || role == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"status":  http.StatusUnauthorized,
			"message": "missing caller identity",
			"error":   "X-User-ID and X-User-Role headers are required",
		})
		return
	}
	c.Set(handler.CtxUserID, userID)
	c.Set(handler.CtxUserRole, role)
	c.Next()
}

// RequireTeacher rejects callers without the teacher role
func RequireTeacher(c *gin.Context) {
	if c.GetString(handler.CtxUserRole) != RoleTeacher {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"status":  http.StatusForbidden,
			"message": "teacher role required",
			"error":   "caller is not allowed to perform this action",
		})
		return
	}
	c.Next()
}
