package middlewares

import "github.com/gin-gonic/gin"

// abortError writes the same error envelope as the handlers package.
func abortError(c *gin.Context, status int, code, message string) {
	reqID, _ := c.Get(CtxRequestID)

	body := gin.H{
		"code":    code,
		"message": message,
	}
	if s, ok := reqID.(string); ok && s != "" {
		body["requestId"] = s
	}

	c.AbortWithStatusJSON(status, gin.H{"error": body})
}
