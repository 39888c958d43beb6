package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logging"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ErrorHandler turns panics, and handler errors left without a response,
// into JSON 500s.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.Ctx(c.Request.Context()).Error().
					Interface("panic", rec).
					Str("path", c.Request.URL.Path).
					Msg("recovered from panic")
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError,
						ErrorResponse{Error: "internal server error", Code: "internal"})
				} else {
					c.Abort()
				}
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			logging.Ctx(c.Request.Context()).Error().Err(c.Errors.Last()).Msg("unhandled error")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "internal"})
		}
	}
}
