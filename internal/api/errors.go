package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

var statusByKind = map[service.ErrorKind]int{
	service.KindValidation:   http.StatusBadRequest,
	service.KindConflict:     http.StatusBadRequest,
	service.KindNotFound:     http.StatusNotFound,
	service.KindUnauthorized: http.StatusUnauthorized,
	service.KindForbidden:    http.StatusForbidden,
	service.KindInternal:     http.StatusInternalServerError,
}

// respondError writes err as JSON with the status of its kind.
func respondError(c *gin.Context, err error) {
	var appErr *service.AppError
	if !errors.As(err, &appErr) {
		appErr = service.NewInternalError(err)
	}

	status, ok := statusByKind[appErr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := appErr.Message
	if status == http.StatusInternalServerError {
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		message = "internal server error"
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:  message,
		Code:   string(appErr.Kind),
		Fields: appErr.Fields,
	})
}

// respondBindError reports a failed ShouldBind call as a validation error.
func respondBindError(c *gin.Context, err error) {
	var appErr *service.AppError
	if errors.As(err, &appErr) {
		respondError(c, appErr)
		return
	}
	if fields := validation.FieldErrors(err); fields != nil {
		respondError(c, service.NewFieldValidationError(fields))
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		respondError(c, service.NewFieldValidationError(map[string]string{
			typeErr.Field: "expected a value of type " + typeErr.Type.String(),
		}))
		return
	}
	respondError(c, service.NewValidationError("malformed request body"))
}

func respondNotFound(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: message, Code: string(service.KindNotFound)})
}
