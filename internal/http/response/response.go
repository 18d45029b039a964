package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pathwise/pathwise-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Error maps the error's kind to an HTTP status and a stable code. Internal
// errors are not echoed to the client.
func Error(c *gin.Context, err error) {
	status := apierr.HTTPStatus(err)
	kind := apierr.KindOf(err)
	msg := "internal error"
	if err != nil && status != http.StatusInternalServerError {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: string(kind)}})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{Message: msg, Code: string(apierr.KindInvalidArgument)}})
}

func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func Created(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
