package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/returnaddress/returnaddress-backend/internal/platform/apierr"
)

// ErrorBody is the wire shape for every failed request. The value is the
// machine-readable code when the service supplied one, otherwise the
// error message.
type ErrorBody struct {
	Error string `json:"error"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// RespondError maps an *apierr.Error to its status/code pair and anything
// else to a 500 with the given fallback code.
func RespondError(c *gin.Context, err error, fallbackCode string) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, ErrorBody{Error: apiErr.Code})
		return
	}
	if fallbackCode == "" {
		fallbackCode = "internal_error"
	}
	c.JSON(http.StatusInternalServerError, ErrorBody{Error: fallbackCode})
}

// RespondErrorCode is for failures the handler detects itself, before any
// service is involved.
func RespondErrorCode(c *gin.Context, status int, code string) {
	c.JSON(status, ErrorBody{Error: code})
}
