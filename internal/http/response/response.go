package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError maps a service error onto the envelope using the status
// and code it carries, defaulting to 500/internal for plain errors.
func RespondAPIError(c *gin.Context, err error) {
	code := apierr.CodeOf(err)
	if code == "" {
		code = "internal"
	}
	RespondError(c, apierr.StatusOf(err), code, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
