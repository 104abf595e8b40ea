package httputil

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jwalitptl/user-admin/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status Status      `json:"status"`
	Data   interface{} `json:"data"`
}

// Status carries the numeric-string code and a human readable description
type Status struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// NewResponse builds an envelope for the given HTTP status
func NewResponse(status int, description string, data interface{}) Response {
	return Response{
		Status: Status{
			Code:        strconv.Itoa(status),
			Description: description,
		},
		Data: data,
	}
}

// Respond writes an envelope with an explicit status code
func Respond(c *gin.Context, status int, description string, data interface{}) {
	c.JSON(status, NewResponse(status, description, data))
}

// RespondWithSuccess sends a 200 envelope
func RespondWithSuccess(c *gin.Context, description string, data interface{}) {
	Respond(c, http.StatusOK, description, data)
}

// RespondWithCreated sends a 201 envelope
func RespondWithCreated(c *gin.Context, description string, data interface{}) {
	Respond(c, http.StatusCreated, description, data)
}

// RespondWithError maps err to a status code and sends an error envelope.
// Errors that are not AppErrors are logged and reported as 500 without detail.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("request_id", c.GetString("request_id")).
			Msg("request failed")
	}

	Respond(c, status, appErr.Message, appErr.Details)
}
