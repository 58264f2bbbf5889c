package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/kam/pkg/errors"
)

// SendSuccess writes a success envelope with the trace id of the request.
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse(data, c.GetString("trace_id")))
}

// SendError writes an error envelope, using the HTTP status carried by the
// error when it is a structured one.
func SendError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if kamErr, ok := errors.AsKamError(err); ok {
		status = kamErr.HTTPStatus()
	}
	c.JSON(status, ErrorResponse(err, c.GetString("trace_id")))
}
