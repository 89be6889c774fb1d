package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orgdesk/orgdesk-server/internal/apierrors"
	"github.com/orgdesk/orgdesk-server/internal/logger"
	"github.com/orgdesk/orgdesk-server/internal/model"
)

// respondError maps service errors to HTTP responses. Anything that is
// not an APIError or a known sentinel becomes a generic 500; internals
// go to the log, never to the client.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		if apiErr.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(apiErr.RetryAfter.Seconds())))
		}
		c.AbortWithStatusJSON(apiErr.HTTPStatus, envelope{Error: apiErr.Message})
		return
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, envelope{Error: "not found"})
	case errors.Is(err, model.ErrLastOwner):
		c.AbortWithStatusJSON(http.StatusConflict, envelope{Error: "organization must keep at least one owner"})
	default:
		log.Error("Handler: request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err.Error())
		c.AbortWithStatusJSON(http.StatusInternalServerError, envelope{Error: "internal server error"})
	}
}
