package http

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/glacierdb/glacierdb/pkg/util/merr"
)

// wrapHandler adapts a value-or-error handler to gin. The error taxonomy maps
// to http status codes here so the handlers themselves never touch the writer.
func wrapHandler(handle func(c *gin.Context) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := handle(c)
		if err != nil {
			c.AbortWithStatusJSON(httpStatusOf(err), gin.H{HTTPReturnMessage: err.Error()})
			return
		}
		c.JSON(http.StatusOK, data)
	}
}

func httpStatusOf(err error) int {
	switch {
	case errors.IsAny(err, merr.ErrParameterInvalid, merr.ErrWarehouseNotFound, merr.ErrCompactionTableDisabled):
		return http.StatusBadRequest
	case errors.Is(err, merr.ErrCompactionJobRunning):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
