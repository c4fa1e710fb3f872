package response

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Err struct {
	statusCode int

	ErrorMsg  string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (e *Err) Error() string {
	return e.ErrorMsg
}

func NewErr(statusCode int, err error) *Err {
	return &Err{
		statusCode: statusCode,
		ErrorMsg:   err.Error(),
	}
}

func ErrBadRequest(err error) *Err {
	return NewErr(http.StatusBadRequest, err)
}

func ErrNotFound(resource, key string, value any) *Err {
	return NewErr(http.StatusNotFound, fmt.Errorf("%v with %v (%v) is not found", resource, key, value))
}

func ErrPermissionDenied(err error) *Err {
	return NewErr(http.StatusForbidden, err)
}

func ErrUnauthorized(err error) *Err {
	return NewErr(http.StatusUnauthorized, err)
}

func ErrConflict(err error) *Err {
	return NewErr(http.StatusConflict, err)
}

// ErrInternalServerError logs the underlying error and hides it from the
// client.
func ErrInternalServerError(err error) *Err {
	zap.L().Error("internal server error", zap.Error(err))

	return NewErr(http.StatusInternalServerError, fmt.Errorf("internal server error"))
}

func RenderErr(ctx *gin.Context, err *Err) {
	err.RequestID = requestid.Get(ctx)

	ctx.AbortWithStatusJSON(err.statusCode, err)
}
