package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/generapi/generapi/apitypes"
)

// Factory helpers returning *apitypes.ApiError (single canonical error type).
func ErrBadRequest(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: http.StatusBadRequest, Title: "Bad Request", Detail: detail}
}
func ErrNotFound(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: http.StatusNotFound, Title: "Not Found", Detail: detail}
}
func ErrUnprocessable(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: http.StatusUnprocessableEntity, Title: "Unprocessable Entity", Detail: detail}
}
func ErrTooManyRequests(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: http.StatusTooManyRequests, Title: "Too Many Requests", Detail: detail}
}
func ErrInternal(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: http.StatusInternalServerError, Title: "Internal Server Error", Detail: detail}
}

// WrapError normalizes any error into *apitypes.ApiError.
func WrapError(err error) *apitypes.ApiError {
	if err == nil {
		return nil
	}
	var ae *apitypes.ApiError
	if errors.As(err, &ae) {
		return ae
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return &apitypes.ApiError{Status: http.StatusRequestEntityTooLarge, Title: "Request Entity Too Large", Detail: err.Error()}
	}
	return ErrInternal(err.Error())
}

// Abort ends the request with err as a problem+json body.
func Abort(c *gin.Context, err error) {
	ae := WrapError(err)
	AbortWith(c, ae.Status, ae)
}

// AbortWith ends the request with body as a problem+json document.
func AbortWith(c *gin.Context, status int, body any) {
	c.Header("Content-Type", "application/problem+json")
	c.AbortWithStatusJSON(status, body)
}

// BindJSON decodes the request body into v, aborting with a problem response on
// failure. It reports whether the handler should continue.
func BindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			Abort(c, err)
			return false
		}
		Abort(c, ErrBadRequest("invalid request body: "+err.Error()))
		return false
	}
	return true
}
