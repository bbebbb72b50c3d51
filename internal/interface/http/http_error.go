package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ai-article-summarizer/internal/domain/summary"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// classifiedHTTPError maps a classified summarization failure onto a
// transport status. The classified message is what clients see; the raw
// error stays attached for logging.
func classifiedHTTPError(err error) *HTTPError {
	category, message := summary.Classify(err)
	return NewHTTPError(statusForCategory(category), string(category), message, err)
}

func statusForCategory(category summary.Category) int {
	switch category {
	case summary.CategoryValidation, summary.CategoryURLFetch:
		return http.StatusBadRequest
	case summary.CategoryTimeout:
		return http.StatusGatewayTimeout
	case summary.CategoryOllama, summary.CategoryModelNotFound:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
