package helper

import (
	"net/http"

	. "todoapi/internal/adapter/http/validation"
	"todoapi/internal/core/model/response"

	"github.com/gin-gonic/gin"
)

func SendError(c *gin.Context, statusCode int, code string, errors []response.ValidationError, details ...any) {
	errorResponse := response.ErrorResponse{
		Error: response.ResponseError{
			Code:   code,
			Errors: errors,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.JSON(statusCode, errorResponse)
}

func SendValidationError(c *gin.Context, err error) {
	validationErrors := FormatValidationErrors(err)
	SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErrors)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	errors := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusBadRequest, "BAD_REQUEST", errors)
}

func SendNotFoundError(c *gin.Context, message string) {
	errors := []response.ValidationError{
		{
			Field:   "resource",
			Message: message,
		},
	}

	SendError(c, http.StatusNotFound, "NOT_FOUND", errors)
}

func SendTooManyRequestsError(c *gin.Context, message string, retryAfter int) {
	errors := []response.ValidationError{
		{
			Field:   "rate_limit",
			Message: message,
		},
	}

	SendError(c, http.StatusTooManyRequests, "RATE_LIMITED", errors, gin.H{"retry_after": retryAfter})
}

// SendText writes a plain-text body. The todo routes answer failures and
// deletes with fixed text messages rather than the JSON envelope.
func SendText(c *gin.Context, statusCode int, message string) {
	c.String(statusCode, message)
}

func SendTodo(c *gin.Context, data response.TodoResponse) {
	c.JSON(http.StatusOK, data)
}

func SendTodos(c *gin.Context, data []response.TodoResponse) {
	c.JSON(http.StatusOK, data)
}

// BindJSON decodes the request body into T. Decode failures are reported as
// BAD_REQUEST and validation failures as VALIDATION_ERROR; the second
// return value is false once a response has been written.
func BindJSON[T any](c *gin.Context) (T, bool) {
	params, err := ParamsToMap[T](c)

	if err != nil {
		field, message := DecodeErrorDetail(err)
		SendBadRequestError(c, field, message)
		return params, false
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return params, false
	}

	return params, true
}
