package helper

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
)

func ParamsToMap[T any](c *gin.Context) (T, error) {
	var params T

	if err := c.ShouldBindJSON(&params); err != nil {
		return params, err
	}

	return params, nil
}

// DecodeErrorDetail turns a body decoding error into the field it concerns
// and a client-facing message. Go type and struct names never leak into the
// message.
func DecodeErrorDetail(err error) (field string, message string) {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return "body", "Request body must be a JSON object"
		}

		return typeErr.Field, typeErr.Field + " must be " + jsonTypeName(typeErr.Type)
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return "body", "Request body must be valid JSON"
	case errors.Is(err, io.EOF):
		return "body", "Request body is empty"
	default:
		return "body", "Invalid request body"
	}
}

func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Bool:
		return "a boolean"
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "an object"
	}
}

// ParamID parses the :id path parameter as a 64-bit integer.
func ParamID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)

	if err != nil {
		return 0, false
	}

	return id, true
}

func GetClientIP(c *gin.Context) string {
	ip := c.ClientIP()

	if ip == "" {
		return "unknown"
	}

	return ip
}
