package serializer

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var log = zap.NewNop()

// SetLogger sets the logger used to report internal errors behind 5xx responses.
func SetLogger(l *zap.Logger) {
	if l != nil {
		log = l
	}
}

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Success bool                `json:"success"`
	Data    interface{}         `json:"data,omitempty"`
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// OK
func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// Err
func Err(code, msg string, err error) Response {
	res := Response{
		Code:    code,
		Message: msg,
	}
	// development mode, show error detail
	if err != nil && gin.Mode() != gin.ReleaseMode {
		res.Error = fmt.Sprintf("%+v", err)
	}
	return res
}

// DBErr
func DBErr(msg string, err error) Response {
	if msg == "" {
		msg = "database error"
	}
	if err != nil {
		log.Error(msg, zap.Error(err))
	}
	return Err("INTERNAL_ERROR", msg, err)
}

// ParamErr
func ParamErr(msg string, err error) Response {
	if msg == "" {
		msg = "parameter error"
	}
	return Err("BAD_REQUEST", msg, err)
}

// ValidationErr carries per-field messages.
func ValidationErr(fields map[string][]string) Response {
	return Response{
		Code:    "VALIDATION_ERROR",
		Message: "validation failed",
		Fields:  fields,
	}
}

// AuthErr
func AuthErr(msg string) Response {
	if msg == "" {
		msg = "authentication required"
	}
	return Err("UNAUTHORIZED", msg, nil)
}

// NotFoundErr
func NotFoundErr(code, msg string) Response {
	if msg == "" {
		msg = http.StatusText(http.StatusNotFound)
	}
	return Err(code, msg, nil)
}
