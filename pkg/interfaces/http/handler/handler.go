package handler

import (
	"github.com/gin-gonic/gin"
)

// Response is the envelope of every JSON API response
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success responds 200 with code 0
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error responds with an error code whose first three digits are the HTTP status
func Error(c *gin.Context, code int, message string) {
	ErrorWithData(c, code, message, nil)
}

// ErrorWithData is Error with a data payload
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// BadRequest responds 400
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// NotFound responds 404
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError responds 500
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// BadGateway responds 502 for upstream failures the caller may retry
func BadGateway(c *gin.Context, message string, data interface{}) {
	ErrorWithData(c, 50200, message, data)
}
