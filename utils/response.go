package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, resp JSONResponse) {
	ctx.JSON(status, resp)
}

// Success returns a standard 200 response.
func Success(ctx *gin.Context, message string, data interface{}) {
	Respond(ctx, http.StatusOK, JSONResponse{Success: true, Message: message, Data: data})
}

// Created returns a standard 201 response.
func Created(ctx *gin.Context, message string, data interface{}) {
	Respond(ctx, http.StatusCreated, JSONResponse{Success: true, Message: message, Data: data})
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, JSONResponse{Code: code, Message: message})
}

// Fail returns an error response carrying field level details.
func Fail(ctx *gin.Context, status int, code int, message string, details interface{}) {
	Respond(ctx, status, JSONResponse{Code: code, Message: message, Errors: details})
}
