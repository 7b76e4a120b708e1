// Package handlers implements the HTTP endpoints: the WhatsApp webhook, the
// admin panel, and their supporting plumbing.
//
// This file defines the response utilities shared by the JSON endpoints.
// Every error response is an ErrorResponse with a stable machine-readable
// code; fail() centralizes formatting and logs 5xx responses with request
// context.
//
// Example error response:
//
//	HTTP/1.1 502 Bad Gateway
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "answer_failed",
//	  "message": "failed to generate an answer"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by JSON endpoints.
// RequestID echoes X-Request-ID so client errors can be correlated with
// server logs.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"bad_request"`
	Message   string `json:"message" example:"malformed payload"`
}

// fail aborts the request with a structured error. Server errors (>=500) are
// logged with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail() for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
