package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/bingogame-go/internal/middleware"
)

// Logging creates request logging middleware for the API
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}

// RequestID tags API requests with an X-Request-ID
func RequestID() func(http.Handler) http.Handler {
	return middleware.RequestID()
}
