package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"Tracker/internal/auth"
	"Tracker/internal/listing"
	"Tracker/internal/service"

	"github.com/gin-gonic/gin"
)

var (
	ErrPathNotFound     = errors.New("cannot get this path")
	ErrActivityNotFound = fmt.Errorf("activity %w", service.ErrNotFound)
	ErrAccountNotFound  = fmt.Errorf("account %w", service.ErrNotFound)
)

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "request_id"

const msgStoreFailure = "Something went wrong. Please try again later."

// ErrorBoundary renders the error page for any error recorded on the context
// that no handler answered. Every such error is logged and shown with 404.
func ErrorBoundary(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		log.ErrorContext(c.Request.Context(), "request failed",
			"request_id", c.GetString(RequestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		if c.Writer.Written() {
			return
		}
		data := gin.H{"Error": publicMessage(err)}
		if rs := auth.StateFromContext(c); rs != nil {
			data["Flash"] = rs.Flashes()
			data["SignedIn"] = rs.Session.SignedIn
			data["Username"] = rs.Session.Username
		}
		c.HTML(http.StatusNotFound, "error.html", data)
	}
}

// Recover turns a panic into an error for ErrorBoundary.
func Recover() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		_ = c.Error(fmt.Errorf("panic: %v", recovered))
		c.Abort()
	})
}

// NoRoute answers any unmatched path.
func NoRoute(c *gin.Context) {
	_ = c.Error(ErrPathNotFound)
}

// publicMessage hides internals from the page. Only errors about the
// requested resource are shown as they are.
func publicMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, ErrPathNotFound),
		errors.Is(err, listing.ErrInvalidPage),
		errors.Is(err, listing.ErrInvalidColumn):
		return sentence(err.Error())
	}
	return msgStoreFailure
}

func sentence(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}
