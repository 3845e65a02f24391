package apperrors

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"knotty_backend/internal/logger"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// GinErrorHandler writes AppErrors to gin responses.
type GinErrorHandler struct {
	// Debug leaves internal error detail in 500 responses. Off in production.
	Debug bool
}

var defaultHandler = &GinErrorHandler{}

// SetDebug configures whether 500 responses keep their message detail.
// Called once at startup from app wiring.
func SetDebug(debug bool) {
	defaultHandler.Debug = debug
}

func (h *GinErrorHandler) Handle(c *gin.Context, err error) {
	appErr := From(err)

	if appErr.HTTPCode >= 500 {
		logger.CtxWithError(c.Request.Context(), "server error", appErr,
			"path", c.Request.URL.Path,
		)
		if !h.Debug {
			appErr = New(CodeInternalError, "system", "Internal server error", http.StatusInternalServerError)
		}
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{Error: appErr})
}

// HandleError maps any error onto the response through the default handler.
func HandleError(c *gin.Context, err error) {
	defaultHandler.Handle(c, err)
}

// From classifies err as an AppError, wrapping unknown errors as internal.
func From(err error) *AppError {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr
	}
	return InternalError(err)
}
