package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainerrors "mechamind.backend/internal/domain/errors"
	"mechamind.backend/internal/i18n"
	"mechamind.backend/pkg/logger"
)

// Body is the JSON error envelope.
type Body struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Retry   bool   `json:"retry,omitempty"`
}

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response. The message is localized from the request
// language and the untranslated detail stays in the error field.
func Error(c *gin.Context, err error) {
	c.JSON(Status(c, err))
}

// Abort is Error for middleware: it stops the handler chain.
func Abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(Status(c, err))
}

// Status builds the status and envelope without writing them.
func Status(c *gin.Context, err error) (int, Body) {
	appErr := domainerrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "Request failed",
			zap.String("code", appErr.Code),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	message := i18n.Localize(i18n.LangFromRequest(c), appErr.Code)
	if message == "" {
		message = appErr.Message
	}
	return appErr.Status, Body{
		Code:    appErr.Code,
		Message: message,
		Error:   appErr.Message,
		Retry:   appErr.Retry,
	}
}

// Notice sends a localized informational message.
func Notice(c *gin.Context, status int, code string, extra gin.H) {
	body := gin.H{"code": code, "message": i18n.Localize(i18n.LangFromRequest(c), code)}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}
