package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"quizzit/services"
)

var statusByKind = map[services.Kind]int{
	services.KindValidation:        http.StatusBadRequest,
	services.KindNotFound:          http.StatusNotFound,
	services.KindUnauthenticated:   http.StatusUnauthorized,
	services.KindUnauthorized:      http.StatusForbidden,
	services.KindResourceExhausted: http.StatusServiceUnavailable,
	services.KindInternal:          http.StatusInternalServerError,
}

// respondError writes err as {"error": message} with the status of its kind.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	kind := services.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("path", c.FullPath()),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": services.Message(err)})
}

// respondBindError reports malformed bodies, listing failing fields by their json name.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func requireUser(c *gin.Context, userID string) bool {
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return false
	}
	return true
}
