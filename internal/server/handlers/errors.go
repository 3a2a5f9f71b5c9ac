package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/internal/infrastructure/clients"
)

// statusFor maps a service error onto an HTTP status and the message the
// browser is shown.
func statusFor(err error) (int, string) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Error()
	}
	if errors.Is(err, domain.ErrUnableToObtainToken) {
		return http.StatusInternalServerError, "Unable to obtain access token"
	}
	if apiErr, ok := clients.IsAPIError(err); ok {
		if apiErr.ClientError() {
			return http.StatusBadRequest, apiErr.Message
		}
		return http.StatusInternalServerError, apiErr.Message
	}
	if errors.Is(err, domain.ErrInvalidUpstreamResponse) {
		return http.StatusInternalServerError, "Invalid response from external API"
	}
	return http.StatusInternalServerError, "Internal Server Error"
}

// respondError writes {"error": msg}.
func respondError(c *gin.Context, logger zerolog.Logger, op string, err error) {
	respondWithKey(c, logger, op, "error", err)
}

// respondMessage writes {"message": msg} for the endpoints whose browser
// contract uses that key.
func respondMessage(c *gin.Context, logger zerolog.Logger, op string, err error) {
	respondWithKey(c, logger, op, "message", err)
}

func respondWithKey(c *gin.Context, logger zerolog.Logger, op, key string, err error) {
	status, msg := statusFor(err)
	level := zerolog.WarnLevel
	if status >= http.StatusInternalServerError {
		level = zerolog.ErrorLevel
	}
	logger.WithLevel(level).
		Err(err).
		Str("op", op).
		Int("status", status).
		Str("request_id", c.GetString("request_id")).
		Msg("Request failed")
	c.JSON(status, gin.H{key: msg})
}

func invalidBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
}
