package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	authservice "github.com/fundbridge/donate/internal/application/auth"
	"github.com/fundbridge/donate/internal/domain"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
	DonorClaimsKey  = "donor_claims"
)

type Middleware struct {
	AuthSvc        authservice.IAuthService
	allowedOrigins map[string]bool
	logger         zerolog.Logger
}

func NewMiddleware(AuthSvc authservice.IAuthService, allowedOrigins []string, logger zerolog.Logger) *Middleware {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[strings.TrimRight(o, "/")] = true
	}
	return &Middleware{
		AuthSvc:        AuthSvc,
		allowedOrigins: origins,
		logger:         logger,
	}
}

func (m *Middleware) SetupMiddleware(router *gin.Engine) {
	router.Use(m.RequestID())
	router.Use(m.CORS())

	router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		requestID, _ := param.Keys[RequestIDKey].(string)
		m.logger.Info().
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status", param.StatusCode).
			Dur("latency", param.Latency).
			Str("client_ip", param.ClientIP).
			Str("user_agent", param.Request.UserAgent()).
			Str("request_id", requestID).
			Msg("HTTP Request")
		return ""
	}))

	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		m.logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}))

	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Next()
	})
}

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func (m *Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// CORS allows every origin when none are configured.
func (m *Middleware) CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case len(m.allowedOrigins) == 0:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && m.allowedOrigins[strings.TrimRight(origin, "/")]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

// OptionalIdentity verifies a donor session token when one is sent. Requests
// without a token pass through anonymously.
func (m *Middleware) OptionalIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.logger.Warn().Msg("Invalid Authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid Authorization header format, expected 'Bearer <token>'",
			})
			return
		}

		claims, err := m.AuthSvc.VerifyToken(c.Request.Context(), parts[1])
		if err != nil {
			m.logger.Warn().Err(err).Msg("Failed to verify donor token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(DonorClaimsKey, claims)
		c.Next()
	}
}

// DonorClaims returns the claims set by OptionalIdentity, if any.
func DonorClaims(c *gin.Context) *domain.DonorClaims {
	v, ok := c.Get(DonorClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*domain.DonorClaims)
	return claims
}
