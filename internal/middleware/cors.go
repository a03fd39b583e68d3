package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"recovery-backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	corsAllowMethods  = "GET, POST, OPTIONS"
	corsAllowHeaders  = "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, Cache-Control, Accept, X-Request-ID"
	corsExposeHeaders = "Content-Length, Content-Type, X-Request-ID"
)

// CORS middleware. Origins come from config (CORS_ALLOWED_ORIGINS or YAML), default *.
// Preflight requests are answered here with 204.
func CORS(cfg config.CORSConfig, logger *logrus.Logger) gin.HandlerFunc {
	allowAll := cfg.AllowsAnyOrigin() || len(cfg.AllowedOrigins) == 0
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[strings.TrimSpace(o)] = true
	}
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		switch {
		case allowAll && cfg.AllowCredentials && origin != "":
			// browsers reject "*" together with credentials
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin == "":
			// same-origin or direct access
		case allowed[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		default:
			logger.WithFields(logrus.Fields{
				"request_origin": origin,
				"path":           c.Request.URL.Path,
				"method":         c.Request.Method,
				"remote_addr":    c.ClientIP(),
			}).Warn("🚫 CORS: Origin not in whitelist")
		}

		c.Header("Access-Control-Allow-Methods", corsAllowMethods)
		c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
		if cfg.AllowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		c.Header("Access-Control-Max-Age", maxAge)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Header("Access-Control-Expose-Headers", corsExposeHeaders)
		c.Next()
	}
}
