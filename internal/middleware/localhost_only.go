package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LocalhostOnly middleware - only allow localhost or whitelisted IPs access
type LocalhostOnly struct {
	logger *logrus.Logger
	ips    []net.IP
	nets   []*net.IPNet
	open   bool
}

// NewLocalhostOnly builds the restriction from IPs and CIDR ranges.
// An empty list leaves the route open to everyone.
func NewLocalhostOnly(logger *logrus.Logger, allowedIPs []string) *LocalhostOnly {
	l := &LocalhostOnly{logger: logger, open: len(allowedIPs) == 0}
	for _, allowed := range allowedIPs {
		allowed = strings.TrimSpace(allowed)
		if allowed == "" {
			continue
		}
		if strings.Contains(allowed, "/") {
			_, ipNet, err := net.ParseCIDR(allowed)
			if err != nil {
				logger.WithFields(logrus.Fields{
					"allowed": allowed,
					"error":   err.Error(),
				}).Warn("Invalid CIDR in allowedIPs")
				continue
			}
			l.nets = append(l.nets, ipNet)
			continue
		}
		if ip := net.ParseIP(allowed); ip != nil {
			l.ips = append(l.ips, ip)
		} else {
			logger.WithField("allowed", allowed).Warn("Invalid IP in allowedIPs")
		}
	}
	return l
}

// Restrict rejects clients outside the whitelist with 403
func (l *LocalhostOnly) Restrict() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.open {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		if !l.isAllowedIP(clientIP) {
			remoteIP, _, _ := net.SplitHostPort(c.Request.RemoteAddr)
			if remoteIP == clientIP || !isLocalhost(remoteIP) {
				l.logger.WithFields(logrus.Fields{
					"client_ip":  clientIP,
					"remote_ip":  remoteIP,
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
					"request_id": GetRequestID(c),
				}).Warn("🚫 Reject non-whitelisted access")

				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error":   "ip_not_allowed",
					"message": "This endpoint is only accessible from allowed IP addresses",
				})
				return
			}
		}
		c.Next()
	}
}

// isLocalhost Check if IP is localhost
func isLocalhost(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ip == "localhost"
	}
	return parsed.IsLoopback()
}

// isAllowedIP localhost, exact match or CIDR match
func (l *LocalhostOnly) isAllowedIP(ip string) bool {
	if isLocalhost(ip) {
		return true
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, allowed := range l.ips {
		if allowed.Equal(parsed) {
			return true
		}
	}
	for _, ipNet := range l.nets {
		if ipNet.Contains(parsed) {
			return true
		}
	}
	return false
}
