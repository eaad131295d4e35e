package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	HeaderHandshake       = "X-N3XUS-Handshake"
	HeaderHandshakeLegacy = "X-Nexus-Handshake"
)

// ValidateHandshake rejects requests whose handshake header does not equal
// expected. It guards the HTTP surface only; the websocket relay answers
// handshakes on its own and never consults this header. Bypass entries are
// matched against the path below mount, so "/sessions" exempts
// "/api/sessions" when mount is "/api".
func ValidateHandshake(expected, mount string, bypass []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if shouldBypass(relativePath(c.Request.URL.Path, mount), bypass) {
			c.Next()
			return
		}
		got := c.GetHeader(HeaderHandshake)
		if got == "" {
			got = c.GetHeader(HeaderHandshakeLegacy)
		}
		if got == "" || got != expected {
			log.Debug().Str("module", "adapters.http").Str("path", c.Request.URL.Path).Msg("handshake header rejected")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "Invalid or missing N3XUS Handshake",
				"code":       "HANDSHAKE_REQUIRED",
				"governance": expected,
				"message":    "All requests must include " + HeaderHandshake + ": " + expected + " header",
			})
			return
		}
		c.Next()
	}
}

// StampHandshake marks every response as coming from a compliant service.
func StampHandshake(value string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header(HeaderHandshake, value)
		c.Header(HeaderHandshakeLegacy, value)
		c.Next()
	}
}

func relativePath(path, mount string) string {
	mount = strings.TrimSuffix(mount, "/")
	if mount == "" || !strings.HasPrefix(path, mount) {
		return path
	}
	rel := path[len(mount):]
	if rel == "" {
		return "/"
	}
	if rel[0] != '/' {
		return path
	}
	return rel
}

func shouldBypass(path string, bypass []string) bool {
	for _, p := range bypass {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
