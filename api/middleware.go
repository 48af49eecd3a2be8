package api

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/shortlet/internal/auth"
	"github.com/gin-gonic/gin"
)

const adminKey = "admin"

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[http] %s %s %d %s %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AdminAuth requires a valid admin bearer token.
func AdminAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := parser.Parse(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(adminKey, claims.Subject)
		c.Next()
	}
}

func isAdmin(c *gin.Context) bool {
	_, ok := c.Get(adminKey)
	return ok
}
